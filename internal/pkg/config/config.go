package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Storage StorageConfig
	Server  ServerConfig
	DB      DBConfig
	CORS    CORSConfig
	Log     LogConfig
	JWT     JWTConfig
	Order   OrderConfig
	Sweeper SweeperConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	Outbox  OutboxConfig
}

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type StorageConfig struct {
	// memory keeps all state in process; for local runs and demos
	Driver   string        `envconfig:"STORAGE_DRIVER" default:"postgres"`
	LockWait time.Duration `envconfig:"STORAGE_LOCK_WAIT" default:"5s"`
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Asia/Seoul"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
	// applies the embedded schema on startup
	AutoMigrate bool `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,Idempotency-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Seoul"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"32400"` // 9*60*60
}

type JWTConfig struct {
	Secret   string        `envconfig:"JWT_SECRET" required:"true"`
	Duration time.Duration `envconfig:"JWT_DURATION" default:"24h"`
	Issuer   string        `envconfig:"JWT_ISSUER" default:"commerce-core"`
	Leeway   time.Duration `envconfig:"JWT_LEEWAY" default:"30s"`
}

type OrderConfig struct {
	PaymentWindow time.Duration `envconfig:"ORDER_PAYMENT_WINDOW" default:"10m"`
	MaxLines      int           `envconfig:"ORDER_MAX_LINES" default:"50"`
}

type SweeperConfig struct {
	Enabled   bool          `envconfig:"SWEEPER_ENABLED" default:"true"`
	Interval  time.Duration `envconfig:"SWEEPER_INTERVAL" default:"30s"`
	BatchSize int           `envconfig:"SWEEPER_BATCH_SIZE" default:"100"`
}

// Addr empty => idempotency keys are not enforced
type RedisConfig struct {
	Addr           string        `envconfig:"REDIS_ADDR"`
	Password       string        `envconfig:"REDIS_PASSWORD"`
	DB             int           `envconfig:"REDIS_DB" default:"0"`
	IdempotencyTTL time.Duration `envconfig:"REDIS_IDEMPOTENCY_TTL" default:"24h"`
}

// Brokers empty => outbox relay is disabled and events stay in the table
type KafkaConfig struct {
	Brokers      []string      `envconfig:"KAFKA_BROKERS"`
	ClientID     string        `envconfig:"KAFKA_CLIENT_ID" default:"commerce-core"`
	WriteTimeout time.Duration `envconfig:"KAFKA_WRITE_TIMEOUT" default:"10s"`
}

type OutboxConfig struct {
	Interval  time.Duration `envconfig:"OUTBOX_INTERVAL" default:"2s"`
	BatchSize int           `envconfig:"OUTBOX_BATCH_SIZE" default:"100"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Storage: StorageConfig{
			Driver:   StoragePostgres,
			LockWait: 5 * time.Second,
		},
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Asia/Seoul",
			MaxConns: 20,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Asia/Seoul",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 32400,
		},
		JWT: JWTConfig{
			Secret:   "test-secret-key-for-jwt-signing",
			Duration: time.Hour,
			Issuer:   "commerce-core",
		},
		Order: OrderConfig{
			PaymentWindow: 10 * time.Minute,
			MaxLines:      50,
		},
		Sweeper: SweeperConfig{
			Enabled:   false,
			Interval:  time.Second,
			BatchSize: 100,
		},
		Redis: RedisConfig{
			IdempotencyTTL: time.Hour,
		},
		Kafka: KafkaConfig{
			ClientID:     "commerce-core-test",
			WriteTimeout: time.Second,
		},
		Outbox: OutboxConfig{
			Interval:  time.Second,
			BatchSize: 100,
		},
	}
}
