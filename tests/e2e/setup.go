//go:build e2e

package e2e

import (
	"context"
	"strings"
	"testing"
	"time"

	"commerce-core/cmd/bootstrap"
	"commerce-core/cmd/bootstrap/components"
	"commerce-core/internal/infra/db"
	"commerce-core/internal/infra/redisx"
	"commerce-core/internal/pkg/config"
	"commerce-core/internal/pkg/errs"
	"commerce-core/tests/common/dbtest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/fx"
)

// SharedSuite boots the HTTP stack against real postgres and redis. Workers stay off; tests drive them directly.
type SharedSuite struct {
	suite.Suite
	Router *gin.Engine
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Config config.Config
}

func (s *SharedSuite) SetupSuite() {
	t := s.T()
	gin.SetMode(gin.TestMode)

	env, err := sharedEnvironment()
	require.NoError(t, err, "e2e containers")

	cfg := config.NewTestConfig()
	cfg.DB = provisionDatabase(t, env.postgres)
	cfg.Redis.Addr = env.redis.addr()

	pool, closePool, err := db.Connect(context.Background(), cfg.DB)
	require.NoError(t, err, "connect test database")
	t.Cleanup(closePool)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	require.NoError(t, db.Migrate(ctx, pool), "migrate test database")

	s.DB = pool
	s.Config = cfg
	s.Redis = redisx.New(cfg.Redis)
	t.Cleanup(func() { _ = s.Redis.Close() })
	s.Router = startApp(t, cfg, pool)
}

func (s *SharedSuite) SetupTest() {
	s.reset()
}

func (s *SharedSuite) SetupSubTest() {
	s.reset()
}

func (s *SharedSuite) reset() {
	require.NoError(s.T(), dbtest.ResetDB(s.DB), "reset database")
	require.NoError(s.T(), s.Redis.FlushDB(context.Background()).Err(), "flush redis")
}

// provisionDatabase creates a database unique to this suite and drops it on cleanup.
func provisionDatabase(t *testing.T, pg endpoint) config.DBConfig {
	t.Helper()
	name := "e2e_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	require.NoError(t, withAdmin(func(ctx context.Context, admin *pgxpool.Pool) error {
		// the server can refuse CREATE DATABASE for a moment right after startup
		return retry(ctx, 5, func() error {
			_, err := admin.Exec(ctx, "CREATE DATABASE "+name)
			return err
		})
	}), "create database %s", name)

	t.Cleanup(func() {
		err := withAdmin(func(ctx context.Context, admin *pgxpool.Pool) error {
			_, err := admin.Exec(ctx, "DROP DATABASE IF EXISTS "+name+" WITH (FORCE)")
			return err
		})
		if err != nil {
			t.Logf("drop database %s: %v", name, err)
		}
	})

	return config.DBConfig{
		Host:     pg.host,
		Port:     pg.port.Port(),
		User:     pgUser,
		Password: pgPassword,
		DBName:   name,
		SSLMode:  "disable",
		TimeZone: "UTC",
		MaxConns: 40,
	}
}

func withAdmin(fn func(ctx context.Context, admin *pgxpool.Pool) error) error {
	env, err := sharedEnvironment()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin, err := pgxpool.New(ctx, adminDSN(env.postgres))
	if err != nil {
		return errs.Wrap(err, "admin pool")
	}
	defer admin.Close()
	return fn(ctx, admin)
}

func retry(ctx context.Context, attempts int, fn func() error) error {
	var err error
	for i := range attempts {
		if err = fn(); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return errs.Wrap(err, ctx.Err().Error())
		case <-time.After(time.Duration(i+1) * 500 * time.Millisecond):
		}
	}
	return errs.Wrapf(err, "after %d attempts", attempts)
}

// startApp wires the production modules minus config, database and workers.
func startApp(t *testing.T, cfg config.Config, pool *pgxpool.Pool) *gin.Engine {
	t.Helper()
	var router *gin.Engine

	app := fx.New(
		fx.Supply(cfg, pool),
		fx.Provide(func() *gin.Engine { return gin.New() }),
		bootstrap.LoggerModule,
		bootstrap.JWTModule,
		bootstrap.RedisModule,
		bootstrap.MetricsModule,
		components.RepositoryModule,
		components.UseCaseModule,
		components.HandlerModule,
		fx.Populate(&router),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, app.Start(ctx), "start fx app")

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			t.Logf("stop fx app: %v", err)
		}
	})
	return router
}
