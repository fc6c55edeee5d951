package bootstrap

import (
	"commerce-core/internal/pkg/config"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		NewConfig,
	),
)

// NewConfig reads .env when present; real environment variables take precedence.
func NewConfig() (config.Config, error) {
	_ = godotenv.Load()
	return config.LoadConfig()
}
