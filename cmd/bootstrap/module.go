package bootstrap

import (
	"commerce-core/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	JWTModule,
	RedisModule,
	KafkaModule,
	MetricsModule,
	components.RepositoryModule,
	components.UseCaseModule,
	components.HandlerModule,
	components.WorkerModule,
)
