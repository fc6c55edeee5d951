package components

import (
	"commerce-core/internal/handler"
	"commerce-core/internal/handler/api"
	"commerce-core/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewOrderHandler,
		api.NewCouponHandler,
		api.NewBalanceHandler,
		api.NewProductHandler,
		api.NewCartHandler,
		middleware.NewAuthMiddleware,
		middleware.NewIdempotencyMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
