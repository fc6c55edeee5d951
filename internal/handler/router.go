package handler

import (
	"net/http"

	"commerce-core/internal/domain/auth"
	"commerce-core/internal/handler/api"
	"commerce-core/internal/handler/middleware"
	"commerce-core/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type RouterParams struct {
	fx.In

	Engine         *gin.Engine
	Config         config.Config
	Logger         *middleware.Logger
	Orders         *api.OrderHandler
	Coupons        *api.CouponHandler
	Balance        *api.BalanceHandler
	Products       *api.ProductHandler
	Cart           *api.CartHandler
	Auth           *middleware.AuthMiddleware
	Idempotency    *middleware.IdempotencyMiddleware
	MetricsHandler http.Handler `name:"metrics"`
}

func NewRouter(p RouterParams) {
	setupMiddleware(p.Engine, p.Config, p.Logger)
	setupRoutes(p)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(logger.LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(p RouterParams) {
	p.Engine.GET("/health", healthCheck)
	p.Engine.GET("/metrics", gin.WrapH(p.MetricsHandler))

	// the catalog is public
	products := p.Engine.Group("/api/products")
	addRoutes(products, []route{
		{Method: http.MethodGet, Path: "", Handler: p.Products.List},
		{Method: http.MethodGet, Path: "/:id", Handler: p.Products.Get},
	})

	apiGroup := p.Engine.Group("/api")
	apiGroup.Use(p.Auth.RequireAuth())
	{
		orders := apiGroup.Group("/orders")
		addRoutes(orders, []route{
			{Method: http.MethodPost, Path: "", Handler: p.Orders.Create, Mw: []gin.HandlerFunc{p.Idempotency.Require("orders.create")}},
			{Method: http.MethodGet, Path: "", Handler: p.Orders.List},
			{Method: http.MethodGet, Path: "/:id", Handler: p.Orders.Get},
			{Method: http.MethodPost, Path: "/:id/payment", Handler: p.Orders.Pay, Mw: []gin.HandlerFunc{p.Idempotency.Require("orders.pay")}},
			{Method: http.MethodPost, Path: "/:id/cancel", Handler: p.Orders.Cancel},
		})

		coupons := apiGroup.Group("/coupons")
		addRoutes(coupons, []route{
			{Method: http.MethodPost, Path: "/:id/issue", Handler: p.Coupons.Issue, Mw: []gin.HandlerFunc{p.Idempotency.Require("coupons.issue")}},
		})

		me := apiGroup.Group("/users/me")
		addRoutes(me, []route{
			{Method: http.MethodGet, Path: "/coupons", Handler: p.Coupons.ListMine},
			{Method: http.MethodGet, Path: "/balance", Handler: p.Balance.GetMine},
			{Method: http.MethodGet, Path: "/balance/logs", Handler: p.Balance.ListMyLogs},
			{Method: http.MethodGet, Path: "/cart", Handler: p.Cart.GetMine},
			{Method: http.MethodPost, Path: "/cart", Handler: p.Cart.Add, Mw: []gin.HandlerFunc{p.Idempotency.Require("cart.add")}},
			{Method: http.MethodDelete, Path: "/cart/:id", Handler: p.Cart.Remove},
		})

		admin := apiGroup.Group("/admin")
		admin.Use(p.Auth.RequireRoleAtLeast(auth.RoleAdmin))
		addRoutes(admin, []route{
			{Method: http.MethodPost, Path: "/users/:id/balance/charge", Handler: p.Balance.Charge},
			{Method: http.MethodPost, Path: "/users/:id/balance/adjust", Handler: p.Balance.Adjust},
		})
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

// addRoutes registers route middleware ahead of the handler in gin's own chain so c.Next() inside it wraps the handler.
func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		hs := append(append([]gin.HandlerFunc{}, r.Mw...), r.Handler)
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, hs...)
		case http.MethodPost:
			g.POST(r.Path, hs...)
		case http.MethodPut:
			g.PUT(r.Path, hs...)
		case http.MethodPatch:
			g.PATCH(r.Path, hs...)
		case http.MethodDelete:
			g.DELETE(r.Path, hs...)
		default:
			g.Any(r.Path, hs...)
		}
	}
}
