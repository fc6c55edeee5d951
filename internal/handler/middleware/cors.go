package middleware

import (
	"log/slog"
	"net/http"
	"slices"

	"commerce-core/internal/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Browser clients must be able to send these and read back the request id and Location.
var (
	requiredRequestHeaders = []string{"Authorization", HeaderIdempotencyKey, HeaderRequestID}
	requiredExposedHeaders = []string{"Location", HeaderRequestID}
)

func NewCORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowHeaders := mergeHeaders(cfg.AllowHeaders, requiredRequestHeaders)
	exposeHeaders := mergeHeaders(cfg.ExposeHeaders, requiredExposedHeaders)

	slog.Info("cors configured",
		"allow_origins", cfg.AllowOrigins,
		"allow_headers", allowHeaders,
		"expose_headers", exposeHeaders,
	)
	return cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     allowHeaders,
		ExposeHeaders:    exposeHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
}

func mergeHeaders(configured, required []string) []string {
	out := slices.Clone(configured)
	for _, h := range required {
		if !slices.ContainsFunc(out, func(v string) bool { return http.CanonicalHeaderKey(v) == http.CanonicalHeaderKey(h) }) {
			out = append(out, h)
		}
	}
	return out
}
