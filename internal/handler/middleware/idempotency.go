package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"commerce-core/internal/handler/httperr"
	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/usecase/shared"

	"github.com/gin-gonic/gin"
)

const maxIdempotencyKeyLen = 128

type IdempotencyMiddleware struct {
	store  shared.IdempotencyStore
	logger *slog.Logger
}

func NewIdempotencyMiddleware(store shared.IdempotencyStore, logger *slog.Logger) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{store: store, logger: logger}
}

// Require rejects a request without an Idempotency-Key and a repeat of a key that is still held.
// Keys are scoped by endpoint and caller; a failed request releases its key. Must run after RequireAuth().
func (m *IdempotencyMiddleware) Require(endpoint string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			httperr.Abort(c, errs.ErrIdempotencyKeyRequired)
			return
		}
		if len(key) > maxIdempotencyKeyLen {
			httperr.Abort(c, errs.Wrapf(errs.ErrInvalidArgument, "idempotency key longer than %d", maxIdempotencyKeyLen))
			return
		}
		userID, ok := GetUserID(c)
		if !ok {
			httperr.AbortWithError(c, http.StatusInternalServerError, nil, "Internal server error", nil)
			return
		}
		scope := endpoint + ":" + userID.String()

		reserved, err := m.store.Reserve(c.Request.Context(), scope, key)
		if err != nil {
			httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Idempotency store unavailable", nil)
			return
		}
		if !reserved {
			httperr.Abort(c, errs.ErrDuplicateRequest)
			return
		}

		// a panic has not written its 500 yet, so it releases here and is re-raised for the recovery middleware
		defer func() {
			if p := recover(); p != nil {
				m.release(c, scope, key)
				panic(p)
			}
			if c.Writer.Status() >= http.StatusBadRequest {
				m.release(c, scope, key)
			}
		}()

		c.Next()
	}
}

func (m *IdempotencyMiddleware) release(c *gin.Context, scope, key string) {
	if err := m.store.Release(context.WithoutCancel(c.Request.Context()), scope, key); err != nil {
		m.logger.Warn("failed to release idempotency key", "scope", scope, "key", key, "error", err)
	}
}
