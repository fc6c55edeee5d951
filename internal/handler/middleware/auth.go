package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"commerce-core/internal/domain/auth"
	"commerce-core/internal/handler/httperr"
	"commerce-core/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthMiddleware struct {
	tokenValidator usecase.TokenValidator
}

const ctxIdentityKey = "identity"

func NewAuthMiddleware(tokenValidator usecase.TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return ""
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Access token required", nil)
			return
		}

		identity, err := m.tokenValidator.Authenticate(token)
		if err != nil {
			slog.Warn("bearer token rejected", "error", err.Error(), "path", c.FullPath())
			httperr.AbortWithError(c, http.StatusUnauthorized, err, "Invalid or expired token", nil)
			return
		}

		SetIdentity(c, identity)
		c.Next()
	}
}

func (m *AuthMiddleware) RequireRoleAtLeast(minRole auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			// Unexpected error: should be used after RequireAuth()
			httperr.AbortWithError(c, http.StatusInternalServerError, nil, "Internal server error", nil)
			return
		}

		if !role.AtLeast(minRole) {
			httperr.AbortWithError(c, http.StatusForbidden, nil, "Insufficient permissions", nil)
			return
		}

		c.Next()
	}
}

// SetIdentity stores the authenticated caller on the request context
func SetIdentity(c *gin.Context, identity auth.Identity) {
	c.Set(ctxIdentityKey, identity)
}

func GetIdentity(c *gin.Context) (auth.Identity, bool) {
	v, exists := c.Get(ctxIdentityKey)
	if !exists {
		return auth.Identity{}, false
	}
	identity, ok := v.(auth.Identity)
	return identity, ok
}

func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	identity, ok := GetIdentity(c)
	return identity.UserID, ok
}

func GetUserRole(c *gin.Context) (auth.Role, bool) {
	identity, ok := GetIdentity(c)
	return identity.Role, ok
}
