//go:build unit

package jwt_test

import (
	"testing"
	"time"

	"commerce-core/internal/domain/auth"
	"commerce-core/internal/pkg/clock"
	"commerce-core/internal/pkg/config"
	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:   "jwt-test-secret-0123456789abcdef",
		Duration: time.Hour,
		Issuer:   "commerce-core",
		Leeway:   30 * time.Second,
	}
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	userID := uuid.New()

	t.Run("round trip carries user and role", func(t *testing.T) {
		svc := jwt.NewService(cfg, clock.NewMockClock(start))
		token, err := svc.GenerateToken(userID, auth.RoleOperator)
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, "operator", claims.Role)
		assert.Equal(t, userID.String(), claims.Subject)
	})

	t.Run("expiry honours leeway", func(t *testing.T) {
		clk := clock.NewMockClock(start)
		svc := jwt.NewService(cfg, clk)
		token, err := svc.GenerateToken(userID, auth.RoleCustomer)
		require.NoError(t, err)

		clk.Set(start.Add(time.Hour + 10*time.Second))
		_, err = svc.ValidateToken(token)
		assert.NoError(t, err)

		clk.Set(start.Add(time.Hour + time.Minute))
		_, err = svc.ValidateToken(token)
		assert.True(t, errs.Is(err, jwt.ErrExpiredToken), "got %v", err)
	})

	t.Run("issuer mismatch is invalid", func(t *testing.T) {
		other := cfg
		other.Issuer = "partner"
		token, err := jwt.NewService(other, clock.NewMockClock(start)).GenerateToken(userID, auth.RoleCustomer)
		require.NoError(t, err)

		_, err = jwt.NewService(cfg, clock.NewMockClock(start)).ValidateToken(token)
		assert.True(t, errs.Is(err, jwt.ErrInvalidToken), "got %v", err)
	})

	t.Run("malformed token is invalid", func(t *testing.T) {
		_, err := jwt.NewService(cfg, clock.NewMockClock(start)).ValidateToken("abc.def.ghi")
		assert.True(t, errs.Is(err, jwt.ErrInvalidToken), "got %v", err)
	})
}
