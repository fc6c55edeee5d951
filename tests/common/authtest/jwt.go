//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"commerce-core/internal/domain/auth"
	"commerce-core/internal/pkg/clock"
	"commerce-core/internal/pkg/config"
	"commerce-core/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type JWTHelper struct {
	cfg config.JWTConfig
}

func NewJWTHelper(cfg config.JWTConfig) *JWTHelper {
	return &JWTHelper{cfg: cfg}
}

func (h *JWTHelper) GenerateToken(t *testing.T, userID uuid.UUID, role auth.Role) string {
	t.Helper()
	return h.signAt(t, time.Now(), userID, role)
}

// CreateExpiredToken signs a token whose lifetime ended before now, leeway included.
func (h *JWTHelper) CreateExpiredToken(t *testing.T, userID uuid.UUID, role auth.Role) string {
	t.Helper()
	issuedAt := time.Now().Add(-h.cfg.Duration - h.cfg.Leeway - time.Minute)
	return h.signAt(t, issuedAt, userID, role)
}

func (h *JWTHelper) signAt(t *testing.T, at time.Time, userID uuid.UUID, role auth.Role) string {
	t.Helper()
	token, err := jwt.NewService(h.cfg, clock.NewMockClock(at)).GenerateToken(userID, role)
	require.NoError(t, err)
	return token
}
