package jwt

import (
	"time"

	"commerce-core/internal/domain/auth"
	"commerce-core/internal/pkg/clock"
	"commerce-core/internal/pkg/config"
	"commerce-core/internal/pkg/errs"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errs.New("invalid token")
	ErrExpiredToken = errs.New("token expired")
)

type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

type Service struct {
	secret []byte
	ttl    time.Duration
	issuer string
	clock  clock.Clock
	parser *jwt.Parser
}

func NewService(cfg config.JWTConfig, clk clock.Clock) *Service {
	return &Service{
		secret: []byte(cfg.Secret),
		ttl:    cfg.Duration,
		issuer: cfg.Issuer,
		clock:  clk,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithLeeway(cfg.Leeway),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(clk.Now),
		),
	}
}

// GenerateToken signs a token for userID. Production tokens come from the identity provider.
func (s *Service) GenerateToken(userID uuid.UUID, role auth.Role) (string, error) {
	now := s.clock.Now()
	claims := Claims{
		UserID: userID,
		Role:   role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errs.Wrap(err, "sign token")
	}
	return signed, nil
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	switch {
	case errs.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, errs.Mark(errs.Wrap(err, "parse token"), ErrInvalidToken)
	case !token.Valid || claims.UserID == uuid.Nil:
		return nil, ErrInvalidToken
	}
	return claims, nil
}
