package usecase

import (
	"commerce-core/internal/domain/auth"
	"commerce-core/internal/pkg/errs"
	"commerce-core/internal/pkg/jwt"
)

// TokenValidator turns a bearer token into the caller's identity.
type TokenValidator interface {
	Authenticate(token string) (auth.Identity, error)
}

type jwtTokenValidator struct {
	jwt *jwt.Service
}

func NewTokenValidator(svc *jwt.Service) TokenValidator {
	return &jwtTokenValidator{jwt: svc}
}

func (v *jwtTokenValidator) Authenticate(token string) (auth.Identity, error) {
	claims, err := v.jwt.ValidateToken(token)
	if err != nil {
		return auth.Identity{}, err
	}

	role, err := auth.NewRole(claims.Role)
	if err != nil {
		return auth.Identity{}, errs.Mark(errs.Wrapf(err, "role %q", claims.Role), jwt.ErrInvalidToken)
	}
	return auth.Identity{UserID: claims.UserID, Role: role}, nil
}
