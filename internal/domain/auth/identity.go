package auth

import "github.com/google/uuid"

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}
