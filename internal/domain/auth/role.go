package auth

import (
	"commerce-core/internal/pkg/errs"
)

var ErrInvalidRole = errs.New("invalid role")

type Role string

const (
	RoleCustomer Role = "customer"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

var roleLevel = map[Role]int{
	RoleCustomer: 1,
	RoleOperator: 2,
	RoleAdmin:    3,
}

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	_, ok := roleLevel[r]
	return ok
}

// AtLeast reports whether r ranks equal to or above min. Unknown roles never qualify.
func (r Role) AtLeast(min Role) bool {
	have, ok := roleLevel[r]
	if !ok {
		return false
	}
	want, ok := roleLevel[min]
	return ok && have >= want
}

func NewRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", ErrInvalidRole
	}
	return role, nil
}
