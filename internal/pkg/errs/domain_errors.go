package errs

import (
	"errors"

	cr "github.com/cockroachdb/errors"
)

// DomainError is an expected business-rule failure. Code is stable and safe to expose to clients.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomain(code, msg string) *DomainError {
	return &DomainError{Code: code, Message: msg}
}

// CodeOf returns the code of the outermost DomainError in err's chain, or "" if there is none.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func IsDomain(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// Entity invariant violations are programming errors upstream and are never shown to clients as rule failures.
var ErrInvariantViolation = errors.New("invariant violation")

func Invariant(msg string) error {
	return cr.Mark(cr.New(msg), ErrInvariantViolation)
}

func Invariantf(format string, args ...any) error {
	return cr.Mark(cr.Newf(format, args...), ErrInvariantViolation)
}

func IsInvariant(err error) bool {
	return cr.Is(err, ErrInvariantViolation)
}

// Cross-cutting sentinels shared by several usecases
var (
	ErrUnauthorized           = NewDomain("A001", "resource is not owned by the caller")
	ErrInvalidArgument        = NewDomain("A002", "invalid argument")
	ErrIdempotencyKeyRequired = NewDomain("A003", "idempotency key required")
	ErrDuplicateRequest       = NewDomain("A004", "request with the same idempotency key is in progress")
)
