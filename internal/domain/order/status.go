package order

import (
	"commerce-core/internal/pkg/errs"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
)

var ErrInvalidStatus = errs.NewDomain("O011", "unknown order status")

// transitions is the full state machine. Terminal states have no entry.
var transitions = map[Status][]Status{
	StatusPending: {StatusPaid, StatusCancelled, StatusExpired},
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCancelled, StatusExpired:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s.IsValid() && len(transitions[s]) == 0
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}
