package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrMissingUser = errors.New("missing user id")
	ErrEmptyCart   = errors.New("cart is empty, nothing to checkout")
)

// CourseUnavailableError is returned when a referenced course is missing from
// the catalog or no longer active. Raised inside the ledger transaction, so
// the orchestrator rolls back.
type CourseUnavailableError struct {
	CourseID string
}

func (e *CourseUnavailableError) Error() string {
	return fmt.Sprintf("course %s is unavailable", e.CourseID)
}
