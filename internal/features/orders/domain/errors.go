package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an order or item index does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState is returned when an action is attempted from a status that does not permit it.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidTransition is returned by the strict policy for an order status change outside the adjacency table.
	ErrInvalidTransition = fmt.Errorf("invalid transition: %w", ErrInvalidState)
	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("validation error")
	// ErrGatewayFailure is returned when the refund gateway call fails or times out.
	ErrGatewayFailure = errors.New("gateway failure")
	// ErrPersistenceConflict is returned when a concurrent write to the same order was detected.
	ErrPersistenceConflict = errors.New("persistence conflict")
)

// Validationf builds an ErrValidation with a message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
