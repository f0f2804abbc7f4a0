package services

import (
	"errors"
	"fmt"
)

// Every failure a caller can act on is one of these, matched with errors.Is.
// Anything else is a store failure.
var (
	ErrValidation         = errors.New("invalid request")
	ErrInvalidRating      = fmt.Errorf("%w: rating must be 1-5", ErrValidation)
	ErrNotFound           = errors.New("not found")
	ErrEventNotFound      = fmt.Errorf("event %w", ErrNotFound)
	ErrCapacityExceeded   = errors.New("event capacity reached")
	ErrAlreadyRegistered  = errors.New("student already registered for this event")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
