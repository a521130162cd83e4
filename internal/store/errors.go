package store

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every store failure wraps one of the four bases so callers
// can classify with errors.Is without matching strings.
var (
	ErrValidation  = errors.New("validation")
	ErrConflict    = errors.New("conflict")
	ErrNotFound    = errors.New("not_found")
	ErrPersistence = errors.New("persistence")
)

// Specific failures. Matching either the specific error or its base works:
// errors.Is(err, ErrDuplicateEmail) and errors.Is(err, ErrConflict).
var (
	ErrDuplicateEmail    = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrDuplicateCategory = fmt.Errorf("%w: category name already exists", ErrConflict)
	ErrCategoryNotFound  = fmt.Errorf("%w: category", ErrNotFound)
	ErrTaskNotFound      = fmt.Errorf("%w: task", ErrNotFound)
	ErrUserNotFound      = fmt.Errorf("%w: user", ErrNotFound)
	ErrEventNotFound     = fmt.Errorf("%w: calendar event", ErrNotFound)
)

func persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
