package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds. Handlers map them to HTTP statuses with errors.Is.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrForbidden     = errors.New("forbidden")
	ErrConfiguration = errors.New("configuration error")
	ErrUpstream      = errors.New("upstream failure")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundError(what, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, what, id)
}

// lookupError turns gorm's not-found into ErrNotFound and leaves other store errors alone.
func lookupError(what, id string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundError(what, id)
	}
	return fmt.Errorf("load %s %q: %w", what, id, err)
}
