package services

import (
	"errors"
	"strings"
)

// Common errors
var (
	ErrEventoNotFound = errors.New("evento not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInternal       = errors.New("internal server error")
)

// ValidationError carries every field-level violation found in a request so
// the API can report them all at once instead of stopping at the first.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "datos inválidos: " + strings.Join(e.Details, "; ")
}

// Unwrap lets errors.Is(err, ErrInvalidInput) match validation failures.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
