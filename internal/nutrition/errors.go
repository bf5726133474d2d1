package nutrition

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned (wrapped in an *InputError) when a profile,
// food item, or quantity is malformed or out of range. Callers can match it
// with errors.Is and re-prompt for valid input.
var ErrInvalidInput = errors.New("invalid input")

// InputError names the offending field so HTTP and CLI callers can surface a
// precise message.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

func invalid(field, format string, args ...any) error {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
