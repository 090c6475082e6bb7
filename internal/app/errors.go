package app

import (
	"errors"
	"fmt"

	"budget/internal/core"
)

// AlertMessage is the text shown to the user when a submission is rejected.
const AlertMessage = "Please provide valid transaction details."

// ValidationError reports a rejected form submission. No mutation happened.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Message is the user-facing alert text.
func (e *ValidationError) Message() string { return AlertMessage }

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func fieldFor(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyName):
		return "name"
	case errors.Is(err, core.ErrInvalidAmount):
		return "amount"
	case errors.Is(err, core.ErrEmptyDate):
		return "date"
	default:
		return "transaction"
	}
}
