package app

import (
	"strconv"
	"strings"

	"budget/internal/core"
)

// FormState is the lifecycle of one form submission.
type FormState int

const (
	StateIdle FormState = iota
	StateSubmitting
	StateMutated
	StateErrorShown
)

func (s FormState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateMutated:
		return "mutated"
	case StateErrorShown:
		return "error_shown"
	default:
		return "unknown"
	}
}

// FormInput is the raw content of the transaction form. EditingID is set
// when the form was pre-filled from an existing record.
type FormInput struct {
	EditingID string
	Name      string
	Amount    string
	Date      string
}

// Editing reports whether submitting the form updates an existing record.
func (f FormInput) Editing() bool { return f.EditingID != "" }

// Parse trims the name, parses the amount and keeps the date literal.
func (f FormInput) Parse() (core.Transaction, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return core.Transaction{}, &ValidationError{Field: "name", Err: core.ErrEmptyName}
	}
	amount, err := core.ParseAmount(f.Amount)
	if err != nil {
		return core.Transaction{}, &ValidationError{Field: "amount", Err: err}
	}
	if f.Date == "" {
		return core.Transaction{}, &ValidationError{Field: "date", Err: core.ErrEmptyDate}
	}
	t := core.Transaction{Name: name, Amount: amount, Date: f.Date}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, &ValidationError{Field: fieldFor(err), Err: err}
	}
	return t, nil
}

// Prefill returns the form content that edits t.
func Prefill(t core.Transaction) FormInput {
	return FormInput{
		EditingID: t.ID,
		Name:      t.Name,
		Amount:    strconv.FormatFloat(t.Amount, 'f', -1, 64),
		Date:      t.Date,
	}
}
