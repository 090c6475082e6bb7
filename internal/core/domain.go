package core

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// Transaction is a single named, dated, signed monetary entry.
// Positive amounts are gains, negative amounts are expenses.
type Transaction struct {
	ID     string  `json:"id,omitempty"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
}

var (
	ErrEmptyName     = errors.New("empty name")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyDate     = errors.New("empty date")
)

// NewID returns a fresh transaction identifier.
func NewID() string {
	return uuid.NewString()
}

// Validate checks presence of name and date and that amount is a finite number.
// Zero amounts are valid.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Date) == "" {
		return ErrEmptyDate
	}
	return nil
}

// IsGain reports whether the transaction adds to gains.
func (t Transaction) IsGain() bool { return t.Amount > 0 }

// IsExpense reports whether the transaction adds to expenses.
func (t Transaction) IsExpense() bool { return t.Amount < 0 }

// Label is the chart category for the transaction, e.g. "Rent (2024-01-02)".
func (t Transaction) Label() string {
	return fmt.Sprintf("%s (%s)", t.Name, t.Date)
}
