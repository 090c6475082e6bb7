package sheets

import (
	"testing"

	"budget/internal/core"

	"github.com/stretchr/testify/assert"
)

func TestRows(t *testing.T) {
	rows := Rows([]core.Transaction{
		{ID: "a", Name: "Salary", Amount: 1500, Date: "2024-01-15"},
		{ID: "b", Name: "Refund", Amount: 0, Date: "2024-01-20"},
		{ID: "c", Name: "Rent", Amount: -800, Date: "2024-01-01"},
	})

	assert.Equal(t, [][]any{
		Header,
		{"Salary", 1500.0, "2024-01-15", "gain"},
		{"Refund", 0.0, "2024-01-20", "zero"},
		{"Rent", -800.0, "2024-01-01", "expense"},
	}, rows)
}

func TestRows_Empty(t *testing.T) {
	assert.Equal(t, [][]any{Header}, Rows(nil))
}
