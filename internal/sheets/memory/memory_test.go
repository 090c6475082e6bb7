package memory

import (
	"context"
	"testing"

	"budget/internal/core"
	"budget/internal/sheets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExporter_ReplacesRows(t *testing.T) {
	e := New()
	ctx := context.Background()

	require.NoError(t, e.Export(ctx, []core.Transaction{
		{Name: "Salary", Amount: 1500, Date: "2024-01-15"},
		{Name: "Rent", Amount: -800, Date: "2024-01-01"},
	}))
	rows := e.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, sheets.Header, rows[0])
	assert.Equal(t, []any{"Rent", -800.0, "2024-01-01", "expense"}, rows[2])

	require.NoError(t, e.Export(ctx, nil))
	assert.Len(t, e.Rows(), 1, "header only")
	assert.Equal(t, 2, e.Calls())
}

func TestExporter_CancelledContext(t *testing.T) {
	e := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, e.Export(ctx, nil), context.Canceled)
	assert.Zero(t, e.Calls())
}
