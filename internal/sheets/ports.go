package sheets

import (
	"context"

	"budget/internal/core"
)

// Header is the first row written to the export tab.
var Header = []any{"Name", "Amount", "Date", "Type"}

// Exporter replaces the exported copy of the ledger with txs.
type Exporter interface {
	Export(ctx context.Context, txs []core.Transaction) error
}

// Rows converts the ledger to spreadsheet rows, header first, in store order.
func Rows(txs []core.Transaction) [][]any {
	rows := make([][]any, 0, len(txs)+1)
	rows = append(rows, Header)
	for _, t := range txs {
		rows = append(rows, []any{t.Name, t.Amount, t.Date, kind(t)})
	}
	return rows
}

func kind(t core.Transaction) string {
	switch {
	case t.IsGain():
		return "gain"
	case t.IsExpense():
		return "expense"
	default:
		return "zero"
	}
}
