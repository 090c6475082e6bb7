package memory

import (
	"context"
	"sync"

	"budget/internal/core"
	"budget/internal/sheets"
)

var _ sheets.Exporter = (*Exporter)(nil)

// Exporter keeps the last exported rows in memory. It backs the worker when
// no spreadsheet is configured and is used in tests.
type Exporter struct {
	mu    sync.Mutex
	rows  [][]any
	calls int
}

func New() *Exporter {
	return &Exporter{}
}

func (e *Exporter) Export(ctx context.Context, txs []core.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := sheets.Rows(txs)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = rows
	e.calls++
	return nil
}

// Rows returns the last export including the header row.
func (e *Exporter) Rows() [][]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]any, len(e.rows))
	copy(out, e.rows)
	return out
}

// Calls reports how many exports succeeded.
func (e *Exporter) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}
