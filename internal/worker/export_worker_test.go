package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/kv/memory"
	"budget/internal/persist"
	sheetsmem "budget/internal/sheets/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingExporter struct{ err error }

func (f failingExporter) Export(context.Context, []core.Transaction) error { return f.err }

type failingLoader struct{ err error }

func (f failingLoader) Load(context.Context) ([]core.Transaction, error) { return nil, f.err }

func seeded(t *testing.T, txs ...core.Transaction) *persist.Adapter {
	t.Helper()
	a := persist.NewAdapter(memory.New())
	require.NoError(t, a.Save(context.Background(), txs))
	return a
}

func TestExport_WritesPersistedLedger(t *testing.T) {
	exp := sheetsmem.New()
	w := NewExportWorker(seeded(t,
		core.Transaction{ID: "a", Name: "Salary", Amount: 1500, Date: "2024-01-15"},
		core.Transaction{ID: "b", Name: "Rent", Amount: -800, Date: "2024-01-01"},
	), exp, 0, nil)

	require.NoError(t, w.Export(context.Background()))
	rows := exp.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "Salary", rows[1][0])
	assert.False(t, w.LastExport().IsZero())
}

func TestExport_CorruptStateIsSkipped(t *testing.T) {
	kv := memory.New()
	require.NoError(t, kv.Set(context.Background(), persist.Key, "{not json"))
	exp := sheetsmem.New()
	w := NewExportWorker(persist.NewAdapter(kv), exp, 0, nil)

	require.NoError(t, w.Export(context.Background()))
	assert.Zero(t, exp.Calls())
}

func TestExport_LoadError(t *testing.T) {
	boom := errors.New("disk gone")
	w := NewExportWorker(failingLoader{err: boom}, sheetsmem.New(), 0, nil)

	err := w.Export(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestExport_ExporterError(t *testing.T) {
	boom := errors.New("quota exceeded")
	w := NewExportWorker(seeded(t), failingExporter{err: boom}, 0, nil)

	err := w.Export(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.True(t, w.LastExport().IsZero())
}

func TestHandleLedgerChanged_SkipsCoveredChanges(t *testing.T) {
	exp := sheetsmem.New()
	w := NewExportWorker(seeded(t), exp, 0, nil)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return base }

	ctx := context.Background()
	stale := &amqp.LedgerChangedMessage{Op: "add", ID: "a", Count: 1, Timestamp: base.Add(-time.Minute)}
	require.NoError(t, w.HandleLedgerChanged(ctx, stale))
	assert.Equal(t, 1, exp.Calls(), "first export always runs")

	require.NoError(t, w.HandleLedgerChanged(ctx, stale))
	assert.Equal(t, 1, exp.Calls(), "change older than last export")

	fresh := &amqp.LedgerChangedMessage{Op: "delete", ID: "a", Count: 0, Timestamp: base.Add(time.Minute)}
	require.NoError(t, w.HandleLedgerChanged(ctx, fresh))
	assert.Equal(t, 2, exp.Calls())
}

func TestRunPeriodic(t *testing.T) {
	exp := sheetsmem.New()
	w := NewExportWorker(seeded(t), exp, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.RunPeriodic(ctx) }()

	assert.Eventually(t, func() bool { return exp.Calls() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}

func TestRunPeriodic_Disabled(t *testing.T) {
	w := NewExportWorker(seeded(t), sheetsmem.New(), 0, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.NoError(t, w.RunPeriodic(ctx))
}
