package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/persist"
	"budget/internal/sheets"
)

// Loader reads the persisted ledger.
type Loader interface {
	Load(ctx context.Context) ([]core.Transaction, error)
}

// ExportWorker copies the persisted ledger to a spreadsheet, on change
// events and on a fixed interval.
type ExportWorker struct {
	loader   Loader
	exporter sheets.Exporter
	interval time.Duration
	logger   *log.Logger

	mu         sync.Mutex
	lastExport time.Time
	now        func() time.Time
}

func NewExportWorker(loader Loader, exporter sheets.Exporter, interval time.Duration, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &ExportWorker{
		loader:   loader,
		exporter: exporter,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentWorker),
		now:      time.Now,
	}
}

// HandleLedgerChanged exports the ledger unless an export that started after
// the change already covered it.
func (w *ExportWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	w.mu.Lock()
	covered := !msg.Timestamp.IsZero() && msg.Timestamp.Before(w.lastExport)
	w.mu.Unlock()
	if covered {
		w.logger.DebugContext(ctx, "Change already exported, skipping",
			log.FieldOperation, msg.Op,
			log.FieldTxID, msg.ID)
		return nil
	}

	w.logger.InfoContext(ctx, "Processing ledger change",
		log.FieldOperation, msg.Op,
		log.FieldTxID, msg.ID,
		log.FieldCount, msg.Count)
	return w.Export(ctx)
}

// Export reloads the ledger and writes it out. Corrupt persisted state is
// logged and skipped so a good export is never overwritten with nothing.
func (w *ExportWorker) Export(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	started := w.now()
	txs, err := w.loader.Load(ctx)
	if err != nil {
		if errors.Is(err, persist.ErrCorruptState) {
			w.logger.ErrorContext(ctx, "Persisted ledger is corrupt, skipping export",
				log.FieldError, err,
				log.FieldErrorType, log.ErrorTypeCorruptState)
			return nil
		}
		return fmt.Errorf("load ledger: %w", err)
	}

	if err := w.exporter.Export(ctx, txs); err != nil {
		return fmt.Errorf("export ledger: %w", err)
	}
	w.lastExport = started

	w.logger.InfoContext(ctx, "Ledger exported",
		log.FieldOperation, log.OpExport,
		log.FieldCount, len(txs))
	return nil
}

// RunPeriodic exports every interval until ctx is done. Failures are logged
// and retried on the next tick.
func (w *ExportWorker) RunPeriodic(ctx context.Context) error {
	if w.interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.Export(ctx); err != nil && ctx.Err() == nil {
				w.logger.ErrorContext(ctx, "Periodic export failed", log.FieldError, err)
			}
		}
	}
}

// LastExport reports when the last successful export started.
func (w *ExportWorker) LastExport() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastExport
}
