package worker

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"moneytracker/internal/amqp"
	"moneytracker/internal/log"
	"moneytracker/internal/sheets"
	"moneytracker/internal/storage"
)

// MirrorWorker copies the persisted ledger to a mirror. It reacts to entry
// events and also resyncs on a timer, so a lost event is repaired on the next
// tick.
type MirrorWorker struct {
	source storage.Store
	mirror sheets.SnapshotWriter
	logger *log.Logger

	mu       sync.Mutex
	lastBlob []byte
}

func NewMirrorWorker(source storage.Store, mirror sheets.SnapshotWriter, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		cfg := log.DefaultConfig()
		cfg.Component = log.ComponentWorker
		logger = log.New(cfg)
	}
	return &MirrorWorker{
		source: source,
		mirror: mirror,
		logger: logger,
	}
}

// HandleEntryEvent is the AMQP consumer callback. Events carry only an id, so
// every event triggers a full snapshot copy.
func (w *MirrorWorker) HandleEntryEvent(ctx context.Context, msg *amqp.EntryEvent) error {
	w.logger.InfoContext(ctx, "Processing entry event",
		log.FieldOperation, msg.Op,
		log.FieldEntryID, msg.ID)

	if err := w.Resync(ctx); err != nil {
		return fmt.Errorf("mirror after %s %d: %w", msg.Op, msg.ID, err)
	}
	return nil
}

// Resync loads the current collection and writes it to the mirror. A
// snapshot identical to the last one written is skipped.
func (w *MirrorWorker) Resync(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	entries, err := w.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	blob, err := storage.Encode(entries)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if w.lastBlob != nil && bytes.Equal(blob, w.lastBlob) {
		w.logger.DebugContext(ctx, "Mirror already up to date", log.FieldEntries, len(entries))
		return nil
	}

	if err := w.mirror.WriteSnapshot(ctx, entries); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	w.lastBlob = blob

	w.logger.InfoContext(ctx, "Mirrored ledger snapshot",
		log.FieldOperation, log.OpMirror,
		log.FieldEntries, len(entries))
	return nil
}

// RunPeriodicSync resyncs immediately and then every interval until ctx is
// cancelled. Failures are logged and retried on the next tick.
func (w *MirrorWorker) RunPeriodicSync(ctx context.Context, interval time.Duration) error {
	w.logger.InfoContext(ctx, "Starting periodic mirror sync", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := w.Resync(ctx); err != nil {
			w.logger.ErrorContext(ctx, "Periodic mirror sync failed",
				log.FieldOperation, log.OpMirror,
				log.FieldError, err)
		}

		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Stopping periodic mirror sync")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
