package adapters

import (
	"context"

	"moneytracker/internal/core"
	"moneytracker/internal/sheets"
	"moneytracker/internal/storage"
)

// StoreMirror lets any storage.Store act as a snapshot mirror, so the worker
// can copy the ledger into a second file or database when no spreadsheet is
// configured.
type StoreMirror struct {
	store storage.Store
}

var _ sheets.Mirror = (*StoreMirror)(nil)

func NewStoreMirror(store storage.Store) *StoreMirror {
	return &StoreMirror{store: store}
}

// WriteSnapshot implements sheets.SnapshotWriter
func (m *StoreMirror) WriteSnapshot(ctx context.Context, entries []core.Entry) error {
	return m.store.Save(ctx, entries)
}

// ReadSnapshot implements sheets.SnapshotReader
func (m *StoreMirror) ReadSnapshot(ctx context.Context) ([]core.Entry, error) {
	return m.store.Load(ctx)
}

func (m *StoreMirror) Close() error {
	return m.store.Close()
}
