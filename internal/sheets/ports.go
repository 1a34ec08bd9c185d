package sheets

import (
	"context"

	"moneytracker/internal/core"
)

// Ports for outbound mirrors of the ledger.
type (
	// SnapshotWriter replaces the mirrored copy with the full collection.
	SnapshotWriter interface {
		WriteSnapshot(ctx context.Context, entries []core.Entry) error
	}

	// SnapshotReader returns the last mirrored collection.
	SnapshotReader interface {
		ReadSnapshot(ctx context.Context) ([]core.Entry, error)
	}

	Mirror interface {
		SnapshotWriter
		SnapshotReader
	}
)
