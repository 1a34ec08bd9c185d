// Package storage persists the whole entry collection as a single serialized
// blob stored under one key.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"moneytracker/internal/core"
)

// DefaultKey names the blob holding the entry collection.
const DefaultKey = "transactions"

// ErrCorruptBlob is returned by Load when the stored blob cannot be decoded.
var ErrCorruptBlob = errors.New("corrupt ledger blob")

// Store loads and saves the full entry collection as one atomic unit.
// A missing blob loads as an empty collection without error.
type Store interface {
	Load(ctx context.Context) ([]core.Entry, error)
	Save(ctx context.Context, entries []core.Entry) error
	Close() error
}

// Encode serializes entries as a JSON array. A nil collection encodes as [].
func Encode(entries []core.Entry) ([]byte, error) {
	if entries == nil {
		entries = []core.Entry{}
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode entries: %w", err)
	}
	return b, nil
}

// Decode parses a blob produced by Encode. Empty input decodes to nil.
func Decode(blob []byte) ([]core.Entry, error) {
	if len(bytes.TrimSpace(blob)) == 0 {
		return nil, nil
	}
	var entries []core.Entry
	if err := json.Unmarshal(blob, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
	}
	seen := make(map[int64]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrCorruptBlob, e.ID)
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrCorruptBlob, e.ID, err)
		}
		seen[e.ID] = struct{}{}
	}
	return entries, nil
}
