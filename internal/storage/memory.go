package storage

import (
	"context"
	"sync"

	"moneytracker/internal/core"
)

// MemoryStore keeps the encoded blob in process memory. It goes through the
// same codec as the durable stores.
type MemoryStore struct {
	mu   sync.Mutex
	blob []byte
}

// NewMemoryStore returns a store seeded with blob, which may be nil.
func NewMemoryStore(blob []byte) *MemoryStore {
	return &MemoryStore{blob: append([]byte(nil), blob...)}
}

func (s *MemoryStore) Load(_ context.Context) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Decode(s.blob)
}

func (s *MemoryStore) Save(_ context.Context, entries []core.Entry) error {
	b, err := Encode(entries)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = b
	return nil
}

// Blob returns a copy of the stored bytes.
func (s *MemoryStore) Blob() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.blob...)
}

func (s *MemoryStore) Close() error { return nil }
