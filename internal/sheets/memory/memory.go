package memory

import (
	"context"
	"slices"
	"sync"

	"moneytracker/internal/core"
	ports "moneytracker/internal/sheets"
)

// Mirror keeps the last snapshot in memory. It stands in for the sheet in
// tests and local runs.
type Mirror struct {
	mu       sync.Mutex
	snapshot []core.Entry
	writes   int
	err      error
}

var _ ports.Mirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{}
}

// WriteSnapshot replaces the stored snapshot with a copy of entries.
func (m *Mirror) WriteSnapshot(_ context.Context, entries []core.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.snapshot = slices.Clone(entries)
	m.writes++
	return nil
}

func (m *Mirror) ReadSnapshot(_ context.Context) ([]core.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.snapshot), nil
}

// Writes reports how many snapshots have been accepted.
func (m *Mirror) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// FailWith makes subsequent writes return err. A nil err clears it.
func (m *Mirror) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}
