package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"moneytracker/internal/amqp"
	"moneytracker/internal/core"
	"moneytracker/internal/log"
	"moneytracker/internal/storage"
)

// Publisher announces entry changes to other processes.
type Publisher interface {
	PublishEntryEvent(ctx context.Context, op string, id int64) error
}

type Option func(*Ledger)

// WithPublisher sends a change event after every successful mutation.
func WithPublisher(p Publisher) Option {
	return func(l *Ledger) { l.publisher = p }
}

func WithLogger(logger *log.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// WithClock replaces time.Now for id and timestamp assignment.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) { l.clock = clock }
}

// Ledger holds the entry collection in memory, newest first, and writes the
// whole collection through to the store after every mutation.
type Ledger struct {
	mu        sync.Mutex
	store     storage.Store
	publisher Publisher
	logger    *log.Logger
	clock     func() time.Time
	entries   []core.Entry
	lastID    int64
}

// Open loads the collection once. A store that cannot be read leaves the
// ledger empty instead of failing.
func Open(ctx context.Context, store storage.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store: store,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		cfg := log.DefaultConfig()
		cfg.Component = log.ComponentLedger
		l.logger = log.New(cfg)
	}

	entries, err := store.Load(ctx)
	if err != nil {
		l.logger.WarnContext(ctx, "Persisted ledger unavailable, starting empty",
			log.FieldOperation, log.OpLoad,
			log.FieldError, fmt.Errorf("%w: %v", core.ErrPersistence, err))
		entries = nil
	}
	l.entries = entries
	for _, e := range entries {
		l.lastID = max(l.lastID, e.ID)
	}

	l.logger.InfoContext(ctx, "Ledger opened", log.FieldEntries, len(entries))
	return l
}

// Create validates in, assigns a fresh id and timestamp, and prepends the entry.
func (l *Ledger) Create(ctx context.Context, in core.EntryInput) (core.Entry, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.Entry{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	id := max(now.UnixMilli(), l.lastID+1)
	e := in.Apply(core.Entry{ID: id, Timestamp: core.NewTimestamp(now)})

	prev := l.entries
	l.entries = append([]core.Entry{e}, prev...)
	if err := l.saveLocked(ctx); err != nil {
		l.entries = prev
		return core.Entry{}, err
	}
	l.lastID = id

	l.logMutation(ctx, log.OpCreate, e)
	l.publish(ctx, amqp.OpCreated, e.ID)
	return e, nil
}

// Update replaces the mutable fields of the entry with the given id, keeping
// its position and timestamp.
func (l *Ledger) Update(ctx context.Context, id int64, in core.EntryInput) (core.Entry, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.Entry{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexLocked(id)
	if i < 0 {
		return core.Entry{}, fmt.Errorf("update %d: %w", id, core.ErrNotFound)
	}

	old := l.entries[i]
	updated := in.Apply(old)
	l.entries[i] = updated
	if err := l.saveLocked(ctx); err != nil {
		l.entries[i] = old
		return core.Entry{}, err
	}

	l.logMutation(ctx, log.OpUpdate, updated)
	l.publish(ctx, amqp.OpUpdated, id)
	return updated, nil
}

// Delete removes the entry with the given id. It reports whether an entry was
// removed; deleting an unknown id is a no-op.
func (l *Ledger) Delete(ctx context.Context, id int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexLocked(id)
	if i < 0 {
		return false, nil
	}

	prev := l.entries
	removed := prev[i]
	l.entries = slices.Delete(slices.Clone(prev), i, i+1)
	if err := l.saveLocked(ctx); err != nil {
		l.entries = prev
		return false, err
	}

	l.logMutation(ctx, log.OpDelete, removed)
	l.publish(ctx, amqp.OpDeleted, id)
	return true, nil
}

func (l *Ledger) Get(id int64) (core.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexLocked(id)
	if i < 0 {
		return core.Entry{}, fmt.Errorf("get %d: %w", id, core.ErrNotFound)
	}
	return l.entries[i], nil
}

// List returns a copy of the entries matching f in collection order.
func (l *Ledger) List(f core.Filter) []core.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return core.FilterEntries(l.entries, f)
}

// Totals is recomputed from the current collection on every call.
func (l *Ledger) Totals() core.Totals {
	l.mu.Lock()
	defer l.mu.Unlock()
	return core.ComputeTotals(l.entries)
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Ledger) indexLocked(id int64) int {
	return slices.IndexFunc(l.entries, func(e core.Entry) bool { return e.ID == id })
}

func (l *Ledger) saveLocked(ctx context.Context) error {
	if err := l.store.Save(ctx, l.entries); err != nil {
		l.logger.ErrorContext(ctx, "Failed to persist ledger",
			log.FieldOperation, log.OpSave,
			log.FieldEntries, len(l.entries),
			log.FieldError, err)
		return fmt.Errorf("%w: %w", core.ErrPersistence, err)
	}
	return nil
}

func (l *Ledger) logMutation(ctx context.Context, op string, e core.Entry) {
	log.NewStructuredLogger(l.logger).
		LogEntryMutation(ctx, op, e.ID, e.Kind.String(), e.Amount.String(), e.Category)
}

func (l *Ledger) publish(ctx context.Context, op string, id int64) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.PublishEntryEvent(ctx, op, id); err != nil {
		// the mutation is already durable
		l.logger.WarnContext(ctx, "Failed to publish entry event",
			log.FieldOperation, log.OpPublish,
			log.FieldEntryID, id,
			log.FieldError, err)
	}
}
