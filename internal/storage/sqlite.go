package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"moneytracker/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the blob as one row of a key-value table.
type SQLiteStore struct {
	db      *sql.DB
	queries *Queries
	key     string
}

func NewSQLiteStore(dbPath, key string) (*SQLiteStore, error) {
	if key == "" {
		key = DefaultKey
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{
		db:      db,
		queries: New(db),
		key:     key,
	}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]core.Entry, error) {
	blob, err := s.blob(ctx)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.key, err)
	}
	return Decode(blob)
}

func (s *SQLiteStore) Save(ctx context.Context, entries []core.Entry) error {
	blob, err := Encode(entries)
	if err != nil {
		return err
	}
	if err := s.queries.PutValue(ctx, PutValueParams{Key: s.key, Value: blob}); err != nil {
		return fmt.Errorf("put %s: %w", s.key, err)
	}

	slog.DebugContext(ctx, "Ledger saved to SQLite",
		"key", s.key,
		"entries", len(entries),
		"bytes", len(blob))
	return nil
}

// blob returns the raw stored bytes, or nil when nothing was saved yet.
func (s *SQLiteStore) blob(ctx context.Context) ([]byte, error) {
	blob, err := s.queries.GetValue(ctx, s.key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return blob, err
}
