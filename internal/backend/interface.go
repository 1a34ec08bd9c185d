package backend

import (
	"context"

	"moneytracker/internal/sheets"
	"moneytracker/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// StoreResult contains the ledger store and optional cleanup function
type StoreResult struct {
	Store   storage.Store
	Cleanup CleanupFunc
}

// MirrorResult contains the snapshot mirror used by the worker
type MirrorResult struct {
	Mirror  sheets.Mirror
	Cleanup CleanupFunc
}

// Factory creates stores and mirrors based on configuration
type Factory interface {
	// CreateStore opens the primary ledger store
	CreateStore(ctx context.Context, config Config) (*StoreResult, error)
	// CreateMirror opens the spreadsheet mirror, or a file mirror when no
	// spreadsheet is configured
	CreateMirror(ctx context.Context, config Config) (*MirrorResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// File specific
	LedgerFilePath string

	// SQLite specific
	SQLiteDBPath string
	LedgerKey    string

	// Mirror
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	MirrorFilePath           string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// Close runs the cleanup function, if any.
func (r *StoreResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Close runs the cleanup function, if any.
func (r *MirrorResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}
