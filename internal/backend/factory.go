package backend

import (
	"context"
	"fmt"

	"moneytracker/internal/adapters"
	"moneytracker/internal/log"
	gsheet "moneytracker/internal/sheets/google"
	"moneytracker/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		cfg := log.DefaultConfig()
		cfg.Component = log.ComponentBackend
		logger = log.New(cfg)
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateStore implements Factory.CreateStore
func (f *DefaultFactory) CreateStore(ctx context.Context, config Config) (*StoreResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteStore(ctx, config)
	case FileBackend:
		return f.createFileStore(ctx, config)
	case MemoryBackend:
		return f.createMemoryStore(ctx)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteStore(ctx context.Context, config Config) (*StoreResult, error) {
	store, err := storage.NewSQLiteStore(config.SQLiteDBPath, config.LedgerKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"key", config.LedgerKey)

	return &StoreResult{
		Store:   store,
		Cleanup: store.Close,
	}, nil
}

func (f *DefaultFactory) createFileStore(ctx context.Context, config Config) (*StoreResult, error) {
	store, err := storage.NewFileStore(config.LedgerFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file store: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized file backend", "path", store.Path())

	return &StoreResult{
		Store:   store,
		Cleanup: store.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryStore(ctx context.Context) (*StoreResult, error) {
	f.logger.WarnContext(ctx, "Initialized memory backend, entries are lost on restart")

	return &StoreResult{
		Store:   storage.NewMemoryStore(nil),
		Cleanup: nil, // No cleanup needed for memory backend
	}, nil
}

// CreateMirror implements Factory.CreateMirror
func (f *DefaultFactory) CreateMirror(ctx context.Context, config Config) (*MirrorResult, error) {
	if config.GoogleSpreadsheetID != "" {
		cli, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:      config.GoogleSpreadsheetID,
			SheetName:          config.GoogleSheetName,
			ServiceAccountJSON: config.GoogleServiceAccountJSON,
			ServiceAccountFile: config.GoogleServiceAccountFile,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}

		f.logger.InfoContext(ctx, "Initialized Google Sheets mirror", "sheet", config.GoogleSheetName)
		return &MirrorResult{Mirror: cli}, nil
	}

	if config.MirrorFilePath == "" {
		return nil, fmt.Errorf("no mirror configured: set a spreadsheet id or a mirror file path")
	}
	store, err := storage.NewFileStore(config.MirrorFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file mirror: %w", err)
	}
	mirror := adapters.NewStoreMirror(store)

	f.logger.InfoContext(ctx, "Initialized file mirror", "path", store.Path())
	return &MirrorResult{
		Mirror:  mirror,
		Cleanup: mirror.Close,
	}, nil
}
