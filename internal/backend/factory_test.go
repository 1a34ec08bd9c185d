package backend

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"moneytracker/internal/config"
	"moneytracker/internal/core"
	"moneytracker/internal/log"
	"moneytracker/internal/storage"
)

func quietFactory() Factory {
	return NewFactory(log.New(log.Config{Component: log.ComponentBackend, Output: io.Discard}))
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:    "sqlite",
		SQLiteDBPath:   "./data/x.db",
		LedgerKey:      "transactions",
		MirrorFilePath: "./data/mirror.json",
	})
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "./data/x.db" || cfg.LedgerKey != "transactions" || cfg.MirrorFilePath != "./data/mirror.json" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{"memory", Config{Type: MemoryBackend}, ""},
		{"file", Config{Type: FileBackend, LedgerFilePath: "ledger.json"}, ""},
		{"file without path", Config{Type: FileBackend}, "ledger file path is required"},
		{"sqlite without path", Config{Type: SQLiteBackend}, "SQLite database path is required"},
		{"unknown", Config{Type: "sheets"}, "invalid backend type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	got := strings.Join(GetBackendTypeStrings(), ",")
	if got != "memory,file,sqlite" {
		t.Fatalf("GetBackendTypeStrings() = %s", got)
	}
}

func TestCreateStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	f := quietFactory()

	tests := []struct {
		name   string
		config Config
	}{
		{"memory", Config{Type: MemoryBackend}},
		{"file", Config{Type: FileBackend, LedgerFilePath: filepath.Join(dir, "ledger.json")}},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "ledger.db"), LedgerKey: storage.DefaultKey}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.CreateStore(ctx, tt.config)
			if err != nil {
				t.Fatalf("CreateStore() error = %v", err)
			}
			if res.Cleanup != nil {
				defer res.Cleanup()
			}

			amt, _ := core.AmountFromString("5")
			entries := []core.Entry{{ID: 1, Amount: amt, Kind: core.Income, Category: "Gift", Timestamp: core.NewTimestamp(time.Now())}}
			if err := res.Store.Save(ctx, entries); err != nil {
				t.Fatalf("save: %v", err)
			}
			got, err := res.Store.Load(ctx)
			if err != nil || len(got) != 1 || got[0].Category != "Gift" {
				t.Fatalf("load = %+v, %v", got, err)
			}
		})
	}
}

func TestCreateStoreRejectsInvalidConfig(t *testing.T) {
	if _, err := quietFactory().CreateStore(context.Background(), Config{Type: FileBackend}); err == nil {
		t.Fatal("expected error")
	}
}

func TestCreateMirrorFallsBackToFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "mirror.json")

	res, err := quietFactory().CreateMirror(ctx, Config{Type: FileBackend, MirrorFilePath: path})
	if err != nil {
		t.Fatalf("CreateMirror() error = %v", err)
	}
	defer res.Cleanup()

	if err := res.Mirror.WriteSnapshot(ctx, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := res.Mirror.ReadSnapshot(ctx)
	if err != nil || len(got) != 0 {
		t.Fatalf("read = %+v, %v", got, err)
	}

	if _, err := quietFactory().CreateMirror(ctx, Config{}); err == nil {
		t.Fatal("expected error without any mirror target")
	}
}
