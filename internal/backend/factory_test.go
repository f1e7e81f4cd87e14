package backend

import (
	"context"
	"path/filepath"
	"testing"

	"ledger/internal/config"
)

func TestBackendTypeIsValid(t *testing.T) {
	for _, bt := range []BackendType{SQLiteBackend, MemoryBackend} {
		if !bt.IsValid() {
			t.Errorf("%s should be valid", bt)
		}
	}
	if BackendType("sheets").IsValid() {
		t.Error("sheets should not be valid")
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "bogus"}); err == nil {
		t.Fatal("expected error for invalid backend")
	}

	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", ImportMaxRows: 7})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "x.db" || cfg.ImportMaxRows != 7 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Type: SQLiteBackend}).Validate(); err == nil {
		t.Fatal("expected error for sqlite without path")
	}
	if err := (Config{Type: MemoryBackend, ImportMaxRows: -1}).Validate(); err == nil {
		t.Fatal("expected error for negative max rows")
	}
	if err := (Config{Type: MemoryBackend}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	for _, cfg := range []Config{
		{Type: MemoryBackend},
		{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "ledger.db")},
	} {
		t.Run(cfg.Type.String(), func(t *testing.T) {
			b, err := f.CreateBackend(ctx, cfg)
			if err != nil {
				t.Fatalf("CreateBackend: %v", err)
			}
			defer b.Close()

			if b.Store == nil || b.Ledger == nil || b.Import == nil {
				t.Fatalf("incomplete backend: %+v", b)
			}
			bal, err := b.Ledger.Balance(ctx)
			if err != nil {
				t.Fatalf("balance: %v", err)
			}
			if bal.Total.Cents != 0 {
				t.Fatalf("expected empty ledger, got %s", bal.Total)
			}
		})
	}
}
