package services

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"ledger/internal/core"
	"ledger/internal/ledger"
	"ledger/internal/ledger/memory"
	"ledger/internal/storage"
)

// failingStore wraps a store and fails CreateTransactions, including inside
// its units of work.
type failingStore struct {
	ledger.Store
	err error
}

func (f *failingStore) CreateTransactions(ctx context.Context, txs []core.Transaction) error {
	return f.err
}

func (f *failingStore) WithTx(ctx context.Context, fn func(tx ledger.Store) error) error {
	return f.Store.WithTx(ctx, func(tx ledger.Store) error {
		return fn(&failingStore{Store: tx, err: f.err})
	})
}

// storeBackend opens an empty store seeded with the given categories.
type storeBackend struct {
	name string
	open func(t *testing.T, categories ...string) ledger.Store
}

func storeBackends() []storeBackend {
	return []storeBackend{
		{
			name: "memory",
			open: func(t *testing.T, categories ...string) ledger.Store {
				return memory.NewWithCategories(categories...)
			},
		},
		{
			name: "sqlite",
			open: func(t *testing.T, categories ...string) ledger.Store {
				t.Helper()
				repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
				if err != nil {
					t.Fatalf("NewSQLiteRepository: %v", err)
				}
				t.Cleanup(func() { repo.Close() })
				for _, c := range categories {
					if _, err := repo.GetOrCreateCategory(context.Background(), c); err != nil {
						t.Fatalf("seed category %q: %v", c, err)
					}
				}
				return repo
			},
		},
	}
}

func findCategories(t *testing.T, st ledger.Store, titles ...string) []core.Category {
	t.Helper()
	cats, err := st.FindCategoriesByTitles(context.Background(), titles)
	if err != nil {
		t.Fatalf("find categories: %v", err)
	}
	return cats
}

type recordingPublisher struct {
	mu       sync.Mutex
	created  []core.Transaction
	imported [][]core.Transaction
	err      error
}

func (p *recordingPublisher) PublishTransactionCreated(_ context.Context, tx core.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, tx)
	return p.err
}

func (p *recordingPublisher) PublishTransactionsImported(_ context.Context, _ string, txs []core.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.imported = append(p.imported, txs)
	return p.err
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "import.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
