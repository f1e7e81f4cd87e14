package memory

import (
	"context"
	"sync"
	"time"

	"ledger/internal/core"
	"ledger/internal/ledger"
)

// Store is an in-process ledger.Store. Writes outside WithTx wait for any
// running unit of work, so a rollback never discards them. Reads are not
// isolated and may observe a unit of work in progress.
type Store struct {
	txMu sync.Mutex // held by every write and for the duration of a WithTx unit

	mu           sync.Mutex
	categories   []core.Category
	transactions []core.Transaction
}

var (
	_ ledger.Store = (*Store)(nil)
	_ ledger.Store = txStore{}
)

func New() *Store {
	return &Store{}
}

// NewWithCategories seeds the store with categories, skipping blank and
// duplicate titles.
func NewWithCategories(titles ...string) *Store {
	s := New()
	seen := map[string]struct{}{}
	for _, t := range titles {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		s.categories = append(s.categories, core.Category{ID: core.NewID(), Title: t, CreatedAt: time.Now().UTC()})
	}
	return s
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.transactions))
	for i, tx := range s.transactions {
		if c, ok := s.categoryByID(tx.CategoryID); ok {
			tx.Category = &c
		}
		out[i] = tx
	}
	return out, nil
}

func (s *Store) CreateTransactions(_ context.Context, txs []core.Transaction) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.createTransactions(txs)
}

func (s *Store) createTransactions(txs []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return err
		}
	}
	for _, tx := range txs {
		tx.Category = nil
		s.transactions = append(s.transactions, tx)
	}
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.deleteTransaction(id)
}

func (s *Store) deleteTransaction(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tx := range s.transactions {
		if tx.ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			return nil
		}
	}
	return core.ErrTransactionNotFound
}

func (s *Store) GetOrCreateCategory(_ context.Context, title string) (core.Category, error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.getOrCreateCategory(title), nil
}

func (s *Store) getOrCreateCategory(title string) core.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Title == title {
			return c
		}
	}
	c := core.Category{ID: core.NewID(), Title: title, CreatedAt: time.Now().UTC()}
	s.categories = append(s.categories, c)
	return c
}

func (s *Store) FindCategoriesByTitles(_ context.Context, titles []string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		want[t] = struct{}{}
	}
	var out []core.Category
	for _, c := range s.categories {
		if _, ok := want[c.Title]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) CreateCategories(_ context.Context, categories []core.Category) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.createCategories(categories)
	return nil
}

func (s *Store) createCategories(categories []core.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append(s.categories, categories...)
}

// Categories returns a copy of all stored categories.
func (s *Store) Categories() []core.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.categories...)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx ledger.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	cats := append([]core.Category(nil), s.categories...)
	txs := append([]core.Transaction(nil), s.transactions...)
	s.mu.Unlock()

	err := fn(txStore{s})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.mu.Lock()
		s.categories, s.transactions = cats, txs
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) categoryByID(id string) (core.Category, bool) {
	for _, c := range s.categories {
		if c.ID == id {
			return c, true
		}
	}
	return core.Category{}, false
}

// txStore is the Store handed to a WithTx unit; txMu is already held, so
// writes go straight to the unlocked helpers and nested units join.
type txStore struct {
	s *Store
}

func (t txStore) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return t.s.ListTransactions(ctx)
}

func (t txStore) CreateTransactions(_ context.Context, txs []core.Transaction) error {
	return t.s.createTransactions(txs)
}

func (t txStore) DeleteTransaction(_ context.Context, id string) error {
	return t.s.deleteTransaction(id)
}

func (t txStore) GetOrCreateCategory(_ context.Context, title string) (core.Category, error) {
	return t.s.getOrCreateCategory(title), nil
}

func (t txStore) FindCategoriesByTitles(ctx context.Context, titles []string) ([]core.Category, error) {
	return t.s.FindCategoriesByTitles(ctx, titles)
}

func (t txStore) CreateCategories(_ context.Context, categories []core.Category) error {
	t.s.createCategories(categories)
	return nil
}

func (t txStore) WithTx(_ context.Context, fn func(tx ledger.Store) error) error {
	return fn(t)
}
