package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ledger/internal/core"
	"ledger/internal/ledger"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	tx      *sql.Tx // set on repositories handed out by WithTx
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil && r.tx == nil {
		return r.db.Close()
	}
	return nil
}

// ListTransactions implements ledger.TransactionReader
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	txs := make([]core.Transaction, len(rows))
	for i, row := range rows {
		txs[i] = core.Transaction{
			ID:         row.ID,
			Title:      row.Title,
			Value:      core.Money{Cents: row.ValueCents},
			Type:       core.TransactionType(row.Type),
			CategoryID: row.CategoryID,
			Category: &core.Category{
				ID:        row.CategoryID,
				Title:     row.CategoryTitle,
				CreatedAt: row.CategoryAt,
			},
			CreatedAt: row.CreatedAt,
		}
	}
	return txs, nil
}

// CreateTransactions implements ledger.TransactionWriter
func (r *SQLiteRepository) CreateTransactions(ctx context.Context, txs []core.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	params := make([]CreateTransactionParams, len(txs))
	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("create transactions: %w", err)
		}
		params[i] = CreateTransactionParams{
			ID:         tx.ID,
			Title:      tx.Title,
			ValueCents: tx.Value.Cents,
			Type:       tx.Type.String(),
			CategoryID: tx.CategoryID,
			CreatedAt:  tx.CreatedAt,
		}
	}

	err := r.atomically(ctx, func(q *Queries) error {
		return q.InsertTransactions(ctx, params)
	})
	if err != nil {
		return fmt.Errorf("create transactions: %w", err)
	}

	slog.DebugContext(ctx, "Transactions saved to SQLite", "count", len(txs))
	return nil
}

// DeleteTransaction implements ledger.TransactionWriter
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	n, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return core.ErrTransactionNotFound
	}

	slog.InfoContext(ctx, "Transaction deleted from SQLite", "id", id)
	return nil
}

// GetOrCreateCategory implements ledger.CategoryStore
func (r *SQLiteRepository) GetOrCreateCategory(ctx context.Context, title string) (core.Category, error) {
	err := r.queries.InsertCategoryIfAbsent(ctx, CreateCategoryParams{
		ID:        core.NewID(),
		Title:     title,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category %q: %w", title, err)
	}

	c, err := r.queries.GetCategoryByTitle(ctx, title)
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %q: %w", title, err)
	}
	return toCoreCategory(c), nil
}

// FindCategoriesByTitles implements ledger.CategoryStore
func (r *SQLiteRepository) FindCategoriesByTitles(ctx context.Context, titles []string) ([]core.Category, error) {
	unique := make([]string, 0, len(titles))
	seen := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		unique = append(unique, t)
	}

	rows, err := r.queries.ListCategoriesByTitles(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("find categories by title: %w", err)
	}

	categories := make([]core.Category, len(rows))
	for i, c := range rows {
		categories[i] = toCoreCategory(c)
	}
	return categories, nil
}

// CreateCategories implements ledger.CategoryStore
func (r *SQLiteRepository) CreateCategories(ctx context.Context, categories []core.Category) error {
	if len(categories) == 0 {
		return nil
	}

	params := make([]CreateCategoryParams, len(categories))
	for i, c := range categories {
		params[i] = CreateCategoryParams{ID: c.ID, Title: c.Title, CreatedAt: c.CreatedAt}
	}

	err := r.atomically(ctx, func(q *Queries) error {
		return q.InsertCategories(ctx, params)
	})
	if err != nil {
		return fmt.Errorf("create categories: %w", err)
	}

	slog.DebugContext(ctx, "Categories saved to SQLite", "count", len(categories))
	return nil
}

// WithTx implements ledger.Store. Nested calls join the outer transaction.
func (r *SQLiteRepository) WithTx(ctx context.Context, fn func(tx ledger.Store) error) error {
	if r.tx != nil {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txRepo := &SQLiteRepository{db: r.db, queries: r.queries.WithTx(tx), tx: tx}
	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			slog.WarnContext(ctx, "Rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// atomically runs a multi-statement write in its own transaction unless the
// repository is already bound to one.
func (r *SQLiteRepository) atomically(ctx context.Context, fn func(q *Queries) error) error {
	if r.tx != nil {
		return fn(r.queries)
	}
	return r.WithTx(ctx, func(s ledger.Store) error {
		return fn(s.(*SQLiteRepository).queries)
	})
}

func toCoreCategory(c Category) core.Category {
	return core.Category{ID: c.ID, Title: c.Title, CreatedAt: c.CreatedAt}
}
