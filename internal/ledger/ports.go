package ledger

import (
	"context"

	"ledger/internal/core"
)

// Ports for the persistence side of the ledger.
type (
	TransactionReader interface {
		// ListTransactions returns the whole ledger in insertion order,
		// each transaction carrying its resolved Category.
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	TransactionWriter interface {
		// CreateTransactions inserts all transactions or none.
		CreateTransactions(ctx context.Context, txs []core.Transaction) error
		// DeleteTransaction returns core.ErrTransactionNotFound for unknown ids.
		DeleteTransaction(ctx context.Context, id string) error
	}

	CategoryStore interface {
		// GetOrCreateCategory returns the category with the exact title,
		// creating it when absent. Safe against concurrent creators.
		GetOrCreateCategory(ctx context.Context, title string) (core.Category, error)
		// FindCategoriesByTitles does a single bulk lookup by exact title.
		FindCategoriesByTitles(ctx context.Context, titles []string) ([]core.Category, error)
		// CreateCategories inserts all categories or none.
		CreateCategories(ctx context.Context, categories []core.Category) error
	}

	// Store is the full persistence surface used by the services.
	Store interface {
		TransactionReader
		TransactionWriter
		CategoryStore

		// WithTx runs fn against a Store bound to one atomic unit of work.
		// The unit commits when fn returns nil and rolls back otherwise.
		WithTx(ctx context.Context, fn func(tx Store) error) error
	}
)
