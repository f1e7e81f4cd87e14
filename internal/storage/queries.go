package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Rows per multi-row INSERT, kept well under SQLite's bound parameter limit.
const insertBatchSize = 100

const timeLayout = time.RFC3339Nano

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Category struct {
	ID        string
	Title     string
	CreatedAt time.Time
}

type Transaction struct {
	ID            string
	Title         string
	ValueCents    int64
	Type          string
	CategoryID    string
	CreatedAt     time.Time
	CategoryTitle string
	CategoryAt    time.Time
}

type CreateCategoryParams struct {
	ID        string
	Title     string
	CreatedAt time.Time
}

type CreateTransactionParams struct {
	ID         string
	Title      string
	ValueCents int64
	Type       string
	CategoryID string
	CreatedAt  time.Time
}

const listTransactions = `
SELECT t.id, t.title, t.value_cents, t.type, t.category_id, t.created_at, c.title, c.created_at
FROM transactions t
JOIN categories c ON c.id = t.category_id
ORDER BY t.rowid`

func (q *Queries) ListTransactions(ctx context.Context) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Transaction
	for rows.Next() {
		var (
			i                  Transaction
			createdAt, catTime string
		)
		if err := rows.Scan(&i.ID, &i.Title, &i.ValueCents, &i.Type, &i.CategoryID, &createdAt, &i.CategoryTitle, &catTime); err != nil {
			return nil, err
		}
		if i.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if i.CategoryAt, err = parseTime(catTime); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const insertCategoryIfAbsent = `
INSERT INTO categories (id, title, created_at) VALUES (?, ?, ?)
ON CONFLICT (title) DO NOTHING`

func (q *Queries) InsertCategoryIfAbsent(ctx context.Context, arg CreateCategoryParams) error {
	_, err := q.db.ExecContext(ctx, insertCategoryIfAbsent, arg.ID, arg.Title, formatTime(arg.CreatedAt))
	return err
}

const getCategoryByTitle = `
SELECT id, title, created_at FROM categories WHERE title = ?`

func (q *Queries) GetCategoryByTitle(ctx context.Context, title string) (Category, error) {
	var (
		i         Category
		createdAt string
	)
	err := q.db.QueryRowContext(ctx, getCategoryByTitle, title).Scan(&i.ID, &i.Title, &createdAt)
	if err != nil {
		return i, err
	}
	i.CreatedAt, err = parseTime(createdAt)
	return i, err
}

func (q *Queries) ListCategoriesByTitles(ctx context.Context, titles []string) ([]Category, error) {
	var items []Category
	for start := 0; start < len(titles); start += insertBatchSize {
		end := min(start+insertBatchSize, len(titles))
		batch := titles[start:end]

		query := "SELECT id, title, created_at FROM categories WHERE title IN (" + placeholders(len(batch), 1) + ") ORDER BY rowid"
		args := make([]interface{}, len(batch))
		for i, t := range batch {
			args[i] = t
		}

		rows, err := q.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var (
				i         Category
				createdAt string
			)
			if err := rows.Scan(&i.ID, &i.Title, &createdAt); err != nil {
				rows.Close()
				return nil, err
			}
			if i.CreatedAt, err = parseTime(createdAt); err != nil {
				rows.Close()
				return nil, err
			}
			items = append(items, i)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (q *Queries) InsertCategories(ctx context.Context, args []CreateCategoryParams) error {
	for start := 0; start < len(args); start += insertBatchSize {
		batch := args[start:min(start+insertBatchSize, len(args))]
		values := make([]interface{}, 0, len(batch)*3)
		for _, a := range batch {
			values = append(values, a.ID, a.Title, formatTime(a.CreatedAt))
		}
		query := "INSERT INTO categories (id, title, created_at) VALUES " + placeholders(len(batch), 3)
		if _, err := q.db.ExecContext(ctx, query, values...); err != nil {
			return err
		}
	}
	return nil
}

func (q *Queries) InsertTransactions(ctx context.Context, args []CreateTransactionParams) error {
	for start := 0; start < len(args); start += insertBatchSize {
		batch := args[start:min(start+insertBatchSize, len(args))]
		values := make([]interface{}, 0, len(batch)*6)
		for _, a := range batch {
			values = append(values, a.ID, a.Title, a.ValueCents, a.Type, a.CategoryID, formatTime(a.CreatedAt))
		}
		query := "INSERT INTO transactions (id, title, value_cents, type, category_id, created_at) VALUES " + placeholders(len(batch), 6)
		if _, err := q.db.ExecContext(ctx, query, values...); err != nil {
			return err
		}
	}
	return nil
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// placeholders renders n groups of width "?" marks. Width 1 yields "?, ?",
// wider groups yield "(?, ?), (?, ?)".
func placeholders(n, width int) string {
	group := strings.TrimSuffix(strings.Repeat("?, ", width), ", ")
	if width > 1 {
		group = "(" + group + ")"
	}
	groups := make([]string, n)
	for i := range groups {
		groups[i] = group
	}
	return strings.Join(groups, ", ")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
