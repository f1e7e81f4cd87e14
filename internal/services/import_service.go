package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"ledger/internal/core"
	"ledger/internal/ledger"
	applog "ledger/internal/log"
)

// ErrTooManyRows is returned when an import exceeds the configured row cap.
var ErrTooManyRows = errors.New("import exceeds maximum row count")

// ImportService bulk-loads transactions from CSV files.
type ImportService struct {
	store   ledger.Store
	events  EventPublisher
	maxRows int
}

type ImportOption func(*ImportService)

// WithMaxRows caps the number of accepted rows per import. Zero means no cap.
func WithMaxRows(n int) ImportOption {
	return func(s *ImportService) {
		s.maxRows = n
	}
}

func NewImportService(store ledger.Store, events EventPublisher, opts ...ImportOption) *ImportService {
	s := &ImportService{
		store:  store,
		events: events,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ImportResult describes a committed import.
type ImportResult struct {
	Transactions      []core.Transaction
	CreatedCategories []core.Category
	Skipped           int
	SourceRemoved     bool
}

// candidate is an accepted row waiting for its category.
type candidate struct {
	title    string
	value    core.Money
	typ      core.TransactionType
	category string
}

// ImportTransactions imports the CSV file at path and returns the stored
// transactions in file order.
func (s *ImportService) ImportTransactions(ctx context.Context, path string) ([]core.Transaction, error) {
	res, err := s.Import(ctx, path)
	if err != nil {
		return nil, err
	}
	return res.Transactions, nil
}

// Import reads every row of the CSV file at path, reconciles categories and
// stores all accepted transactions in one store transaction.
//
// Rows missing a title, type or value are dropped silently; rows with an
// unknown type or an unparseable value are dropped with a warning. The file
// is removed only after the store transaction commits. Store errors are
// returned as-is (wrapped) and leave both the store and the file untouched.
func (s *ImportService) Import(ctx context.Context, path string) (ImportResult, error) {
	started := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	candidates, titles, skipped, err := s.collect(ctx, f)
	if err != nil {
		return ImportResult{}, err
	}

	var res ImportResult
	err = s.store.WithTx(ctx, func(st ledger.Store) error {
		var err error
		res.Transactions, res.CreatedCategories, err = reconcile(ctx, st, candidates, titles)
		return err
	})
	if err != nil {
		structuredLogger(ctx).LogError(ctx, "Import rolled back", err,
			applog.ComponentStorage, applog.OpImport, applog.LogFields{applog.FieldSource: path})
		return ImportResult{}, fmt.Errorf("store imported transactions: %w", err)
	}
	res.Skipped = skipped

	f.Close()
	if err := os.Remove(path); err != nil {
		structuredLogger(ctx).LogError(ctx, "Failed to remove imported file", err,
			applog.ComponentImport, applog.OpImport, applog.LogFields{applog.FieldSource: path})
	} else {
		res.SourceRemoved = true
	}

	structuredLogger(ctx).
		LogImportCompleted(ctx, path, len(res.Transactions), len(res.CreatedCategories), res.Skipped, time.Since(started))

	if s.events != nil {
		if err := s.events.PublishTransactionsImported(ctx, path, res.Transactions); err != nil {
			structuredLogger(ctx).LogError(ctx, "Failed to publish import event", err,
				applog.ComponentAMQP, applog.OpPublish, applog.LogFields{applog.FieldSource: path})
		}
	}

	return res, nil
}

// collect drains the CSV stream. No store call happens until the producer
// has finished and every row has been consumed.
func (s *ImportService) collect(ctx context.Context, f *os.File) ([]candidate, []string, int, error) {
	var (
		candidates []candidate
		titles     []string
		skipped    int
	)

	g, gctx := errgroup.WithContext(ctx)
	rows := make(chan csvRow)

	g.Go(func() error {
		defer close(rows)
		return streamRows(gctx, f, rows)
	})

	g.Go(func() error {
		for row := range rows {
			c, ok := parseCandidate(gctx, row)
			if !ok {
				skipped++
				continue
			}
			if s.maxRows > 0 && len(candidates) >= s.maxRows {
				return fmt.Errorf("%w (%d)", ErrTooManyRows, s.maxRows)
			}
			candidates = append(candidates, c)
			titles = append(titles, c.category)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, 0, fmt.Errorf("parse import file: %w", err)
	}
	// errgroup cancels gctx only on failure; a cancelled parent still aborts here
	if err := ctx.Err(); err != nil {
		return nil, nil, 0, err
	}
	return candidates, titles, skipped, nil
}

func parseCandidate(ctx context.Context, row csvRow) (candidate, bool) {
	title, typ, value, category := row.cell(0), row.cell(1), row.cell(2), row.cell(3)
	if title == "" || typ == "" || value == "" {
		slog.DebugContext(ctx, "Skipping incomplete CSV row", "line", row.Line)
		return candidate{}, false
	}

	t, err := core.ParseTransactionType(typ)
	if err != nil {
		slog.WarnContext(ctx, "Skipping malformed CSV row", "line", row.Line, "error", err)
		return candidate{}, false
	}
	v, err := core.ParseMoney(value)
	if err != nil {
		slog.WarnContext(ctx, "Skipping malformed CSV row", "line", row.Line, "value", value, "error", err)
		return candidate{}, false
	}

	if err := (core.Transaction{Title: title, Value: v, Type: t}).Validate(); err != nil {
		slog.WarnContext(ctx, "Skipping malformed CSV row", "line", row.Line, "error", err)
		return candidate{}, false
	}

	return candidate{title: title, value: v, typ: t, category: category}, true
}

// reconcile resolves every candidate's category against st, creating the
// missing ones in bulk, and stores the transactions in candidate order.
func reconcile(ctx context.Context, st ledger.Store, candidates []candidate, titles []string) ([]core.Transaction, []core.Category, error) {
	existing, err := st.FindCategoriesByTitles(ctx, titles)
	if err != nil {
		return nil, nil, err
	}

	pool := make(map[string]core.Category, len(existing))
	for _, c := range existing {
		pool[c.Title] = c
	}

	now := time.Now().UTC()
	var created []core.Category
	for _, title := range titles {
		if _, ok := pool[title]; ok {
			continue
		}
		c := core.Category{ID: core.NewID(), Title: title, CreatedAt: now}
		pool[title] = c
		created = append(created, c)
	}
	if err := st.CreateCategories(ctx, created); err != nil {
		return nil, nil, err
	}

	txs := make([]core.Transaction, len(candidates))
	for i, c := range candidates {
		category, ok := pool[c.category]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q", core.ErrCategoryUnresolved, c.category)
		}
		txs[i] = core.Transaction{
			ID:         core.NewID(),
			Title:      c.title,
			Value:      c.value,
			Type:       c.typ,
			CategoryID: category.ID,
			Category:   &category,
			CreatedAt:  now,
		}
	}
	if err := st.CreateTransactions(ctx, txs); err != nil {
		return nil, nil, err
	}

	return txs, created, nil
}
