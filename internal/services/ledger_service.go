package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ledger/internal/core"
	"ledger/internal/ledger"
	applog "ledger/internal/log"
)

// LedgerService creates and removes single transactions and reports the balance.
type LedgerService struct {
	store  ledger.Store
	events EventPublisher
}

func NewLedgerService(store ledger.Store, events EventPublisher) *LedgerService {
	return &LedgerService{
		store:  store,
		events: events,
	}
}

type CreateTransactionRequest struct {
	Title    string
	Value    core.Money
	Type     core.TransactionType
	Category string
}

// Statement is the whole ledger together with its balance.
type Statement struct {
	Transactions []core.Transaction
	Balance      core.Balance
}

// CreateTransaction validates and stores a single transaction.
//
// An outcome larger than the current total fails with a *core.BalanceError
// (errors.Is core.ErrInsufficientBalance); an outcome equal to the total is
// accepted. The balance check, category resolution and insert share one
// store transaction.
func (s *LedgerService) CreateTransaction(ctx context.Context, req CreateTransactionRequest) (core.Transaction, error) {
	tx := core.Transaction{
		ID:        core.NewID(),
		Title:     strings.TrimSpace(req.Title),
		Value:     req.Value,
		Type:      req.Type,
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.Validate(); err != nil {
		ledgerLogger(ctx).WarnContext(ctx, "Transaction rejected",
			applog.FieldOperation, applog.OpValidate,
			applog.FieldTitle, tx.Title,
			applog.FieldError, err)
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}
	categoryTitle := strings.TrimSpace(req.Category)

	err := s.store.WithTx(ctx, func(st ledger.Store) error {
		if tx.Type == core.Outcome {
			all, err := st.ListTransactions(ctx)
			if err != nil {
				return fmt.Errorf("load ledger: %w", err)
			}
			balance := core.CalculateBalance(all)
			if tx.Value.GreaterThan(balance.Total) {
				return &core.BalanceError{
					Operation: fmt.Sprintf("create outcome %q", tx.Title),
					Value:     tx.Value,
					Available: balance.Total,
				}
			}
		}

		category, err := st.GetOrCreateCategory(ctx, categoryTitle)
		if err != nil {
			return fmt.Errorf("resolve category: %w", err)
		}
		tx.CategoryID = category.ID
		tx.Category = &category

		return st.CreateTransactions(ctx, []core.Transaction{tx})
	})
	if err != nil {
		if errors.Is(err, core.ErrInsufficientBalance) {
			ledgerLogger(ctx).WarnContext(ctx, "Transaction rejected",
				applog.FieldOperation, applog.OpCreate,
				applog.FieldTitle, tx.Title,
				applog.FieldType, tx.Type.String(),
				applog.FieldValueCents, tx.Value.Cents,
				applog.FieldError, err)
		} else {
			structuredLogger(ctx).LogError(ctx, "Failed to create transaction", err,
				applog.ComponentStorage, applog.OpCreate,
				applog.NewFields().WithTransaction(tx.ID, tx.Title, tx.Type.String(), tx.Value.Cents, categoryTitle))
		}
		return core.Transaction{}, err
	}

	structuredLogger(ctx).LogTransactionCreated(ctx, tx)

	if s.events != nil {
		if err := s.events.PublishTransactionCreated(ctx, tx); err != nil {
			structuredLogger(ctx).LogError(ctx, "Failed to publish transaction event", err,
				applog.ComponentAMQP, applog.OpPublish, applog.LogFields{applog.FieldID: tx.ID})
		}
	}

	return tx, nil
}

// Balance recomputes the balance over the full ledger.
func (s *LedgerService) Balance(ctx context.Context) (core.Balance, error) {
	all, err := s.store.ListTransactions(ctx)
	if err != nil {
		structuredLogger(ctx).LogError(ctx, "Failed to load ledger", err, applog.ComponentStorage, applog.OpBalance, nil)
		return core.Balance{}, fmt.Errorf("load ledger: %w", err)
	}
	return core.CalculateBalance(all), nil
}

// Statement returns every transaction with its category plus the balance.
func (s *LedgerService) Statement(ctx context.Context) (Statement, error) {
	all, err := s.store.ListTransactions(ctx)
	if err != nil {
		structuredLogger(ctx).LogError(ctx, "Failed to load ledger", err, applog.ComponentStorage, applog.OpList, nil)
		return Statement{}, fmt.Errorf("load ledger: %w", err)
	}
	return Statement{
		Transactions: all,
		Balance:      core.CalculateBalance(all),
	}, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, strings.TrimSpace(id)); err != nil {
		if !errors.Is(err, core.ErrTransactionNotFound) {
			structuredLogger(ctx).LogError(ctx, "Failed to delete transaction", err,
				applog.ComponentStorage, applog.OpDelete, applog.LogFields{applog.FieldID: id})
		}
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	return nil
}

// ledgerLogger returns the request logger scoped to the ledger component.
func ledgerLogger(ctx context.Context) *applog.Logger {
	return applog.FromContext(ctx).WithComponent(applog.ComponentLedger)
}

func structuredLogger(ctx context.Context) *applog.StructuredLogger {
	return applog.NewStructuredLogger(applog.FromContext(ctx))
}
