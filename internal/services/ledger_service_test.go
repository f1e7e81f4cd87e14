package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"ledger/internal/core"
	"ledger/internal/ledger/memory"
	applog "ledger/internal/log"
)

func mustCreate(t *testing.T, svc *LedgerService, title, value string, typ core.TransactionType, category string) core.Transaction {
	t.Helper()
	tx, err := svc.CreateTransaction(context.Background(), CreateTransactionRequest{
		Title:    title,
		Value:    core.MustParseMoney(value),
		Type:     typ,
		Category: category,
	})
	if err != nil {
		t.Fatalf("create %s: %v", title, err)
	}
	return tx
}

func TestCreateTransactionResolvesCategory(t *testing.T) {
	store := memory.New()
	svc := NewLedgerService(store, nil)

	a := mustCreate(t, svc, "Salary", "5000", core.Income, "Job")
	b := mustCreate(t, svc, "Bonus", "100", core.Income, "Job")

	if a.Category == nil || a.Category.Title != "Job" {
		t.Fatalf("expected resolved category, got %+v", a.Category)
	}
	if a.CategoryID != b.CategoryID {
		t.Fatalf("expected shared category, got %q and %q", a.CategoryID, b.CategoryID)
	}
	if n := len(store.Categories()); n != 1 {
		t.Fatalf("expected 1 category, got %d", n)
	}
}

func TestCreateOutcomeEqualToTotalSucceeds(t *testing.T) {
	svc := NewLedgerService(memory.New(), nil)
	mustCreate(t, svc, "Salary", "100", core.Income, "Job")

	mustCreate(t, svc, "Rent", "100", core.Outcome, "Housing")

	b, err := svc.Balance(context.Background())
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if b.Total.Cents != 0 {
		t.Fatalf("expected zero total, got %s", b.Total)
	}
}

func TestCreateOutcomeAboveTotalFails(t *testing.T) {
	store := memory.New()
	svc := NewLedgerService(store, nil)
	mustCreate(t, svc, "Salary", "100", core.Income, "Job")

	_, err := svc.CreateTransaction(context.Background(), CreateTransactionRequest{
		Title:    "Rent",
		Value:    core.MustParseMoney("100.01"),
		Type:     core.Outcome,
		Category: "Housing",
	})
	if !errors.Is(err, core.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	var be *core.BalanceError
	if !errors.As(err, &be) {
		t.Fatalf("expected *core.BalanceError, got %T", err)
	}
	if be.Available.Cents != 10000 || be.Value.Cents != 10001 {
		t.Fatalf("unexpected error detail: %+v", be)
	}
	if !strings.Contains(err.Error(), `create outcome "Rent"`) {
		t.Fatalf("error should name the rejected operation: %v", err)
	}

	// The rejected outcome must not leave a category behind
	if n := len(store.Categories()); n != 1 {
		t.Fatalf("expected 1 category, got %d", n)
	}
}

func TestCreateIncomeSkipsBalanceCheck(t *testing.T) {
	svc := NewLedgerService(memory.New(), nil)
	mustCreate(t, svc, "Gift", "10", core.Income, "Misc")
}

func TestCreateTransactionValidation(t *testing.T) {
	svc := NewLedgerService(memory.New(), nil)
	cases := []CreateTransactionRequest{
		{Title: " ", Value: core.Money{Cents: 1}, Type: core.Income, Category: "c"},
		{Title: "x", Value: core.Money{Cents: 1}, Type: "gift", Category: "c"},
		{Title: "x", Value: core.Money{Cents: -5}, Type: core.Income, Category: "c"},
	}
	for i, req := range cases {
		if _, err := svc.CreateTransaction(context.Background(), req); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestCreateTransactionPublishesEvent(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewLedgerService(memory.New(), pub)

	tx := mustCreate(t, svc, "Salary", "1", core.Income, "Job")

	if len(pub.created) != 1 || pub.created[0].ID != tx.ID {
		t.Fatalf("expected one created event, got %+v", pub.created)
	}
}

func TestStatementAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewLedgerService(memory.New(), nil)
	mustCreate(t, svc, "Salary", "50", core.Income, "Job")
	rent := mustCreate(t, svc, "Rent", "20", core.Outcome, "Housing")

	st, err := svc.Statement(ctx)
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if len(st.Transactions) != 2 || st.Balance.Total.Cents != 3000 {
		t.Fatalf("unexpected statement: %+v", st)
	}

	if err := svc.DeleteTransaction(ctx, rent.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteTransaction(ctx, rent.ID); !errors.Is(err, core.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}

	b, _ := svc.Balance(ctx)
	if b.Total.Cents != 5000 {
		t.Fatalf("expected total 50.00, got %s", b.Total)
	}
}

func TestFailuresLogThroughContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelDebug, Component: applog.ComponentCLI, Format: "json", Output: &buf})
	ctx := applog.WithContext(context.Background(), logger)

	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewLedgerService(memory.New(), pub)
	if _, err := svc.CreateTransaction(ctx, CreateTransactionRequest{Title: "Salary", Value: core.Money{Cents: 100}, Type: core.Income, Category: "Job"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	boom := errors.New("disk full")
	failing := NewLedgerService(&failingStore{Store: memory.New(), err: boom}, nil)
	if _, err := failing.CreateTransaction(ctx, CreateTransactionRequest{Title: "Rent", Value: core.Money{Cents: 0}, Type: core.Outcome, Category: "Housing"}); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		`"msg":"Transaction created"`,
		`"msg":"Failed to publish transaction event"`, `"component":"amqp"`, `"operation":"publish"`, `"error":"broker down"`,
		`"msg":"Failed to create transaction"`, `"component":"storage"`, `"error":"disk full"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}
