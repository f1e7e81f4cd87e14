package core

import (
	"errors"
	"testing"
)

func tx(typ TransactionType, value string) Transaction {
	return Transaction{Title: "t", Type: typ, Value: MustParseMoney(value)}
}

func TestCalculateBalanceEmpty(t *testing.T) {
	if got := CalculateBalance(nil); got != (Balance{}) {
		t.Fatalf("expected zero balance, got %+v", got)
	}
	if got := CalculateBalance([]Transaction{}); got != (Balance{}) {
		t.Fatalf("expected zero balance, got %+v", got)
	}
}

func TestCalculateBalance(t *testing.T) {
	tests := []struct {
		name                   string
		txs                    []Transaction
		income, outcome, total int64
	}{
		{
			name:   "income only",
			txs:    []Transaction{tx(Income, "10"), tx(Income, "2.50")},
			income: 1250, outcome: 0, total: 1250,
		},
		{
			name:   "outcome exceeds income",
			txs:    []Transaction{tx(Income, "1"), tx(Outcome, "3")},
			income: 100, outcome: 300, total: -200,
		},
		{
			name:   "salary rent groceries",
			txs:    []Transaction{tx(Income, "5000"), tx(Outcome, "1200"), tx(Outcome, "300")},
			income: 500000, outcome: 150000, total: 350000,
		},
		{
			name:   "cents do not drift",
			txs:    []Transaction{tx(Income, "0.1"), tx(Income, "0.2"), tx(Outcome, "0.3")},
			income: 30, outcome: 30, total: 0,
		},
		{
			name:   "unknown type ignored",
			txs:    []Transaction{tx(Income, "4"), tx(TransactionType("refund"), "9")},
			income: 400, outcome: 0, total: 400,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := CalculateBalance(tt.txs)
			if b.Income.Cents != tt.income {
				t.Errorf("income = %d, want %d", b.Income.Cents, tt.income)
			}
			if b.Outcome.Cents != tt.outcome {
				t.Errorf("outcome = %d, want %d", b.Outcome.Cents, tt.outcome)
			}
			if b.Total.Cents != tt.total {
				t.Errorf("total = %d, want %d", b.Total.Cents, tt.total)
			}
			if b.Total != b.Income.Sub(b.Outcome) {
				t.Errorf("total %s != income %s - outcome %s", b.Total, b.Income, b.Outcome)
			}
		})
	}
}

func TestBalanceErrorUnwraps(t *testing.T) {
	err := error(&BalanceError{
		Operation: `create outcome "Rent"`,
		Value:     MustParseMoney("1200"),
		Available: MustParseMoney("1000"),
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected errors.Is ErrInsufficientBalance, got %v", err)
	}
	want := `create outcome "Rent": insufficient balance: value 1200.00 exceeds available total 1000.00`
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}
