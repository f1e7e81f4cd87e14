package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	Income  TransactionType = "income"
	Outcome TransactionType = "outcome"
)

// MaxTitleLength is the longest transaction title accepted, in characters.
const MaxTitleLength = 200

type (
	TransactionType string

	Category struct {
		ID        string
		Title     string
		CreatedAt time.Time
	}

	Transaction struct {
		ID         string
		Title      string
		Value      Money
		Type       TransactionType
		CategoryID string
		Category   *Category // Resolved category, nil when not loaded
		CreatedAt  time.Time
	}
)

var (
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrEmptyTitle             = errors.New("empty title")
	ErrTitleTooLong           = errors.New("title too long")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrCategoryUnresolved     = errors.New("category not resolved")
	ErrInsufficientBalance    = errors.New("insufficient balance")
)

// BalanceError reports an outcome rejected because it exceeds the current total.
// It unwraps to ErrInsufficientBalance.
type BalanceError struct {
	Operation string
	Value     Money
	Available Money
}

func (e *BalanceError) Error() string {
	return fmt.Sprintf("%s: %v: value %s exceeds available total %s",
		e.Operation, ErrInsufficientBalance, e.Value, e.Available)
}

func (e *BalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// NewID returns a fresh random identifier for ledger records.
func NewID() string {
	return uuid.NewString()
}

// ParseTransactionType accepts "income" or "outcome", case-insensitive.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTransactionType, s)
	}
	return t, nil
}

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Outcome:
		return true
	default:
		return false
	}
}

func (t TransactionType) String() string {
	return string(t)
}

// Validate checks the fields every store requires of a transaction.
func (tx Transaction) Validate() error {
	if strings.TrimSpace(tx.Title) == "" {
		return ErrEmptyTitle
	}
	if n := utf8.RuneCountInString(tx.Title); n > MaxTitleLength {
		return fmt.Errorf("%w: %d characters, max %d", ErrTitleTooLong, n, MaxTitleLength)
	}
	if !tx.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTransactionType, tx.Type)
	}
	return tx.Value.Validate()
}
