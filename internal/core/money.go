// Package core holds the ledger domain: transactions, categories, money
// and the balance fold.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in integer cents. Arithmetic never goes through floats.
type Money struct {
	Cents int64
}

var maxCents = decimal.NewFromInt(math.MaxInt64)

// ParseMoney converts a decimal string to Money.
//
// A dot is the decimal separator. A comma is accepted as the decimal
// separator only when it is the single separator and at most two digits
// follow it, so "1,200" and "1,234.56" are rejected rather than misread.
// Extra fractional digits after a dot are rounded half-up to the cent.
// Negative values are rejected; the sign of a ledger entry is carried by
// its type.
//
// Examples:
//
//	ParseMoney("12.34")  -> 1234 cents
//	ParseMoney("12,34")  -> 1234 cents
//	ParseMoney("12.345") -> 1235 cents
//	ParseMoney("0")      -> 0 cents
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	if strings.Contains(s, ",") {
		whole, frac, _ := strings.Cut(s, ",")
		if strings.ContainsAny(frac, ",.") || strings.Contains(whole, ".") || len(frac) == 0 || len(frac) > 2 {
			return Money{}, ErrInvalidAmount
		}
		s = whole + "." + frac
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if d.IsNegative() {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Round(2).Shift(2)
	if cents.GreaterThan(maxCents) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

// MustParseMoney is ParseMoney for literals known to be valid.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic("core: invalid money literal " + s)
	}
	return m
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// GreaterThan reports whether m is strictly larger than o.
func (m Money) GreaterThan(o Money) bool {
	return m.Cents > o.Cents
}

// Decimal returns the exact decimal value of m.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats m with two fractional digits, e.g. "1200.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}
