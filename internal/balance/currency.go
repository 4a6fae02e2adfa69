package balance

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CurrencyBalance accumulates signed totals keyed by currency code. A person
// or group can transact in several currencies at once and amounts in
// different currencies must never be offset against each other, so every
// operation is pointwise per code. A missing code behaves as zero, so Merge
// never special-cases absence.
type CurrencyBalance map[string]decimal.Decimal

// NewCurrencyBalance returns an empty accumulator
func NewCurrencyBalance() CurrencyBalance {
	return make(CurrencyBalance)
}

// settleEpsilon treats sub-cent noise as settled
var settleEpsilon = decimal.New(1, -2)

// Add increases the running total for a currency
func (b CurrencyBalance) Add(code string, amount decimal.Decimal) {
	b[code] = b[code].Add(amount)
}

// Subtract decreases the running total for a currency
func (b CurrencyBalance) Subtract(code string, amount decimal.Decimal) {
	b[code] = b[code].Sub(amount)
}

// Merge folds another balance into this one, pointwise by currency
func (b CurrencyBalance) Merge(other CurrencyBalance) {
	for code, amount := range other {
		b[code] = b[code].Add(amount)
	}
}

// Get returns the signed total for a currency, zero if absent
func (b CurrencyBalance) Get(code string) decimal.Decimal {
	return b[code]
}

// NonZero returns the entries whose magnitude is at least one cent
func (b CurrencyBalance) NonZero() CurrencyBalance {
	out := NewCurrencyBalance()
	for code, amount := range b {
		if amount.Abs().GreaterThanOrEqual(settleEpsilon) {
			out[code] = amount
		}
	}
	return out
}

// Entry is one currency's signed total, used for ordered display
type Entry struct {
	CurrencyCode string          `json:"currency_code"`
	Amount       decimal.Decimal `json:"amount"`
}

// SortedByMagnitude returns the non-zero entries ordered by descending
// absolute value, ties broken alphabetically by code
func (b CurrencyBalance) SortedByMagnitude() []Entry {
	nz := b.NonZero()
	entries := make([]Entry, 0, len(nz))
	for code, amount := range nz {
		entries = append(entries, Entry{CurrencyCode: code, Amount: amount})
	}
	sort.Slice(entries, func(i, j int) bool {
		ai, aj := entries[i].Amount.Abs(), entries[j].Amount.Abs()
		if !ai.Equal(aj) {
			return ai.GreaterThan(aj)
		}
		return entries[i].CurrencyCode < entries[j].CurrencyCode
	})
	return entries
}

// IsSettled reports whether every currency nets to less than a cent
func (b CurrencyBalance) IsSettled() bool {
	return len(b.NonZero()) == 0
}

// SingleCurrency returns the currency code when exactly one is non-zero
func (b CurrencyBalance) SingleCurrency() (string, bool) {
	nz := b.NonZero()
	if len(nz) != 1 {
		return "", false
	}
	for code := range nz {
		return code, true
	}
	return "", false
}

// HasPositive reports whether any currency shows money owed to the holder
func (b CurrencyBalance) HasPositive() bool {
	for _, amount := range b.NonZero() {
		if amount.IsPositive() {
			return true
		}
	}
	return false
}

// HasNegative reports whether any currency shows the holder owing money
func (b CurrencyBalance) HasNegative() bool {
	for _, amount := range b.NonZero() {
		if amount.IsNegative() {
			return true
		}
	}
	return false
}
