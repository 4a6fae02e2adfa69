// Package balance computes who owes whom how much, in which currency, by
// replaying stored transactions and settlements. Everything in this package
// is a pure function over the records it is handed: no I/O, no caching, no
// shared state, so concurrent queries over the same snapshot need no
// coordination.
package balance

import "github.com/shopspring/decimal"

// Transaction is the minimal view of a stored transaction needed for balance
// computation. The persistence layer populates every collection explicitly;
// an empty Contributions slice means the payer covered the full total alone.
type Transaction struct {
	ID            int64
	GroupID       int64 // 0 = not tied to a group
	PayerID       int64
	Total         decimal.Decimal
	CurrencyCode  string
	Contributions []Contribution
	Splits        []Split
}

// Contribution is one payer's part of a jointly paid transaction
type Contribution struct {
	UserID int64
	Amount decimal.Decimal
}

// Split is one participant's owed share of a transaction
type Split struct {
	UserID int64
	Amount decimal.Decimal
}

// Settlement is a direct payment that reduces the from-user's debt to the
// to-user. Settlements carry no group reference.
type Settlement struct {
	FromUserID   int64
	ToUserID     int64
	Amount       decimal.Decimal
	CurrencyCode string
}

// Member pairs a user ID with the display name used for sorting member views
type Member struct {
	UserID   int64
	Username string
}
