package transaction

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyup/tallyup/internal/balance"
	"github.com/tallyup/tallyup/internal/transaction/split"
)

// Transaction represents a shared expense in the system. GroupID is nil for
// transactions recorded directly between people.
type Transaction struct {
	ID           int64           `json:"id"`
	GroupID      *int64          `json:"group_id,omitempty"`
	PayerID      int64           `json:"payer_id"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currency_code"`
	SplitMethod  split.Method    `json:"split_method"`
	OccurredOn   time.Time       `json:"occurred_on"`
	CreatedAt    time.Time       `json:"created_at"`

	// Populated via JOIN
	PayerUsername string `json:"payer_username,omitempty"`
}

// PayerContribution records how much of the total one person actually paid.
// A transaction with no contribution rows was paid in full by the payer.
type PayerContribution struct {
	ID            int64           `json:"id"`
	TransactionID int64           `json:"transaction_id"`
	UserID        int64           `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`

	// Populated via JOIN
	Username string `json:"username,omitempty"`
}

// ParticipantSplit is one participant's persisted share of a transaction,
// together with the method-specific inputs it was derived from.
type ParticipantSplit struct {
	ID            int64           `json:"id"`
	TransactionID int64           `json:"transaction_id"`
	UserID        int64           `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Percentage    float64         `json:"percentage"`
	Shares        int64           `json:"shares"`
	Adjustment    decimal.Decimal `json:"adjustment"`

	// Populated via JOIN
	Username string `json:"username,omitempty"`
}

// TransactionWithDetails combines a transaction with its contributions and splits
type TransactionWithDetails struct {
	Transaction   *Transaction
	Contributions []*PayerContribution
	Splits        []*ParticipantSplit
}

// BalanceRecord converts the transaction into the record shape the balance
// package folds over.
func (t *TransactionWithDetails) BalanceRecord() balance.Transaction {
	var groupID int64
	if t.Transaction.GroupID != nil {
		groupID = *t.Transaction.GroupID
	}

	rec := balance.Transaction{
		ID:           t.Transaction.ID,
		GroupID:      groupID,
		PayerID:      t.Transaction.PayerID,
		Total:        t.Transaction.Amount,
		CurrencyCode: t.Transaction.CurrencyCode,
	}

	for _, c := range t.Contributions {
		rec.Contributions = append(rec.Contributions, balance.Contribution{
			UserID: c.UserID,
			Amount: c.Amount,
		})
	}
	for _, s := range t.Splits {
		rec.Splits = append(rec.Splits, balance.Split{
			UserID: s.UserID,
			Amount: s.Amount,
		})
	}

	return rec
}
