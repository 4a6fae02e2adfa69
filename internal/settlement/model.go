package settlement

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallyup/tallyup/internal/balance"
)

// Settlement represents a direct payment from one user to another. Records
// are immutable: correcting a mistake means recording a compensating payment,
// never editing history.
type Settlement struct {
	ID           int64           `json:"id"`
	FromUserID   int64           `json:"from_user_id"`
	ToUserID     int64           `json:"to_user_id"`
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currency_code"`
	SettledOn    time.Time       `json:"settled_on"`
	Note         *string         `json:"note,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`

	// Populated via JOIN
	FromUsername string `json:"from_username,omitempty"`
	ToUsername   string `json:"to_username,omitempty"`
}

// BalanceRecord converts the settlement into the record shape the balance
// package folds over.
func (s *Settlement) BalanceRecord() balance.Settlement {
	return balance.Settlement{
		FromUserID:   s.FromUserID,
		ToUserID:     s.ToUserID,
		Amount:       s.Amount,
		CurrencyCode: s.CurrencyCode,
	}
}
