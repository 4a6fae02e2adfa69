package settlement

import (
	"github.com/shopspring/decimal"

	"github.com/tallyup/tallyup/internal/balance"
)

// CreateSettlementRequest represents the request to record a payment
type CreateSettlementRequest struct {
	ToUserID     int64           `json:"to_user_id" validate:"required"`
	Amount       decimal.Decimal `json:"amount" validate:"required"`
	CurrencyCode string          `json:"currency_code" validate:"required,len=3,uppercase"`
	SettledOn    string          `json:"settled_on,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Note         *string         `json:"note,omitempty" validate:"omitempty,max=255"`
}

// SettlementResponse represents the response for a settlement
type SettlementResponse struct {
	ID           int64           `json:"id"`
	FromUserID   int64           `json:"from_user_id"`
	FromUsername string          `json:"from_username,omitempty"`
	ToUserID     int64           `json:"to_user_id"`
	ToUsername   string          `json:"to_username,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currency_code"`
	SettledOn    string          `json:"settled_on"`
	Note         *string         `json:"note,omitempty"`
	CreatedAt    string          `json:"created_at"`
}

// CounterpartBalanceResponse is the net position against one counterpart.
// Positive amounts mean the counterpart owes the requesting user.
type CounterpartBalanceResponse struct {
	UserID   int64           `json:"user_id"`
	Username string          `json:"username"`
	Balances []balance.Entry `json:"balances"`
	Settled  bool            `json:"settled"`
}

// BalancesResponse represents the requesting user's position against everyone
// they share history with
type BalancesResponse struct {
	UserID       int64                         `json:"user_id"`
	OweYou       []*CounterpartBalanceResponse `json:"owe_you"`
	YouOwe       []*CounterpartBalanceResponse `json:"you_owe"`
	Counterparts []*CounterpartBalanceResponse `json:"counterparts"`
}

// ToResponse converts a Settlement model to a SettlementResponse DTO
func (s *Settlement) ToResponse() *SettlementResponse {
	return &SettlementResponse{
		ID:           s.ID,
		FromUserID:   s.FromUserID,
		FromUsername: s.FromUsername,
		ToUserID:     s.ToUserID,
		ToUsername:   s.ToUsername,
		Amount:       s.Amount,
		CurrencyCode: s.CurrencyCode,
		SettledOn:    s.SettledOn.Format("2006-01-02"),
		Note:         s.Note,
		CreatedAt:    s.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func toCounterpartResponse(mb balance.MemberBalance) *CounterpartBalanceResponse {
	return &CounterpartBalanceResponse{
		UserID:   mb.UserID,
		Username: mb.Username,
		Balances: mb.Balance.SortedByMagnitude(),
		Settled:  mb.Balance.IsSettled(),
	}
}
