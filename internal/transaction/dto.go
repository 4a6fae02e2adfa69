package transaction

import (
	"github.com/shopspring/decimal"

	"github.com/tallyup/tallyup/internal/transaction/split"
)

// SplitParticipant carries one participant's method-specific input when
// creating a transaction. Only the field matching the split method is read.
type SplitParticipant struct {
	UserID     int64            `json:"user_id" validate:"required"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`     // For AMOUNT split
	Percentage *float64         `json:"percentage,omitempty"` // For PERCENTAGE split
	Shares     *int64           `json:"shares,omitempty"`     // For SHARES split
	Adjustment *decimal.Decimal `json:"adjustment,omitempty"` // For ADJUSTMENT split
}

// ToSplitInput converts to the split package's input type
func (p *SplitParticipant) ToSplitInput(username string) split.Input {
	return split.Input{
		UserID:     p.UserID,
		Username:   username,
		Amount:     p.Amount,
		Percentage: p.Percentage,
		Shares:     p.Shares,
		Adjustment: p.Adjustment,
	}
}

// ContributionInput is one payer's part when a transaction was paid jointly
type ContributionInput struct {
	UserID int64           `json:"user_id" validate:"required"`
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

// CreateTransactionRequest represents the request to create a transaction.
// Contributions may be omitted, in which case the authenticated user paid
// the full amount; when present they must cover the payer and sum to the
// amount. CurrencyCode may be omitted: group transactions fall back to the
// group's default currency, personal ones to the payer's.
type CreateTransactionRequest struct {
	GroupID       *int64               `json:"group_id,omitempty"`
	Description   string               `json:"description" validate:"required,min=1,max=255"`
	Amount        decimal.Decimal      `json:"amount" validate:"required"`
	CurrencyCode  string               `json:"currency_code,omitempty" validate:"omitempty,len=3,uppercase"`
	SplitMethod   string               `json:"split_method" validate:"required,oneof=EQUAL AMOUNT PERCENTAGE SHARES ADJUSTMENT"`
	OccurredOn    string               `json:"occurred_on,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Participants  []*SplitParticipant  `json:"participants" validate:"required,min=1,dive"`
	Contributions []*ContributionInput `json:"contributions,omitempty" validate:"omitempty,min=1,dive"`
}

// UpdateTransactionRequest represents the request to update a transaction.
// Description and date edits stand alone; changing the amount, method, or
// participants resplits the whole transaction.
type UpdateTransactionRequest struct {
	Description   *string              `json:"description,omitempty" validate:"omitempty,min=1,max=255"`
	OccurredOn    *string              `json:"occurred_on,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Amount        *decimal.Decimal     `json:"amount,omitempty"`
	SplitMethod   *string              `json:"split_method,omitempty" validate:"omitempty,oneof=EQUAL AMOUNT PERCENTAGE SHARES ADJUSTMENT"`
	Participants  []*SplitParticipant  `json:"participants,omitempty" validate:"omitempty,min=1,dive"`
	Contributions []*ContributionInput `json:"contributions,omitempty" validate:"omitempty,min=1,dive"`
}

// PreviewSplitRequest asks for the computed shares without persisting
// anything. Partially filled participants are accepted.
type PreviewSplitRequest struct {
	Amount       decimal.Decimal     `json:"amount" validate:"required"`
	SplitMethod  string              `json:"split_method" validate:"required,oneof=EQUAL AMOUNT PERCENTAGE SHARES ADJUSTMENT"`
	Participants []*SplitParticipant `json:"participants" validate:"required,min=1,dive"`
}

// TransactionResponse represents the response for a transaction
type TransactionResponse struct {
	ID            int64                   `json:"id"`
	GroupID       *int64                  `json:"group_id,omitempty"`
	PayerID       int64                   `json:"payer_id"`
	PayerUsername string                  `json:"payer_username,omitempty"`
	Description   string                  `json:"description"`
	Amount        decimal.Decimal         `json:"amount"`
	CurrencyCode  string                  `json:"currency_code"`
	SplitMethod   split.Method            `json:"split_method"`
	OccurredOn    string                  `json:"occurred_on"`
	CreatedAt     string                  `json:"created_at"`
	Contributions []*ContributionResponse `json:"contributions,omitempty"`
	Splits        []*SplitResponse        `json:"splits,omitempty"`
}

// ContributionResponse represents one payer's contribution in a response
type ContributionResponse struct {
	UserID   int64           `json:"user_id"`
	Username string          `json:"username,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
}

// SplitResponse represents one participant's share in a response
type SplitResponse struct {
	UserID     int64           `json:"user_id"`
	Username   string          `json:"username,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage float64         `json:"percentage"`
	Shares     int64           `json:"shares,omitempty"`
	Adjustment decimal.Decimal `json:"adjustment"`
}

// PreviewSplitResponse carries the best-effort shares plus whether the
// inputs would be accepted for saving
type PreviewSplitResponse struct {
	Amount      decimal.Decimal  `json:"amount"`
	SplitMethod split.Method     `json:"split_method"`
	Splits      []*SplitResponse `json:"splits"`
	Valid       bool             `json:"valid"`
	Error       string           `json:"error,omitempty"`
}

// ToResponse converts a Transaction model to a TransactionResponse DTO
func (t *Transaction) ToResponse() *TransactionResponse {
	return &TransactionResponse{
		ID:            t.ID,
		GroupID:       t.GroupID,
		PayerID:       t.PayerID,
		PayerUsername: t.PayerUsername,
		Description:   t.Description,
		Amount:        t.Amount,
		CurrencyCode:  t.CurrencyCode,
		SplitMethod:   t.SplitMethod,
		OccurredOn:    t.OccurredOn.Format("2006-01-02"),
		CreatedAt:     t.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a PayerContribution to a ContributionResponse DTO
func (c *PayerContribution) ToResponse() *ContributionResponse {
	return &ContributionResponse{
		UserID:   c.UserID,
		Username: c.Username,
		Amount:   c.Amount,
	}
}

// ToResponse converts a ParticipantSplit to a SplitResponse DTO
func (s *ParticipantSplit) ToResponse() *SplitResponse {
	return &SplitResponse{
		UserID:     s.UserID,
		Username:   s.Username,
		Amount:     s.Amount,
		Percentage: s.Percentage,
		Shares:     s.Shares,
		Adjustment: s.Adjustment,
	}
}

// ToResponse converts a full transaction with details to a response DTO
func (t *TransactionWithDetails) ToResponse() *TransactionResponse {
	resp := t.Transaction.ToResponse()
	resp.Contributions = make([]*ContributionResponse, len(t.Contributions))
	for i, c := range t.Contributions {
		resp.Contributions[i] = c.ToResponse()
	}
	resp.Splits = make([]*SplitResponse, len(t.Splits))
	for i, s := range t.Splits {
		resp.Splits[i] = s.ToResponse()
	}
	return resp
}
