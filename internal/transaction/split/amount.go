package split

import "github.com/shopspring/decimal"

// =============================================================================
// AMOUNT SPLIT STRATEGY
// Each participant owes an amount entered directly by the user
// =============================================================================

// AmountStrategy implements the Strategy interface for exact amount splits
type AmountStrategy struct{}

// Type returns the split method identifier
func (s *AmountStrategy) Type() Method {
	return MethodAmount
}

// Validate checks that the entered amounts are non-negative and sum to the
// total within one cent
func (s *AmountStrategy) Validate(total decimal.Decimal, participants []Input) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}

	sum := decimal.Zero
	for _, p := range participants {
		if p.Amount == nil {
			continue
		}
		if p.Amount.IsNegative() {
			return ErrNegativeAmount
		}
		sum = sum.Add(*p.Amount)
	}

	if sum.Sub(total).Abs().GreaterThanOrEqual(amountTolerance) {
		return ErrInvalidAmounts
	}

	return nil
}

// Calculate passes the entered amounts through, deriving only a display
// percentage. Out-of-balance input still produces a result so drafts can be
// rendered mid-edit; Validate gates persistence.
func (s *AmountStrategy) Calculate(total decimal.Decimal, currentUserID int64, participants []Input) ([]Detail, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	if !total.IsPositive() {
		return nil, ErrNonPositiveTotal
	}

	totalCents := cents(total)
	details := make([]Detail, len(participants))
	for i, p := range participants {
		var amountCents int64
		if p.Amount != nil {
			amountCents = cents(*p.Amount)
		}
		details[i] = Detail{
			UserID:     p.UserID,
			Amount:     fromCents(amountCents),
			Percentage: percentOf(amountCents, totalCents),
		}
	}

	return details, nil
}
