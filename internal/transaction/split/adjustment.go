package split

import "github.com/shopspring/decimal"

// =============================================================================
// ADJUSTMENT SPLIT STRATEGY
// Starts from an equal base and applies a signed per-participant adjustment
// =============================================================================

// AdjustmentStrategy implements the Strategy interface for adjustment splits
type AdjustmentStrategy struct{}

// Type returns the split method identifier
func (s *AdjustmentStrategy) Type() Method {
	return MethodAdjustment
}

// Validate checks that no participant ends up owing a negative amount once
// the adjustments are applied
func (s *AdjustmentStrategy) Validate(total decimal.Decimal, participants []Input) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}

	for _, amount := range s.amounts(total, 0, participants) {
		if amount < 0 {
			return ErrNegativeSplit
		}
	}

	return nil
}

// Calculate splits (total - sum of adjustments) equally as the base, then adds
// each participant's signed adjustment on top. Over-adjusted input can produce
// negative amounts mid-edit; Validate gates persistence.
func (s *AdjustmentStrategy) Calculate(total decimal.Decimal, currentUserID int64, participants []Input) ([]Detail, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	if !total.IsPositive() {
		return nil, ErrNonPositiveTotal
	}

	totalCents := cents(total)
	amounts := s.amounts(total, currentUserID, participants)

	details := make([]Detail, len(participants))
	for i, p := range participants {
		var adj decimal.Decimal
		if p.Adjustment != nil {
			adj = p.Adjustment.Round(2)
		}
		details[i] = Detail{
			UserID:     p.UserID,
			Amount:     fromCents(amounts[i]),
			Percentage: percentOf(amounts[i], totalCents),
			Adjustment: adj,
		}
	}

	return details, nil
}

// amounts computes the per-participant cents shared by Calculate and Validate
func (s *AdjustmentStrategy) amounts(total decimal.Decimal, currentUserID int64, participants []Input) []int64 {
	adjCents := make([]int64, len(participants))
	var sumAdj int64
	for i, p := range participants {
		if p.Adjustment != nil {
			adjCents[i] = cents(*p.Adjustment)
			sumAdj += adjCents[i]
		}
	}

	n := int64(len(participants))
	base, remainder := floorDiv(cents(total)-sumAdj, n)

	amounts := make([]int64, len(participants))
	for _, idx := range rankParticipants(currentUserID, participants) {
		amounts[idx] = base
		if remainder > 0 {
			amounts[idx]++
			remainder--
		}
	}
	for i := range amounts {
		amounts[i] += adjCents[i]
	}

	return amounts
}
