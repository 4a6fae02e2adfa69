package split

import "github.com/shopspring/decimal"

// =============================================================================
// EQUAL SPLIT STRATEGY
// Divides the transaction total equally among all participants
// =============================================================================

// EqualStrategy implements the Strategy interface for equal splits
type EqualStrategy struct{}

// Type returns the split method identifier
func (s *EqualStrategy) Type() Method {
	return MethodEqual
}

// Validate checks if the inputs are valid for an equal split.
// An equal split is always valid once there is at least one participant.
func (s *EqualStrategy) Validate(total decimal.Decimal, participants []Input) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	return nil
}

// Calculate divides the total equally in integer cents. Division rarely comes
// out even, so each participant gets floor(total/n) cents and the leftover
// cents go one-by-one to participants in deterministic rank order.
func (s *EqualStrategy) Calculate(total decimal.Decimal, currentUserID int64, participants []Input) ([]Detail, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	if !total.IsPositive() {
		return nil, ErrNonPositiveTotal
	}

	totalCents := cents(total)
	n := int64(len(participants))
	base := totalCents / n
	remainder := totalCents % n

	amounts := make([]int64, len(participants))
	for _, idx := range rankParticipants(currentUserID, participants) {
		amounts[idx] = base
		if remainder > 0 {
			amounts[idx]++
			remainder--
		}
	}

	details := make([]Detail, len(participants))
	for i, p := range participants {
		details[i] = Detail{
			UserID:     p.UserID,
			Amount:     fromCents(amounts[i]),
			Percentage: percentOf(amounts[i], totalCents),
		}
	}

	return details, nil
}
