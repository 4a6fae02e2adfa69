package split

import (
	"math"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PERCENTAGE SPLIT STRATEGY
// Divides the transaction total based on per-participant percentages
// =============================================================================

// PercentageStrategy implements the Strategy interface for percentage-based splits
type PercentageStrategy struct{}

// Type returns the split method identifier
func (s *PercentageStrategy) Type() Method {
	return MethodPercentage
}

// Validate checks that every percentage is in range and that they sum to 100
// within tolerance
func (s *PercentageStrategy) Validate(total decimal.Decimal, participants []Input) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}

	var sum float64
	for _, p := range participants {
		if p.Percentage == nil {
			continue
		}
		if *p.Percentage < 0 || *p.Percentage > 100 {
			return ErrPercentageOutOfRange
		}
		sum += *p.Percentage
	}

	if math.Abs(sum-100) >= percentTolerance {
		return ErrInvalidPercentages
	}

	return nil
}

// Calculate converts each percentage to the nearest cent of the total.
// Unconfigured participants count as 0%.
func (s *PercentageStrategy) Calculate(total decimal.Decimal, currentUserID int64, participants []Input) ([]Detail, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	if !total.IsPositive() {
		return nil, ErrNonPositiveTotal
	}

	totalCents := cents(total)
	details := make([]Detail, len(participants))
	for i, p := range participants {
		var pct float64
		if p.Percentage != nil {
			pct = *p.Percentage
		}
		amountCents := int64(math.Round(pct * float64(totalCents) / 100))
		details[i] = Detail{
			UserID:     p.UserID,
			Amount:     fromCents(amountCents),
			Percentage: pct,
		}
	}

	return details, nil
}
