package split

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SHARES SPLIT STRATEGY
// Divides the transaction total proportionally to per-participant share counts
// =============================================================================

// SharesStrategy implements the Strategy interface for share-based splits
type SharesStrategy struct{}

// Type returns the split method identifier
func (s *SharesStrategy) Type() Method {
	return MethodShares
}

// Validate checks that no participant has negative shares. All-zero shares is
// valid because Calculate falls back to an equal split instead of dividing by
// zero.
func (s *SharesStrategy) Validate(total decimal.Decimal, participants []Input) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	for _, p := range participants {
		if p.Shares != nil && *p.Shares < 0 {
			return ErrNegativeShares
		}
	}
	return nil
}

// Calculate assigns floor(shares_i / totalShares * totalCents) to each
// participant and distributes the leftover cents by largest fractional
// remainder, breaking ties in deterministic rank order. The amounts therefore
// always sum to the total exactly.
func (s *SharesStrategy) Calculate(total decimal.Decimal, currentUserID int64, participants []Input) ([]Detail, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	if !total.IsPositive() {
		return nil, ErrNonPositiveTotal
	}

	shares := make([]int64, len(participants))
	var totalShares int64
	for i, p := range participants {
		if p.Shares != nil && *p.Shares > 0 {
			shares[i] = *p.Shares
			totalShares += *p.Shares
		}
	}

	// All shares zero: fall back to an equal split rather than dividing by zero
	if totalShares == 0 {
		return (&EqualStrategy{}).Calculate(total, currentUserID, participants)
	}

	totalCents := cents(total)
	amounts := make([]int64, len(participants))
	rems := make([]int64, len(participants))
	var distributed int64
	for i := range participants {
		amounts[i] = shares[i] * totalCents / totalShares
		rems[i] = shares[i] * totalCents % totalShares
		distributed += amounts[i]
	}

	// Hand out the leftover cents to the largest fractional remainders first,
	// ranked order breaking ties, so the result is stable across recomputation
	rank := rankParticipants(currentUserID, participants)
	pos := make([]int, len(participants))
	for r, idx := range rank {
		pos[idx] = r
	}
	order := make([]int, len(participants))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		if rems[order[x]] != rems[order[y]] {
			return rems[order[x]] > rems[order[y]]
		}
		return pos[order[x]] < pos[order[y]]
	})
	for i := int64(0); i < totalCents-distributed; i++ {
		amounts[order[i]]++
	}

	details := make([]Detail, len(participants))
	for i, p := range participants {
		details[i] = Detail{
			UserID:     p.UserID,
			Amount:     fromCents(amounts[i]),
			Percentage: percentOf(amounts[i], totalCents),
			Shares:     shares[i],
		}
	}

	return details, nil
}
