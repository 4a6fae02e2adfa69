package split

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// Method defines the algorithm used to divide a transaction total
type Method string

const (
	MethodEqual      Method = "EQUAL"
	MethodAmount     Method = "AMOUNT"
	MethodPercentage Method = "PERCENTAGE"
	MethodShares     Method = "SHARES"
	MethodAdjustment Method = "ADJUSTMENT"
)

// Input represents a participant in a split with the method-specific values
// the user has entered so far. Values are nil for participants the user has
// not configured yet, which is valid mid-edit.
type Input struct {
	UserID     int64            `json:"user_id"`
	Username   string           `json:"username,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`     // For AMOUNT split
	Percentage *float64         `json:"percentage,omitempty"` // For PERCENTAGE split
	Shares     *int64           `json:"shares,omitempty"`     // For SHARES split
	Adjustment *decimal.Decimal `json:"adjustment,omitempty"` // For ADJUSTMENT split
}

// Detail is the calculated split for a single participant. Every participant
// gets a detail, payer included - who paid is not this package's concern.
type Detail struct {
	UserID     int64           `json:"user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage float64         `json:"percentage"`
	Shares     int64           `json:"shares,omitempty"`
	Adjustment decimal.Decimal `json:"adjustment"`
}

// Strategy is the interface that all split strategies must implement
type Strategy interface {
	// Calculate computes every participant's share of the total. The returned
	// details are best-effort for AMOUNT, PERCENTAGE, and ADJUSTMENT inputs
	// that fail Validate - callers must gate submission on Validate, not on
	// Calculate returning an error.
	Calculate(total decimal.Decimal, currentUserID int64, participants []Input) ([]Detail, error)

	// Type returns the method identifier for this strategy
	Type() Method

	// Validate checks if the inputs are acceptable for persisting
	Validate(total decimal.Decimal, participants []Input) error
}

// Factory creates split strategies based on the requested method
type Factory struct{}

// NewStrategyFactory creates a new factory instance
func NewStrategyFactory() *Factory {
	return &Factory{}
}

// Create returns the appropriate strategy implementation based on the method
func (f *Factory) Create(method Method) (Strategy, error) {
	switch method {
	case MethodEqual:
		return &EqualStrategy{}, nil
	case MethodAmount:
		return &AmountStrategy{}, nil
	case MethodPercentage:
		return &PercentageStrategy{}, nil
	case MethodShares:
		return &SharesStrategy{}, nil
	case MethodAdjustment:
		return &AdjustmentStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown split method: %s", method)
	}
}

// CreateFromString creates a strategy from a string method (useful for API requests)
func (f *Factory) CreateFromString(method string) (Strategy, error) {
	return f.Create(Method(method))
}

var (
	ErrNoParticipants       = errors.New("at least one participant is required")
	ErrNonPositiveTotal     = errors.New("total amount must be positive")
	ErrNegativeAmount       = errors.New("amounts cannot be negative")
	ErrInvalidAmounts       = errors.New("amounts must sum to the total")
	ErrInvalidPercentages   = errors.New("percentages must sum to 100")
	ErrPercentageOutOfRange = errors.New("percentage must be between 0 and 100")
	ErrNegativeShares       = errors.New("shares cannot be negative")
	ErrNegativeSplit        = errors.New("adjustments would make a share negative")
)

// amountTolerance is how far an AMOUNT split may drift from the total and
// still validate. percentTolerance is the matching slack for percentages.
var amountTolerance = decimal.New(1, -2)

const percentTolerance = 0.1

// cents converts a currency amount to integer minor units. All split math
// happens in cents so binary floating-point error never reaches a stored split.
func cents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

// fromCents converts integer cents back to a two-decimal amount
func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

// percentOf derives the display percentage of part against a total in cents
func percentOf(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}

// rankParticipants returns participant indexes in the deterministic payout
// order: the current user first, then alphabetical by username, then by user
// ID. Leftover cents are always handed out in this order, so recomputing a
// split gives the same result no matter how the inputs were iterated.
func rankParticipants(currentUserID int64, participants []Input) []int {
	order := make([]int, len(participants))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		a, b := participants[order[x]], participants[order[y]]
		if (a.UserID == currentUserID) != (b.UserID == currentUserID) {
			return a.UserID == currentUserID
		}
		if a.Username != b.Username {
			return a.Username < b.Username
		}
		return a.UserID < b.UserID
	})
	return order
}

// floorDiv divides rounding toward negative infinity, so remainder
// distribution stays deterministic even when the base is negative mid-edit
func floorDiv(a, b int64) (quot, rem int64) {
	quot = a / b
	rem = a % b
	if rem < 0 {
		quot--
		rem += b
	}
	return quot, rem
}
