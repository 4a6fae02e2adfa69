package split

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func fp(v float64) *float64 { return &v }

func ip(v int64) *int64 { return &v }

// sumOf adds up the calculated amounts across all details
func sumOf(details []Detail) decimal.Decimal {
	sum := decimal.Zero
	for _, det := range details {
		sum = sum.Add(det.Amount)
	}
	return sum
}

func amountFor(t *testing.T, details []Detail, userID int64) decimal.Decimal {
	t.Helper()
	for _, det := range details {
		if det.UserID == userID {
			return det.Amount
		}
	}
	t.Fatalf("no detail for user %d", userID)
	return decimal.Zero
}

func TestEqualStrategy(t *testing.T) {
	s := &EqualStrategy{}

	t.Run("remainder goes to alphabetically first participant", func(t *testing.T) {
		participants := []Input{
			{UserID: 3, Username: "carol"},
			{UserID: 1, Username: "alice"},
			{UserID: 2, Username: "bob"},
		}

		details, err := s.Calculate(d("10.00"), 0, participants)
		require.NoError(t, err)

		assert.True(t, amountFor(t, details, 1).Equal(d("3.34")), "alice gets the extra cent")
		assert.True(t, amountFor(t, details, 2).Equal(d("3.33")))
		assert.True(t, amountFor(t, details, 3).Equal(d("3.33")))
		assert.True(t, sumOf(details).Equal(d("10.00")))
	})

	t.Run("current user ranks before alphabetical order", func(t *testing.T) {
		participants := []Input{
			{UserID: 1, Username: "alice"},
			{UserID: 2, Username: "bob"},
			{UserID: 3, Username: "carol"},
		}

		details, err := s.Calculate(d("10.00"), 3, participants)
		require.NoError(t, err)

		assert.True(t, amountFor(t, details, 3).Equal(d("3.34")), "carol is the current user")
		assert.True(t, amountFor(t, details, 1).Equal(d("3.33")))
	})

	t.Run("remainder assignment is independent of input order", func(t *testing.T) {
		forward := []Input{
			{UserID: 1, Username: "alice"},
			{UserID: 2, Username: "bob"},
			{UserID: 3, Username: "carol"},
		}
		reversed := []Input{
			{UserID: 3, Username: "carol"},
			{UserID: 2, Username: "bob"},
			{UserID: 1, Username: "alice"},
		}

		a, err := s.Calculate(d("100.01"), 0, forward)
		require.NoError(t, err)
		b, err := s.Calculate(d("100.01"), 0, reversed)
		require.NoError(t, err)

		for _, userID := range []int64{1, 2, 3} {
			assert.True(t, amountFor(t, a, userID).Equal(amountFor(t, b, userID)),
				"user %d amount differs between input orders", userID)
		}
	})

	t.Run("sum invariant holds for awkward divisions", func(t *testing.T) {
		cases := []struct {
			total string
			n     int
		}{
			{"10.00", 3},
			{"0.01", 2},
			{"99.99", 7},
			{"1.00", 6},
		}
		for _, tc := range cases {
			participants := make([]Input, tc.n)
			for i := range participants {
				participants[i] = Input{UserID: int64(i + 1), Username: string(rune('a' + i))}
			}
			details, err := s.Calculate(d(tc.total), 0, participants)
			require.NoError(t, err)
			assert.True(t, sumOf(details).Equal(d(tc.total)),
				"total %s over %d participants: got %s", tc.total, tc.n, sumOf(details))
		}
	})

	t.Run("guards", func(t *testing.T) {
		_, err := s.Calculate(d("10.00"), 0, nil)
		assert.ErrorIs(t, err, ErrNoParticipants)

		_, err = s.Calculate(d("0"), 0, []Input{{UserID: 1}})
		assert.ErrorIs(t, err, ErrNonPositiveTotal)

		assert.NoError(t, s.Validate(d("10.00"), []Input{{UserID: 1}}))
		assert.ErrorIs(t, s.Validate(d("10.00"), nil), ErrNoParticipants)
	})
}

func TestAmountStrategy(t *testing.T) {
	s := &AmountStrategy{}

	t.Run("passes entered amounts through with derived percentages", func(t *testing.T) {
		participants := []Input{
			{UserID: 1, Username: "alice", Amount: dp("75.00")},
			{UserID: 2, Username: "bob", Amount: dp("25.00")},
		}

		details, err := s.Calculate(d("100.00"), 0, participants)
		require.NoError(t, err)

		assert.True(t, amountFor(t, details, 1).Equal(d("75.00")))
		assert.InDelta(t, 75.0, details[0].Percentage, 0.001)
		assert.InDelta(t, 25.0, details[1].Percentage, 0.001)
	})

	t.Run("unconfigured participants owe zero mid-edit", func(t *testing.T) {
		participants := []Input{
			{UserID: 1, Username: "alice", Amount: dp("60.00")},
			{UserID: 2, Username: "bob"},
		}

		details, err := s.Calculate(d("100.00"), 0, participants)
		require.NoError(t, err)
		assert.True(t, amountFor(t, details, 2).IsZero())
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name         string
			total        string
			participants []Input
			wantErr      error
		}{
			{
				name:  "amounts sum to total",
				total: "100.00",
				participants: []Input{
					{UserID: 1, Amount: dp("60.00")},
					{UserID: 2, Amount: dp("40.00")},
				},
			},
			{
				name:  "sub-cent drift is tolerated",
				total: "100.00",
				participants: []Input{
					{UserID: 1, Amount: dp("60.004")},
					{UserID: 2, Amount: dp("40.00")},
				},
			},
			{
				name:  "amounts off by more than a cent",
				total: "100.00",
				participants: []Input{
					{UserID: 1, Amount: dp("60.00")},
					{UserID: 2, Amount: dp("39.00")},
				},
				wantErr: ErrInvalidAmounts,
			},
			{
				name:  "negative amount",
				total: "100.00",
				participants: []Input{
					{UserID: 1, Amount: dp("110.00")},
					{UserID: 2, Amount: dp("-10.00")},
				},
				wantErr: ErrNegativeAmount,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := s.Validate(d(tt.total), tt.participants)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.NoError(t, err)
				}
			})
		}
	})
}

func TestPercentageStrategy(t *testing.T) {
	s := &PercentageStrategy{}

	t.Run("converts percentages to nearest cent", func(t *testing.T) {
		participants := []Input{
			{UserID: 1, Username: "alice", Percentage: fp(33.33)},
			{UserID: 2, Username: "bob", Percentage: fp(33.33)},
			{UserID: 3, Username: "carol", Percentage: fp(33.34)},
		}

		details, err := s.Calculate(d("100.00"), 0, participants)
		require.NoError(t, err)

		assert.True(t, amountFor(t, details, 1).Equal(d("33.33")))
		assert.True(t, amountFor(t, details, 3).Equal(d("33.34")))
		assert.True(t, sumOf(details).Equal(d("100.00")))
	})

	t.Run("validation", func(t *testing.T) {
		err := s.Validate(d("100.00"), []Input{
			{UserID: 1, Percentage: fp(50)},
			{UserID: 2, Percentage: fp(50.05)},
		})
		assert.NoError(t, err, "within 0.1 tolerance")

		err = s.Validate(d("100.00"), []Input{
			{UserID: 1, Percentage: fp(50)},
			{UserID: 2, Percentage: fp(49)},
		})
		assert.ErrorIs(t, err, ErrInvalidPercentages)

		err = s.Validate(d("100.00"), []Input{
			{UserID: 1, Percentage: fp(120)},
			{UserID: 2, Percentage: fp(-20)},
		})
		assert.ErrorIs(t, err, ErrPercentageOutOfRange)
	})
}

func TestSharesStrategy(t *testing.T) {
	s := &SharesStrategy{}

	t.Run("splits proportionally to shares", func(t *testing.T) {
		participants := []Input{
			{UserID: 1, Username: "alice", Shares: ip(2)},
			{UserID: 2, Username: "bob", Shares: ip(1)},
			{UserID: 3, Username: "carol", Shares: ip(1)},
		}

		details, err := s.Calculate(d("100.00"), 0, participants)
		require.NoError(t, err)

		assert.True(t, amountFor(t, details, 1).Equal(d("50.00")))
		assert.True(t, amountFor(t, details, 2).Equal(d("25.00")))
		assert.True(t, amountFor(t, details, 3).Equal(d("25.00")))
		assert.Equal(t, int64(2), details[0].Shares)
	})

	t.Run("sum invariant holds when shares do not divide evenly", func(t *testing.T) {
		participants := []Input{
			{UserID: 1, Username: "alice", Shares: ip(1)},
			{UserID: 2, Username: "bob", Shares: ip(1)},
			{UserID: 3, Username: "carol", Shares: ip(1)},
		}

		details, err := s.Calculate(d("0.10"), 0, participants)
		require.NoError(t, err)
		assert.True(t, sumOf(details).Equal(d("0.10")))

		participants[0].Shares = ip(3)
		participants[1].Shares = ip(2)
		participants[2].Shares = ip(2)
		details, err = s.Calculate(d("10.01"), 0, participants)
		require.NoError(t, err)
		assert.True(t, sumOf(details).Equal(d("10.01")))
	})

	t.Run("all-zero shares falls back to equal split", func(t *testing.T) {
		participants := []Input{
			{UserID: 1, Username: "alice", Shares: ip(0)},
			{UserID: 2, Username: "bob"},
			{UserID: 3, Username: "carol", Shares: ip(0)},
		}

		details, err := s.Calculate(d("10.00"), 0, participants)
		require.NoError(t, err)

		assert.True(t, amountFor(t, details, 1).Equal(d("3.34")))
		assert.True(t, amountFor(t, details, 2).Equal(d("3.33")))
		assert.True(t, sumOf(details).Equal(d("10.00")))
	})

	t.Run("validation rejects negative shares", func(t *testing.T) {
		err := s.Validate(d("10.00"), []Input{{UserID: 1, Shares: ip(-1)}})
		assert.ErrorIs(t, err, ErrNegativeShares)

		assert.NoError(t, s.Validate(d("10.00"), []Input{{UserID: 1, Shares: ip(0)}}))
	})
}

func TestAdjustmentStrategy(t *testing.T) {
	s := &AdjustmentStrategy{}

	t.Run("applies signed adjustments over an equal base", func(t *testing.T) {
		participants := []Input{
			{UserID: 1, Username: "alice", Adjustment: dp("3.00")},
			{UserID: 2, Username: "bob"},
			{UserID: 3, Username: "carol"},
		}

		// Base is (30 - 3) / 3 = 9.00 each; alice pays 3.00 on top
		details, err := s.Calculate(d("30.00"), 0, participants)
		require.NoError(t, err)

		assert.True(t, amountFor(t, details, 1).Equal(d("12.00")))
		assert.True(t, amountFor(t, details, 2).Equal(d("9.00")))
		assert.True(t, amountFor(t, details, 3).Equal(d("9.00")))
		assert.True(t, sumOf(details).Equal(d("30.00")))
	})

	t.Run("negative adjustments reduce a share", func(t *testing.T) {
		participants := []Input{
			{UserID: 1, Username: "alice", Adjustment: dp("-4.00")},
			{UserID: 2, Username: "bob"},
		}

		// Base is (20 + 4) / 2 = 12.00; alice owes 8.00
		details, err := s.Calculate(d("20.00"), 0, participants)
		require.NoError(t, err)

		assert.True(t, amountFor(t, details, 1).Equal(d("8.00")))
		assert.True(t, amountFor(t, details, 2).Equal(d("12.00")))
	})

	t.Run("validation rejects a split driven negative", func(t *testing.T) {
		err := s.Validate(d("10.00"), []Input{
			{UserID: 1, Adjustment: dp("-20.00")},
			{UserID: 2},
		})
		assert.ErrorIs(t, err, ErrNegativeSplit)
	})
}

func TestFactory(t *testing.T) {
	f := NewStrategyFactory()

	for _, method := range []Method{MethodEqual, MethodAmount, MethodPercentage, MethodShares, MethodAdjustment} {
		s, err := f.Create(method)
		require.NoError(t, err)
		assert.Equal(t, method, s.Type())
	}

	_, err := f.CreateFromString("HALVSIES")
	assert.Error(t, err)
}
