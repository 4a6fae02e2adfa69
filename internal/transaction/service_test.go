package transaction

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUserSource struct {
	currencies map[int64]string
}

func (s *stubUserSource) UsernamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error) {
	return map[int64]string{}, nil
}

func (s *stubUserSource) DefaultCurrencyByID(ctx context.Context, id int64) (string, error) {
	return s.currencies[id], nil
}

type stubGroupSource struct {
	currencies map[int64]string
}

func (s *stubGroupSource) DefaultCurrency(ctx context.Context, groupID int64) (string, error) {
	return s.currencies[groupID], nil
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func contrib(userID int64, amount string) *ContributionInput {
	return &ContributionInput{UserID: userID, Amount: d(amount)}
}

func TestBuildContributions(t *testing.T) {
	const payerID = int64(1)
	total := d("90.00")

	tests := []struct {
		name    string
		inputs  []*ContributionInput
		wantErr error
	}{
		{
			name:   "no contributions means payer paid everything",
			inputs: nil,
		},
		{
			name:   "joint payment covering the total",
			inputs: []*ContributionInput{contrib(1, "60.00"), contrib(2, "30.00")},
		},
		{
			name:   "sub-cent drift is tolerated",
			inputs: []*ContributionInput{contrib(1, "60.00"), contrib(2, "29.995")},
		},
		{
			name:    "payer absent from the contribution set",
			inputs:  []*ContributionInput{contrib(2, "50.00"), contrib(3, "40.00")},
			wantErr: ErrPayerNotContributing,
		},
		{
			name:    "sum off by more than a cent",
			inputs:  []*ContributionInput{contrib(1, "60.00"), contrib(2, "29.00")},
			wantErr: ErrContributionMismatch,
		},
		{
			name:    "zero contribution rejected",
			inputs:  []*ContributionInput{contrib(1, "90.00"), contrib(2, "0.00")},
			wantErr: ErrNegativeContribution,
		},
		{
			name:    "negative contribution rejected",
			inputs:  []*ContributionInput{contrib(1, "100.00"), contrib(2, "-10.00")},
			wantErr: ErrNegativeContribution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildContributions(payerID, total, tt.inputs)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, len(tt.inputs))
			for i, c := range got {
				assert.Equal(t, tt.inputs[i].UserID, c.UserID)
				assert.True(t, tt.inputs[i].Amount.Equal(c.Amount))
			}
		})
	}
}

func TestResolveCurrency(t *testing.T) {
	users := &stubUserSource{currencies: map[int64]string{1: "SAR"}}
	groups := &stubGroupSource{currencies: map[int64]string{10: "EUR"}}
	svc := NewService(nil, users, groups, nil)

	groupID := int64(10)
	unknownGroupID := int64(99)

	tests := []struct {
		name string
		req  *CreateTransactionRequest
		want string
	}{
		{
			name: "explicit currency wins",
			req:  &CreateTransactionRequest{GroupID: &groupID, CurrencyCode: "GBP"},
			want: "GBP",
		},
		{
			name: "group transaction falls back to group default",
			req:  &CreateTransactionRequest{GroupID: &groupID},
			want: "EUR",
		},
		{
			name: "personal transaction falls back to payer default",
			req:  &CreateTransactionRequest{},
			want: "SAR",
		},
		{
			name: "unknown group falls back to payer default",
			req:  &CreateTransactionRequest{GroupID: &unknownGroupID},
			want: "SAR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.resolveCurrency(context.Background(), 1, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown payer defaults to USD", func(t *testing.T) {
		got, err := svc.resolveCurrency(context.Background(), 42, &CreateTransactionRequest{})
		require.NoError(t, err)
		assert.Equal(t, "USD", got)
	})
}

func TestParseOccurredOn(t *testing.T) {
	got, err := parseOccurredOn("2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), got)

	_, err = parseOccurredOn("15/03/2026")
	assert.Error(t, err)

	today, err := parseOccurredOn("")
	require.NoError(t, err)
	assert.Equal(t, today, today.Truncate(24*time.Hour))
}
