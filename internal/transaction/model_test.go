package transaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyup/tallyup/internal/transaction/split"
)

func TestBalanceRecord(t *testing.T) {
	groupID := int64(7)
	td := &TransactionWithDetails{
		Transaction: &Transaction{
			ID:           42,
			GroupID:      &groupID,
			PayerID:      1,
			Amount:       d("90.00"),
			CurrencyCode: "EUR",
			SplitMethod:  split.MethodEqual,
		},
		Contributions: []*PayerContribution{
			{UserID: 1, Amount: d("60.00")},
			{UserID: 2, Amount: d("30.00")},
		},
		Splits: []*ParticipantSplit{
			{UserID: 1, Amount: d("30.00")},
			{UserID: 2, Amount: d("30.00")},
			{UserID: 3, Amount: d("30.00")},
		},
	}

	rec := td.BalanceRecord()

	assert.Equal(t, int64(42), rec.ID)
	assert.Equal(t, int64(7), rec.GroupID)
	assert.Equal(t, int64(1), rec.PayerID)
	assert.Equal(t, "EUR", rec.CurrencyCode)
	assert.True(t, rec.Total.Equal(d("90.00")))

	require.Len(t, rec.Contributions, 2)
	assert.Equal(t, int64(2), rec.Contributions[1].UserID)
	assert.True(t, rec.Contributions[1].Amount.Equal(d("30.00")))

	require.Len(t, rec.Splits, 3)
	assert.Equal(t, int64(3), rec.Splits[2].UserID)
}

func TestBalanceRecordWithoutGroup(t *testing.T) {
	td := &TransactionWithDetails{
		Transaction: &Transaction{
			ID:           9,
			PayerID:      4,
			Amount:       d("12.50"),
			CurrencyCode: "USD",
		},
	}

	rec := td.BalanceRecord()

	assert.Zero(t, rec.GroupID)
	assert.Empty(t, rec.Contributions)
	assert.Empty(t, rec.Splits)
}
