package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCreateRejectsSelfSettlement(t *testing.T) {
	svc := NewService(nil, nil, nil)

	_, err := svc.Create(context.Background(), 1, &CreateSettlementRequest{
		ToUserID:     1,
		Amount:       decimal.NewFromInt(10),
		CurrencyCode: "USD",
	})

	assert.ErrorIs(t, err, ErrCannotSettleSelf)
}

func TestCreateRejectsNonPositiveAmount(t *testing.T) {
	svc := NewService(nil, nil, nil)

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		_, err := svc.Create(context.Background(), 1, &CreateSettlementRequest{
			ToUserID:     2,
			Amount:       amount,
			CurrencyCode: "USD",
		})
		assert.ErrorIs(t, err, ErrNonPositiveAmount)
	}
}

func TestCreateRejectsMalformedDate(t *testing.T) {
	svc := NewService(nil, nil, nil)

	_, err := svc.Create(context.Background(), 1, &CreateSettlementRequest{
		ToUserID:     2,
		Amount:       decimal.NewFromInt(10),
		CurrencyCode: "USD",
		SettledOn:    "03/15/2026",
	})

	assert.Error(t, err)
}

func TestBalanceRecord(t *testing.T) {
	s := &Settlement{
		ID:           5,
		FromUserID:   2,
		ToUserID:     1,
		Amount:       decimal.RequireFromString("25.50"),
		CurrencyCode: "EUR",
		SettledOn:    time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
	}

	rec := s.BalanceRecord()

	assert.Equal(t, int64(2), rec.FromUserID)
	assert.Equal(t, int64(1), rec.ToUserID)
	assert.Equal(t, "EUR", rec.CurrencyCode)
	assert.True(t, rec.Amount.Equal(decimal.RequireFromString("25.50")))
}
