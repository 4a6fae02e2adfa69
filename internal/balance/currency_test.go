package balance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCurrencyBalanceAddSubtract(t *testing.T) {
	bal := NewCurrencyBalance()

	bal.Add("USD", d("10.00"))
	bal.Add("USD", d("5.50"))
	bal.Subtract("USD", d("15.50"))

	assert.True(t, bal.Get("USD").IsZero(), "add and subtract are inverse")
	assert.True(t, bal.Get("EUR").IsZero(), "missing code behaves as zero")
	assert.True(t, bal.IsSettled())
}

func TestCurrencyBalanceMergeKeepsCodesDisjoint(t *testing.T) {
	a := NewCurrencyBalance()
	a.Add("USD", d("10.00"))
	a.Add("EUR", d("-3.00"))

	b := NewCurrencyBalance()
	b.Add("EUR", d("1.00"))
	b.Add("GBP", d("7.00"))

	a.Merge(b)

	assert.True(t, a.Get("USD").Equal(d("10.00")), "USD never offset by other currencies")
	assert.True(t, a.Get("EUR").Equal(d("-2.00")))
	assert.True(t, a.Get("GBP").Equal(d("7.00")))
}

func TestCurrencyBalanceNonZeroTreatsSubCentAsSettled(t *testing.T) {
	bal := NewCurrencyBalance()
	bal.Add("USD", d("0.004"))
	bal.Add("EUR", d("-0.009"))
	bal.Add("GBP", d("0.01"))

	nz := bal.NonZero()
	require.Len(t, nz, 1)
	assert.True(t, nz.Get("GBP").Equal(d("0.01")))
	assert.False(t, bal.IsSettled())

	code, ok := bal.SingleCurrency()
	require.True(t, ok)
	assert.Equal(t, "GBP", code)
}

func TestCurrencyBalanceSingleCurrency(t *testing.T) {
	bal := NewCurrencyBalance()
	bal.Add("USD", d("5.00"))
	bal.Add("EUR", d("5.00"))

	_, ok := bal.SingleCurrency()
	assert.False(t, ok, "two non-zero currencies")

	empty := NewCurrencyBalance()
	_, ok = empty.SingleCurrency()
	assert.False(t, ok, "no non-zero currencies")
}

func TestCurrencyBalanceSortedByMagnitude(t *testing.T) {
	bal := NewCurrencyBalance()
	bal.Add("USD", d("-50.00"))
	bal.Add("EUR", d("10.00"))
	bal.Add("GBP", d("100.00"))
	bal.Add("JPY", d("0.001"))

	entries := bal.SortedByMagnitude()
	require.Len(t, entries, 3, "sub-cent JPY dropped")
	assert.Equal(t, "GBP", entries[0].CurrencyCode)
	assert.Equal(t, "USD", entries[1].CurrencyCode)
	assert.Equal(t, "EUR", entries[2].CurrencyCode)
}

func TestCurrencyBalancePositiveNegative(t *testing.T) {
	bal := NewCurrencyBalance()
	bal.Add("USD", d("5.00"))
	bal.Add("EUR", d("-2.00"))

	assert.True(t, bal.HasPositive())
	assert.True(t, bal.HasNegative())

	settled := NewCurrencyBalance()
	settled.Add("USD", d("0.001"))
	assert.False(t, settled.HasPositive())
	assert.False(t, settled.HasNegative())
}
