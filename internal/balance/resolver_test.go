package balance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	alice = int64(1)
	bob   = int64(2)
	carol = int64(3)
	dave  = int64(4)
)

// singlePayerTx builds a transaction where one person paid the full total
func singlePayerTx(payerID int64, total string, currency string, splits map[int64]string) Transaction {
	t := Transaction{
		ID:           1,
		PayerID:      payerID,
		Total:        d(total),
		CurrencyCode: currency,
	}
	for userID, amount := range splits {
		t.Splits = append(t.Splits, Split{UserID: userID, Amount: d(amount)})
	}
	return t
}

func TestPairwiseSelfPairIsZero(t *testing.T) {
	tx := singlePayerTx(alice, "30.00", "USD", map[int64]string{
		alice: "10.00", bob: "10.00", carol: "10.00",
	})

	assert.True(t, Pairwise(tx, alice, alice).IsZero(),
		"a payer never holds a receivable from themselves")
	assert.True(t, Pairwise(tx, bob, bob).IsZero())
}

func TestPairwiseSinglePayer(t *testing.T) {
	tx := singlePayerTx(alice, "30.00", "USD", map[int64]string{
		alice: "10.00", bob: "10.00", carol: "10.00",
	})

	tests := []struct {
		name string
		a, b int64
		want string
	}{
		{"participant owes the sole payer their split", alice, bob, "10.00"},
		{"reversed orientation flips the sign", bob, alice, "-10.00"},
		{"two non-payers owe each other nothing", bob, carol, "0"},
		{"uninvolved user resolves to zero", alice, dave, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Pairwise(tx, tt.a, tt.b)
			assert.True(t, got.Equal(d(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestPairwiseMultiPayerNetting(t *testing.T) {
	// A paid 60, B paid 30, equal split of 90 among A, B, C.
	// Net positions: A +30, B 0, C -30.
	tx := Transaction{
		ID:           7,
		PayerID:      alice,
		Total:        d("90.00"),
		CurrencyCode: "USD",
		Contributions: []Contribution{
			{UserID: alice, Amount: d("60.00")},
			{UserID: bob, Amount: d("30.00")},
		},
		Splits: []Split{
			{UserID: alice, Amount: d("30.00")},
			{UserID: bob, Amount: d("30.00")},
			{UserID: carol, Amount: d("30.00")},
		},
	}

	assert.True(t, Pairwise(tx, alice, carol).Equal(d("30.00")), "C's debt flows to A")
	assert.True(t, Pairwise(tx, bob, carol).IsZero(), "B broke even, is owed nothing")
	assert.True(t, Pairwise(tx, alice, bob).IsZero(), "A and B have no debt between them")
	assert.True(t, Pairwise(tx, carol, alice).Equal(d("-30.00")))
}

func TestPairwiseTwoCreditors(t *testing.T) {
	// A paid 60, B paid 40, equal split of 100 among four people.
	// Net positions: A +35, B +15, C -25, D -25. C's 25 is apportioned by
	// paid share: A gets 25*60/100 = 15, B gets 25*40/100 = 10.
	tx := Transaction{
		ID:           8,
		PayerID:      alice,
		Total:        d("100.00"),
		CurrencyCode: "USD",
		Contributions: []Contribution{
			{UserID: alice, Amount: d("60.00")},
			{UserID: bob, Amount: d("40.00")},
		},
		Splits: []Split{
			{UserID: alice, Amount: d("25.00")},
			{UserID: bob, Amount: d("25.00")},
			{UserID: carol, Amount: d("25.00")},
			{UserID: dave, Amount: d("25.00")},
		},
	}

	assert.True(t, Pairwise(tx, alice, carol).Equal(d("15.00")))
	assert.True(t, Pairwise(tx, bob, carol).Equal(d("10.00")))
	assert.True(t, Pairwise(tx, alice, dave).Equal(d("15.00")))
	assert.True(t, Pairwise(tx, bob, dave).Equal(d("10.00")))
}

func TestPairwiseSignSymmetry(t *testing.T) {
	txs := []Transaction{
		singlePayerTx(alice, "30.00", "USD", map[int64]string{
			alice: "10.00", bob: "10.00", carol: "10.00",
		}),
		{
			ID:           9,
			PayerID:      alice,
			Total:        d("90.00"),
			CurrencyCode: "USD",
			Contributions: []Contribution{
				{UserID: alice, Amount: d("60.00")},
				{UserID: bob, Amount: d("30.00")},
			},
			Splits: []Split{
				{UserID: alice, Amount: d("30.00")},
				{UserID: bob, Amount: d("30.00")},
				{UserID: carol, Amount: d("30.00")},
			},
		},
	}

	users := []int64{alice, bob, carol, dave}
	for _, tx := range txs {
		for _, a := range users {
			for _, b := range users {
				ab := Pairwise(tx, a, b)
				ba := Pairwise(tx, b, a)
				assert.True(t, ab.Equal(ba.Neg()),
					"tx %d: pairwise(%d,%d)=%s but pairwise(%d,%d)=%s", tx.ID, a, b, ab, b, a, ba)
			}
		}
	}
}

func TestPairwiseSkipsAnomalousRecords(t *testing.T) {
	// A negative split is corrupt data; it is ignored, not propagated
	tx := Transaction{
		ID:           10,
		PayerID:      alice,
		Total:        d("20.00"),
		CurrencyCode: "USD",
		Splits: []Split{
			{UserID: bob, Amount: d("10.00")},
			{UserID: carol, Amount: d("-10.00")},
		},
	}

	assert.True(t, Pairwise(tx, alice, bob).Equal(d("10.00")))
	assert.True(t, Pairwise(tx, alice, carol).IsZero())
}

func TestInvolves(t *testing.T) {
	tx := Transaction{
		ID:      11,
		PayerID: alice,
		Total:   d("10.00"),
		Contributions: []Contribution{
			{UserID: bob, Amount: d("5.00")},
		},
		Splits: []Split{
			{UserID: carol, Amount: d("10.00")},
		},
	}

	assert.True(t, Involves(tx, alice), "payer")
	assert.True(t, Involves(tx, bob), "contributor")
	assert.True(t, Involves(tx, carol), "split participant")
	assert.False(t, Involves(tx, dave))
}
