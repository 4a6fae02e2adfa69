package balance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBetweenUsersSettlementConvergence(t *testing.T) {
	// Alice paid 40, Bob owes half, then Bob settles his half
	txs := []Transaction{
		singlePayerTx(alice, "40.00", "USD", map[int64]string{
			alice: "20.00", bob: "20.00",
		}),
	}
	settlements := []Settlement{
		{FromUserID: bob, ToUserID: alice, Amount: d("20.00"), CurrencyCode: "USD"},
	}

	bal := BetweenUsers(alice, bob, txs, settlements)
	assert.True(t, bal.IsSettled(), "settlement for the full debt nets to zero, got %v", bal)
}

func TestBetweenUsersSignSymmetry(t *testing.T) {
	txs := []Transaction{
		singlePayerTx(alice, "30.00", "USD", map[int64]string{
			alice: "10.00", bob: "10.00", carol: "10.00",
		}),
		singlePayerTx(bob, "10.00", "USD", map[int64]string{
			alice: "5.00", bob: "5.00",
		}),
	}
	settlements := []Settlement{
		{FromUserID: bob, ToUserID: alice, Amount: d("2.00"), CurrencyCode: "USD"},
	}

	ab := BetweenUsers(alice, bob, txs, settlements)
	ba := BetweenUsers(bob, alice, txs, settlements)

	// 10 owed to alice, minus 5 alice owes bob, minus the 2.00 payment
	assert.True(t, ab.Get("USD").Equal(d("3.00")))
	assert.True(t, ba.Get("USD").Equal(ab.Get("USD").Neg()))
}

func TestBetweenUsersMutualityFilter(t *testing.T) {
	// Carol's dinner with Bob must not leak into the Alice/Bob balance
	txs := []Transaction{
		singlePayerTx(alice, "20.00", "USD", map[int64]string{
			alice: "10.00", bob: "10.00",
		}),
		singlePayerTx(carol, "50.00", "USD", map[int64]string{
			carol: "25.00", bob: "25.00",
		}),
	}

	bal := BetweenUsers(alice, bob, txs, nil)
	assert.True(t, bal.Get("USD").Equal(d("10.00")))
}

func TestBetweenUsersIgnoresThirdPartySettlements(t *testing.T) {
	// A settlement between Bob and Carol never shifts the Alice/Bob balance,
	// even if all three share a group
	txs := []Transaction{
		singlePayerTx(alice, "30.00", "USD", map[int64]string{
			alice: "10.00", bob: "10.00", carol: "10.00",
		}),
	}
	settlements := []Settlement{
		{FromUserID: bob, ToUserID: carol, Amount: d("10.00"), CurrencyCode: "USD"},
		{FromUserID: carol, ToUserID: alice, Amount: d("10.00"), CurrencyCode: "USD"},
	}

	bal := BetweenUsers(alice, bob, txs, settlements)
	assert.True(t, bal.Get("USD").Equal(d("10.00")))
}

func TestBetweenUsersKeepsCurrenciesApart(t *testing.T) {
	txs := []Transaction{
		singlePayerTx(alice, "20.00", "USD", map[int64]string{
			alice: "10.00", bob: "10.00",
		}),
		singlePayerTx(bob, "20.00", "EUR", map[int64]string{
			alice: "10.00", bob: "10.00",
		}),
	}

	bal := BetweenUsers(alice, bob, txs, nil)
	assert.True(t, bal.Get("USD").Equal(d("10.00")))
	assert.True(t, bal.Get("EUR").Equal(d("-10.00")))
	assert.False(t, bal.IsSettled(), "debts in different currencies never cancel")
}

func TestGroupBalance(t *testing.T) {
	txs := []Transaction{
		{
			ID:           20,
			GroupID:      5,
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
	memberIDs := []int64{alice, bob, carol}

	aliceBal := GroupBalance(alice, memberIDs, txs)
	assert.True(t, aliceBal.Get("USD").Equal(d("30.00")), "alice is owed her overpayment")

	bobBal := GroupBalance(bob, memberIDs, txs)
	assert.True(t, bobBal.IsSettled(), "bob paid exactly his share")

	carolBal := GroupBalance(carol, memberIDs, txs)
	assert.True(t, carolBal.Get("USD").Equal(d("-30.00")))
}

func TestMemberBalances(t *testing.T) {
	txs := []Transaction{
		singlePayerTx(alice, "30.00", "USD", map[int64]string{
			alice: "10.00", bob: "10.00", carol: "10.00",
		}),
		singlePayerTx(carol, "8.00", "USD", map[int64]string{
			alice: "4.00", carol: "4.00",
		}),
	}
	members := []Member{
		{UserID: carol, Username: "carol"},
		{UserID: alice, Username: "alice"},
		{UserID: bob, Username: "bob"},
	}

	balances := MemberBalances(alice, members, txs, nil)
	require.Len(t, balances, 2, "current user excluded")
	assert.Equal(t, "bob", balances[0].Username, "sorted alphabetically")
	assert.Equal(t, "carol", balances[1].Username)

	assert.True(t, balances[0].Balance.Get("USD").Equal(d("10.00")))
	// Carol owes alice 10 from dinner, alice owes carol 4 back
	assert.True(t, balances[1].Balance.Get("USD").Equal(d("6.00")))

	owesYou := OweYou(balances)
	require.Len(t, owesYou, 2)

	youOwe := YouOwe(balances)
	assert.Empty(t, youOwe)
}

func TestMemberBalancesFilters(t *testing.T) {
	txs := []Transaction{
		singlePayerTx(alice, "20.00", "USD", map[int64]string{
			alice: "10.00", bob: "10.00",
		}),
		singlePayerTx(carol, "20.00", "USD", map[int64]string{
			alice: "10.00", carol: "10.00",
		}),
	}
	members := []Member{
		{UserID: bob, Username: "bob"},
		{UserID: carol, Username: "carol"},
	}

	balances := MemberBalances(alice, members, txs, nil)

	owesYou := OweYou(balances)
	require.Len(t, owesYou, 1)
	assert.Equal(t, "bob", owesYou[0].Username)

	youOwe := YouOwe(balances)
	require.Len(t, youOwe, 1)
	assert.Equal(t, "carol", youOwe[0].Username)
}
