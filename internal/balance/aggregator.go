package balance

import "sort"

// BetweenUsers folds the supplied history into the net amount the other user
// owes the current user, per currency. Transactions must involve both people
// (as payer, contributor, or split participant) to count; settlement deltas
// apply only when the payment is directly between the two - settlements carry
// no group reference and are never attributed by proximity.
//
// This is a full recomputation on every call. Nothing is cached: transactions
// can be created, edited, or deleted between reads, and a stale balance is
// worse than a slow one.
func BetweenUsers(currentUserID, otherUserID int64, txs []Transaction, settlements []Settlement) CurrencyBalance {
	bal := NewCurrencyBalance()

	for _, t := range txs {
		if !Involves(t, currentUserID) || !Involves(t, otherUserID) {
			continue
		}
		amount := Pairwise(t, currentUserID, otherUserID)
		if amount.IsZero() {
			continue
		}
		bal.Add(t.CurrencyCode, amount)
	}

	for _, s := range settlements {
		switch {
		case s.FromUserID == otherUserID && s.ToUserID == currentUserID:
			// The other user paid down what they owed
			bal.Subtract(s.CurrencyCode, s.Amount)
		case s.FromUserID == currentUserID && s.ToUserID == otherUserID:
			bal.Add(s.CurrencyCode, s.Amount)
		}
	}

	return bal
}

// GroupBalance is the current user's net position inside one group: the
// pairwise balances against each other member, summed per currency. The
// caller supplies transactions already restricted to the group. Settlements
// are not applied here because they carry no group reference.
func GroupBalance(currentUserID int64, memberIDs []int64, txs []Transaction) CurrencyBalance {
	bal := NewCurrencyBalance()
	for _, id := range memberIDs {
		if id == currentUserID {
			continue
		}
		bal.Merge(BetweenUsers(currentUserID, id, txs, nil))
	}
	return bal
}

// MemberBalance pairs one member with the current user's balance against them
type MemberBalance struct {
	UserID   int64
	Username string
	Balance  CurrencyBalance
}

// MemberBalances resolves the current user's balance against every other
// member, sorted alphabetically by username
func MemberBalances(currentUserID int64, members []Member, txs []Transaction, settlements []Settlement) []MemberBalance {
	out := make([]MemberBalance, 0, len(members))
	for _, m := range members {
		if m.UserID == currentUserID {
			continue
		}
		out = append(out, MemberBalance{
			UserID:   m.UserID,
			Username: m.Username,
			Balance:  BetweenUsers(currentUserID, m.UserID, txs, settlements),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Username != out[j].Username {
			return out[i].Username < out[j].Username
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// OweYou filters to members who owe the current user in any currency
func OweYou(balances []MemberBalance) []MemberBalance {
	var out []MemberBalance
	for _, mb := range balances {
		if mb.Balance.HasPositive() {
			out = append(out, mb)
		}
	}
	return out
}

// YouOwe filters to members the current user owes in any currency
func YouOwe(balances []MemberBalance) []MemberBalance {
	var out []MemberBalance
	for _, mb := range balances {
		if mb.Balance.HasNegative() {
			out = append(out, mb)
		}
	}
	return out
}
