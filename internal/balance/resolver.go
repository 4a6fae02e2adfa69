package balance

import (
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"
)

// Pairwise returns the signed amount b owes a for this one transaction.
// Positive = b owes a; negative = a owes b; zero = the transaction does not
// involve both, or nets to zero between them.
//
// The computation works on net positions (paid - owed) rather than a naive
// "who paid, who owes" lookup, because once several people can pay jointly
// the two-person payer-pays-all assumption breaks down. When a is a net
// creditor and b a net debtor, the amount b owes a is the portion of b's
// negative net position attributable to a, weighted by a's share of
// everything paid by the transaction's net creditors. With exactly one payer
// this reduces to the familiar rule: the sole payer is owed each other
// participant's split amount.
func Pairwise(t Transaction, a, b int64) decimal.Decimal {
	if a == b {
		// A payer who also owes a share never holds a receivable from themselves
		return decimal.Zero
	}
	if !Involves(t, a) || !Involves(t, b) {
		return decimal.Zero
	}

	netA := paidBy(t, a).Sub(owedBy(t, a))
	netB := paidBy(t, b).Sub(owedBy(t, b))

	switch {
	case netA.IsPositive() && netB.IsNegative():
		return receivable(t, a, netB)
	case netA.IsNegative() && netB.IsPositive():
		return receivable(t, b, netA).Neg()
	default:
		return decimal.Zero
	}
}

// Involves reports whether the user paid toward, contributed to, or owes a
// share of the transaction
func Involves(t Transaction, userID int64) bool {
	if t.PayerID == userID {
		return true
	}
	for _, c := range t.Contributions {
		if c.UserID == userID {
			return true
		}
	}
	for _, s := range t.Splits {
		if s.UserID == userID {
			return true
		}
	}
	return false
}

// receivable is the portion of the debtor's negative net position owed to
// one creditor, weighted by that creditor's share of the total paid by all
// net creditors in the transaction.
func receivable(t Transaction, creditor int64, debtorNet decimal.Decimal) decimal.Decimal {
	creditorPaid := decimal.Zero
	for _, id := range involvedUsers(t) {
		if paidBy(t, id).Sub(owedBy(t, id)).IsPositive() {
			creditorPaid = creditorPaid.Add(paidBy(t, id))
		}
	}
	if creditorPaid.IsZero() {
		// Inconsistent record: someone is owed money but nobody paid anything.
		// Skip rather than fault - one corrupt transaction must not take down
		// balance display for a whole person or group.
		slog.Warn("transaction has a net creditor but no recorded payments",
			"transaction_id", t.ID)
		return decimal.Zero
	}
	return debtorNet.Neg().Mul(paidBy(t, creditor)).Div(creditorPaid).Round(2)
}

// paidBy returns how much the user put in. Single-payer transactions have no
// contribution records and the payer implicitly covers the full total.
func paidBy(t Transaction, userID int64) decimal.Decimal {
	if len(t.Contributions) == 0 {
		if t.PayerID == userID {
			return t.Total
		}
		return decimal.Zero
	}

	paid := decimal.Zero
	for _, c := range t.Contributions {
		if c.Amount.IsNegative() {
			slog.Warn("skipping negative payer contribution",
				"transaction_id", t.ID, "user_id", c.UserID)
			continue
		}
		if c.UserID == userID {
			paid = paid.Add(c.Amount)
		}
	}
	return paid
}

// owedBy returns the user's owed share, zero if they are not a participant
func owedBy(t Transaction, userID int64) decimal.Decimal {
	owed := decimal.Zero
	for _, s := range t.Splits {
		if s.Amount.IsNegative() {
			slog.Warn("skipping negative participant split",
				"transaction_id", t.ID, "user_id", s.UserID)
			continue
		}
		if s.UserID == userID {
			owed = owed.Add(s.Amount)
		}
	}
	return owed
}

// involvedUsers returns every user touching the transaction, deduplicated and
// sorted for deterministic iteration
func involvedUsers(t Transaction) []int64 {
	seen := map[int64]bool{t.PayerID: true}
	for _, c := range t.Contributions {
		seen[c.UserID] = true
	}
	for _, s := range t.Splits {
		seen[s.UserID] = true
	}
	users := make([]int64, 0, len(seen))
	for id := range seen {
		users = append(users, id)
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return users
}
