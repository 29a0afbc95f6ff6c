package models

// UserBalance is one member's position in one currency.
type UserBalance struct {
	// UserID identifies the member.
	UserID string

	// Currency is the ISO 4217 code this balance is denominated in.
	Currency string

	// Owes maps creditor user ID to the netted amount this user owes them.
	Owes map[string]float64

	// OwedBy maps debtor user ID to the netted amount they owe this user.
	// Owes and OwedBy are symmetric views of the same pairwise relation:
	// a.Owes[b] == b.OwedBy[a] whenever either is set.
	OwedBy map[string]float64

	// NetBalance is sum(OwedBy) - sum(Owes). Positive means the user is owed
	// money overall, negative means they owe.
	NetBalance float64
}

// SimplifiedDebt is one recommended settling transaction.
type SimplifiedDebt struct {
	// From is the debtor who should pay.
	From string

	// To is the creditor who should be paid.
	To string

	// Amount is the transaction amount, always greater than the settlement
	// epsilon.
	Amount float64

	// Currency is the ISO 4217 code of the transaction.
	Currency string
}

// GroupBalances is the complete balance engine output for one group.
// It is recomputed from the ledger on every request, never persisted.
type GroupBalances struct {
	// GroupID identifies the group.
	GroupID string

	// UserBalances holds one UserBalance per member per currency,
	// keyed by currency code.
	UserBalances map[string][]UserBalance

	// SimplifiedDebts holds the minimal settling transactions per currency,
	// keyed by currency code.
	SimplifiedDebts map[string][]SimplifiedDebt

	// LastUpdated is the Unix timestamp of the computation.
	LastUpdated int64
}

// NetBalanceOf returns the user's net balance in the given currency, or zero
// if the user has no balance there.
func (g *GroupBalances) NetBalanceOf(userID, currency string) float64 {
	for _, ub := range g.UserBalances[currency] {
		if ub.UserID == userID {
			return ub.NetBalance
		}
	}
	return 0
}
