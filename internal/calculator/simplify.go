package calculator

import (
	"sort"

	"github.com/tallysplit/tally/internal/models"
)

// party is one side of the greedy matching: a user and their remaining
// positive amount (credit for creditors, |debt| for debtors).
type party struct {
	userID string
	amount float64
}

// SimplifyDebts reduces one currency's net balances to a minimal list of
// settling transactions. The original pairwise routing is deliberately
// discarded: only net positions matter, so a cycle where everyone nets to
// zero yields no transactions at all.
//
// Greedy matching: repeatedly pair the largest remaining creditor with the
// largest remaining debtor and transfer min(credit, debt). Ties on amount
// break by ascending user ID, which makes routing deterministic without
// affecting the zero-sum or conservation invariants. Terminates in at most
// len(creditors)+len(debtors)-1 transactions.
func SimplifyDebts(currency string, balances map[string]*models.UserBalance) []models.SimplifiedDebt {
	var creditors, debtors []party
	for id, bal := range balances {
		switch {
		case bal.NetBalance > Epsilon:
			creditors = append(creditors, party{userID: id, amount: bal.NetBalance})
		case bal.NetBalance < -Epsilon:
			debtors = append(debtors, party{userID: id, amount: -bal.NetBalance})
		}
	}

	var debts []models.SimplifiedDebt
	for len(creditors) > 0 && len(debtors) > 0 {
		sortParties(creditors)
		sortParties(debtors)

		creditor := &creditors[0]
		debtor := &debtors[0]

		transfer := creditor.amount
		if debtor.amount < transfer {
			transfer = debtor.amount
		}
		if transfer > Epsilon {
			debts = append(debts, models.SimplifiedDebt{
				From:     debtor.userID,
				To:       creditor.userID,
				Amount:   transfer,
				Currency: currency,
			})
		}

		creditor.amount -= transfer
		debtor.amount -= transfer
		if creditor.amount < Epsilon {
			creditors = creditors[1:]
		}
		if debtor.amount < Epsilon {
			debtors = debtors[1:]
		}
	}

	return debts
}

// sortParties orders by amount descending, ties by ascending user ID.
func sortParties(parties []party) {
	sort.Slice(parties, func(i, j int) bool {
		if parties[i].amount != parties[j].amount {
			return parties[i].amount > parties[j].amount
		}
		return parties[i].userID < parties[j].userID
	})
}
