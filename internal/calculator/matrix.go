package calculator

import (
	"sort"

	"github.com/tallysplit/tally/internal/models"
)

// BuildBalanceMatrix folds one currency's contributions into netted pairwise
// relations and per-user net balances.
//
// Opposing flows between a pair cancel: a owing b 50 while b owes a 30
// reduces to a single relation of a owing b 20. Pairs whose net is within
// Epsilon are settled and get no entry. Every roster member gets a
// UserBalance even with no ledger activity, so callers (in particular the
// membership-removal guard) always find a balance to check.
func BuildBalanceMatrix(currency string, contribs []Contribution, roster []string) map[string]*models.UserBalance {
	// Gross flows: gross[a][b] = total contributed from a to b.
	gross := make(map[string]map[string]float64)
	users := make(map[string]bool)
	for _, m := range roster {
		users[m] = true
	}
	for _, c := range contribs {
		users[c.Debtor] = true
		users[c.Creditor] = true
		if gross[c.Debtor] == nil {
			gross[c.Debtor] = make(map[string]float64)
		}
		gross[c.Debtor][c.Creditor] += c.Amount
	}

	balances := make(map[string]*models.UserBalance, len(users))
	ids := make([]string, 0, len(users))
	for id := range users {
		ids = append(ids, id)
		balances[id] = &models.UserBalance{
			UserID:   id,
			Currency: currency,
			Owes:     make(map[string]float64),
			OwedBy:   make(map[string]float64),
		}
	}
	sort.Strings(ids)

	// Net every unordered pair once.
	for i, a := range ids {
		for _, b := range ids[i+1:] {
			net := gross[a][b] - gross[b][a]
			switch {
			case net > Epsilon:
				balances[a].Owes[b] = net
				balances[b].OwedBy[a] = net
			case net < -Epsilon:
				balances[b].Owes[a] = -net
				balances[a].OwedBy[b] = -net
			}
		}
	}

	for _, bal := range balances {
		for _, amt := range bal.OwedBy {
			bal.NetBalance += amt
		}
		for _, amt := range bal.Owes {
			bal.NetBalance -= amt
		}
	}

	return balances
}
