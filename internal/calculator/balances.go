package calculator

import (
	"sort"
	"time"

	"github.com/tallysplit/tally/internal/models"
)

// ComputeGroupBalances runs the full pipeline for one group: aggregate the
// ledger into contributions, net them into pairwise balances, and simplify
// each currency's net positions into settling transactions.
//
// The function is pure apart from the LastUpdated stamp: it takes an
// already-fetched snapshot of the ledger and roster, holds no state, and is
// safe to run concurrently across groups. Each currency is processed
// independently — amounts are never converted or netted across currencies.
//
// A malformed record degrades gracefully: it is excluded, reported through
// the error return, and the rest of the group still gets balances. Callers
// that only care about availability can log the error and serve the result.
func ComputeGroupBalances(groupID string, expenses []*models.ExpenseRecord, settlements []*models.SettlementRecord, activeMembers []string) (*models.GroupBalances, error) {
	contribs, err := AggregateLedger(expenses, settlements)

	result := &models.GroupBalances{
		GroupID:         groupID,
		UserBalances:    make(map[string][]models.UserBalance),
		SimplifiedDebts: make(map[string][]models.SimplifiedDebt),
		LastUpdated:     time.Now().Unix(),
	}

	currencies := make([]string, 0, len(contribs))
	for currency := range contribs {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)

	for _, currency := range currencies {
		matrix := BuildBalanceMatrix(currency, contribs[currency], activeMembers)
		result.SimplifiedDebts[currency] = SimplifyDebts(currency, matrix)

		users := make([]string, 0, len(matrix))
		for id := range matrix {
			users = append(users, id)
		}
		sort.Strings(users)

		ordered := make([]models.UserBalance, 0, len(users))
		for _, id := range users {
			ordered = append(ordered, *matrix[id])
		}
		result.UserBalances[currency] = ordered
	}

	return result, err
}
