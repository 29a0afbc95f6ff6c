package calculator

import (
	"math"
	"testing"

	"github.com/tallysplit/tally/internal/models"
)

func TestComputeGroupBalances(t *testing.T) {
	members := []string{"alice", "bob", "carol"}

	t.Run("empty ledger yields empty output", func(t *testing.T) {
		got, err := ComputeGroupBalances("g1", nil, nil, members)
		if err != nil {
			t.Fatalf("ComputeGroupBalances() error = %v", err)
		}
		if len(got.UserBalances) != 0 || len(got.SimplifiedDebts) != 0 {
			t.Errorf("expected empty balances, got %+v", got)
		}
		if got.GroupID != "g1" {
			t.Errorf("group ID = %s, want g1", got.GroupID)
		}
		if got.LastUpdated == 0 {
			t.Error("expected LastUpdated to be stamped")
		}
	})

	t.Run("currencies are computed independently", func(t *testing.T) {
		expenses := []*models.ExpenseRecord{
			expense("e1", "USD", "alice", 60,
				models.SplitLine{UserID: "alice", Amount: 30},
				models.SplitLine{UserID: "bob", Amount: 30}),
			expense("e2", "EUR", "bob", 40,
				models.SplitLine{UserID: "bob", Amount: 20},
				models.SplitLine{UserID: "alice", Amount: 20}),
		}

		got, err := ComputeGroupBalances("g1", expenses, nil, members)
		if err != nil {
			t.Fatalf("ComputeGroupBalances() error = %v", err)
		}

		// USD and EUR must not net against each other: alice is owed 30 USD
		// and owes 20 EUR, never a merged 10.
		if net := got.NetBalanceOf("alice", "USD"); math.Abs(net-30) > Epsilon {
			t.Errorf("alice USD net = %v, want 30", net)
		}
		if net := got.NetBalanceOf("alice", "EUR"); math.Abs(net-(-20)) > Epsilon {
			t.Errorf("alice EUR net = %v, want -20", net)
		}
		if len(got.SimplifiedDebts["USD"]) != 1 || len(got.SimplifiedDebts["EUR"]) != 1 {
			t.Errorf("expected one debt per currency, got %+v", got.SimplifiedDebts)
		}
	})

	t.Run("settlement reduces prior debt", func(t *testing.T) {
		expenses := []*models.ExpenseRecord{
			expense("e1", "USD", "alice", 100,
				models.SplitLine{UserID: "alice", Amount: 50},
				models.SplitLine{UserID: "bob", Amount: 50}),
		}
		settlements := []*models.SettlementRecord{
			settlement("s1", "USD", "bob", "alice", 30),
		}

		got, err := ComputeGroupBalances("g1", expenses, settlements, members)
		if err != nil {
			t.Fatalf("ComputeGroupBalances() error = %v", err)
		}

		debts := got.SimplifiedDebts["USD"]
		if len(debts) != 1 {
			t.Fatalf("expected 1 debt, got %v", debts)
		}
		if debts[0].From != "bob" || debts[0].To != "alice" || math.Abs(debts[0].Amount-20) > Epsilon {
			t.Errorf("got %+v, want bob->alice 20", debts[0])
		}
	})

	t.Run("fully settled group yields no transactions", func(t *testing.T) {
		expenses := []*models.ExpenseRecord{
			expense("e1", "USD", "alice", 50,
				models.SplitLine{UserID: "bob", Amount: 50}),
		}
		settlements := []*models.SettlementRecord{
			settlement("s1", "USD", "bob", "alice", 50),
		}

		got, err := ComputeGroupBalances("g1", expenses, settlements, members)
		if err != nil {
			t.Fatalf("ComputeGroupBalances() error = %v", err)
		}
		if len(got.SimplifiedDebts["USD"]) != 0 {
			t.Errorf("expected no debts, got %v", got.SimplifiedDebts["USD"])
		}
	})

	t.Run("zero-sum holds per currency", func(t *testing.T) {
		expenses := []*models.ExpenseRecord{
			expense("e1", "USD", "alice", 99.99,
				models.SplitLine{UserID: "alice", Amount: 33.33},
				models.SplitLine{UserID: "bob", Amount: 33.33},
				models.SplitLine{UserID: "carol", Amount: 33.33}),
			expense("e2", "USD", "bob", 45.50,
				models.SplitLine{UserID: "bob", Amount: 22.75},
				models.SplitLine{UserID: "carol", Amount: 22.75}),
			expense("e3", "EUR", "carol", 12.40,
				models.SplitLine{UserID: "alice", Amount: 6.20},
				models.SplitLine{UserID: "bob", Amount: 6.20}),
		}
		settlements := []*models.SettlementRecord{
			settlement("s1", "USD", "carol", "alice", 10),
		}

		got, err := ComputeGroupBalances("g1", expenses, settlements, members)
		if err != nil {
			t.Fatalf("ComputeGroupBalances() error = %v", err)
		}
		for currency, balances := range got.UserBalances {
			total := 0.0
			for _, ub := range balances {
				total += ub.NetBalance
			}
			if math.Abs(total) > Epsilon {
				t.Errorf("%s: net balances sum to %v, want 0", currency, total)
			}
		}
	})

	t.Run("recomputation is idempotent", func(t *testing.T) {
		expenses := []*models.ExpenseRecord{
			expense("e1", "USD", "alice", 75,
				models.SplitLine{UserID: "bob", Amount: 40},
				models.SplitLine{UserID: "carol", Amount: 35}),
		}

		first, err := ComputeGroupBalances("g1", expenses, nil, members)
		if err != nil {
			t.Fatalf("ComputeGroupBalances() error = %v", err)
		}
		second, err := ComputeGroupBalances("g1", expenses, nil, members)
		if err != nil {
			t.Fatalf("ComputeGroupBalances() error = %v", err)
		}

		if total(first.SimplifiedDebts["USD"]) != total(second.SimplifiedDebts["USD"]) {
			t.Error("total transferred amount changed between identical snapshots")
		}
		if len(first.SimplifiedDebts["USD"]) != len(second.SimplifiedDebts["USD"]) {
			t.Error("transaction count changed between identical snapshots")
		}
	})

	t.Run("malformed expense degrades gracefully", func(t *testing.T) {
		expenses := []*models.ExpenseRecord{
			expense("bad", "USD", "alice", 100,
				models.SplitLine{UserID: "bob", Amount: 10}),
			expense("good", "USD", "carol", 20,
				models.SplitLine{UserID: "bob", Amount: 20}),
		}

		got, err := ComputeGroupBalances("g1", expenses, nil, members)
		if err == nil {
			t.Error("expected validation error to surface")
		}
		// The well-formed expense still produces balances.
		if net := got.NetBalanceOf("carol", "USD"); math.Abs(net-20) > Epsilon {
			t.Errorf("carol USD net = %v, want 20", net)
		}
		// Nothing from the malformed expense leaked in.
		if net := got.NetBalanceOf("alice", "USD"); net != 0 {
			t.Errorf("alice USD net = %v, want 0", net)
		}
	})

	t.Run("roster members appear in every active currency", func(t *testing.T) {
		expenses := []*models.ExpenseRecord{
			expense("e1", "USD", "alice", 10,
				models.SplitLine{UserID: "bob", Amount: 10}),
		}

		got, err := ComputeGroupBalances("g1", expenses, nil, members)
		if err != nil {
			t.Fatalf("ComputeGroupBalances() error = %v", err)
		}
		if len(got.UserBalances["USD"]) != 3 {
			t.Errorf("expected 3 user balances (roster), got %d", len(got.UserBalances["USD"]))
		}
	})
}

func total(debts []models.SimplifiedDebt) float64 {
	sum := 0.0
	for _, d := range debts {
		sum += d.Amount
	}
	return sum
}
