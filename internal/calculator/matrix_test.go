package calculator

import (
	"math"
	"testing"
)

func TestBuildBalanceMatrix(t *testing.T) {
	tests := []struct {
		name         string
		contribs     []Contribution
		roster       []string
		validateFunc func(t *testing.T, balances map[string]*testBalance)
	}{
		{
			name: "reciprocal debts cancel to a single relation",
			contribs: []Contribution{
				{Debtor: "alice", Creditor: "bob", Amount: 50},
				{Debtor: "bob", Creditor: "alice", Amount: 30},
			},
			validateFunc: func(t *testing.T, balances map[string]*testBalance) {
				if got := balances["alice"].owes["bob"]; math.Abs(got-20) > Epsilon {
					t.Errorf("alice owes bob %v, want 20", got)
				}
				if _, ok := balances["bob"].owes["alice"]; ok {
					t.Error("bob should not owe alice after cancellation")
				}
			},
		},
		{
			name: "owes and owedBy are symmetric",
			contribs: []Contribution{
				{Debtor: "alice", Creditor: "bob", Amount: 35},
			},
			validateFunc: func(t *testing.T, balances map[string]*testBalance) {
				owes := balances["alice"].owes["bob"]
				owedBy := balances["bob"].owedBy["alice"]
				if owes != owedBy {
					t.Errorf("owes[alice][bob]=%v != owedBy[bob][alice]=%v", owes, owedBy)
				}
			},
		},
		{
			name: "relations within epsilon are settled",
			contribs: []Contribution{
				{Debtor: "alice", Creditor: "bob", Amount: 10.005},
				{Debtor: "bob", Creditor: "alice", Amount: 10.0},
			},
			validateFunc: func(t *testing.T, balances map[string]*testBalance) {
				if len(balances["alice"].owes) != 0 || len(balances["bob"].owes) != 0 {
					t.Errorf("sub-epsilon relation should be dropped: %v / %v",
						balances["alice"].owes, balances["bob"].owes)
				}
				if balances["alice"].net != 0 || balances["bob"].net != 0 {
					t.Error("settled pair should net to zero")
				}
			},
		},
		{
			name:     "roster members with no activity get an empty balance",
			contribs: []Contribution{{Debtor: "alice", Creditor: "bob", Amount: 5}},
			roster:   []string{"alice", "bob", "carol"},
			validateFunc: func(t *testing.T, balances map[string]*testBalance) {
				carol, ok := balances["carol"]
				if !ok {
					t.Fatal("expected carol in output")
				}
				if carol.net != 0 || len(carol.owes) != 0 || len(carol.owedBy) != 0 {
					t.Errorf("carol should be empty, got %+v", carol)
				}
			},
		},
		{
			name: "net balance is owedBy minus owes",
			contribs: []Contribution{
				{Debtor: "alice", Creditor: "bob", Amount: 40},
				{Debtor: "carol", Creditor: "alice", Amount: 10},
			},
			validateFunc: func(t *testing.T, balances map[string]*testBalance) {
				if got := balances["alice"].net; math.Abs(got-(-30)) > Epsilon {
					t.Errorf("alice net = %v, want -30", got)
				}
				if got := balances["bob"].net; math.Abs(got-40) > Epsilon {
					t.Errorf("bob net = %v, want 40", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matrix := BuildBalanceMatrix("USD", tt.contribs, tt.roster)

			// Zero-sum holds for every matrix.
			total := 0.0
			for _, bal := range matrix {
				total += bal.NetBalance
			}
			if math.Abs(total) > Epsilon {
				t.Errorf("net balances sum to %v, want 0", total)
			}

			flat := make(map[string]*testBalance, len(matrix))
			for id, bal := range matrix {
				flat[id] = &testBalance{net: bal.NetBalance, owes: bal.Owes, owedBy: bal.OwedBy}
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, flat)
			}
		})
	}
}

type testBalance struct {
	net    float64
	owes   map[string]float64
	owedBy map[string]float64
}
