package calculator

import (
	"errors"
	"math"
	"testing"

	"github.com/tallysplit/tally/internal/models"
)

func expense(id, currency, paidBy string, amount float64, splits ...models.SplitLine) *models.ExpenseRecord {
	participants := make([]string, len(splits))
	for i, s := range splits {
		participants[i] = s.UserID
	}
	return &models.ExpenseRecord{
		ID:           id,
		GroupID:      "g1",
		Currency:     currency,
		Amount:       amount,
		PaidBy:       paidBy,
		Participants: participants,
		Splits:       splits,
	}
}

func settlement(id, currency, payer, payee string, amount float64) *models.SettlementRecord {
	return &models.SettlementRecord{
		ID:       id,
		GroupID:  "g1",
		Currency: currency,
		PayerID:  payer,
		PayeeID:  payee,
		Amount:   amount,
	}
}

func TestAggregateLedger(t *testing.T) {
	tests := []struct {
		name         string
		expenses     []*models.ExpenseRecord
		settlements  []*models.SettlementRecord
		wantErr      bool
		validateFunc func(t *testing.T, contribs map[string][]Contribution)
	}{
		{
			name: "payer share is never recorded as debt",
			expenses: []*models.ExpenseRecord{
				expense("e1", "USD", "alice", 60,
					models.SplitLine{UserID: "alice", Amount: 20},
					models.SplitLine{UserID: "bob", Amount: 20},
					models.SplitLine{UserID: "carol", Amount: 20},
				),
			},
			validateFunc: func(t *testing.T, contribs map[string][]Contribution) {
				usd := contribs["USD"]
				if len(usd) != 2 {
					t.Fatalf("contributions: got %d, want 2", len(usd))
				}
				for _, c := range usd {
					if c.Debtor == "alice" {
						t.Errorf("payer alice appeared as debtor")
					}
					if c.Creditor != "alice" {
						t.Errorf("creditor = %s, want alice", c.Creditor)
					}
					if math.Abs(c.Amount-20) > Epsilon {
						t.Errorf("amount = %v, want 20", c.Amount)
					}
				}
			},
		},
		{
			name: "settlement is a reverse flow",
			settlements: []*models.SettlementRecord{
				settlement("s1", "USD", "bob", "alice", 15),
			},
			validateFunc: func(t *testing.T, contribs map[string][]Contribution) {
				usd := contribs["USD"]
				if len(usd) != 1 {
					t.Fatalf("contributions: got %d, want 1", len(usd))
				}
				c := usd[0]
				if c.Debtor != "alice" || c.Creditor != "bob" {
					t.Errorf("flow = %s->%s, want alice->bob", c.Debtor, c.Creditor)
				}
			},
		},
		{
			name: "soft-deleted records are excluded",
			expenses: []*models.ExpenseRecord{
				func() *models.ExpenseRecord {
					e := expense("e1", "USD", "alice", 30,
						models.SplitLine{UserID: "bob", Amount: 30})
					e.Deleted = models.DeletedAt(1700000000)
					return e
				}(),
			},
			settlements: []*models.SettlementRecord{
				func() *models.SettlementRecord {
					s := settlement("s1", "USD", "bob", "alice", 10)
					s.Deleted = models.DeletedAt(1700000000)
					return s
				}(),
			},
			validateFunc: func(t *testing.T, contribs map[string][]Contribution) {
				if len(contribs) != 0 {
					t.Errorf("expected no contributions, got %v", contribs)
				}
			},
		},
		{
			name: "split sum mismatch excludes the expense but not the ledger",
			expenses: []*models.ExpenseRecord{
				expense("bad", "USD", "alice", 100,
					models.SplitLine{UserID: "bob", Amount: 30}),
				expense("good", "USD", "alice", 40,
					models.SplitLine{UserID: "bob", Amount: 40}),
			},
			wantErr: true,
			validateFunc: func(t *testing.T, contribs map[string][]Contribution) {
				usd := contribs["USD"]
				if len(usd) != 1 {
					t.Fatalf("contributions: got %d, want 1", len(usd))
				}
				if math.Abs(usd[0].Amount-40) > Epsilon {
					t.Errorf("surviving contribution = %v, want 40", usd[0].Amount)
				}
			},
		},
		{
			name: "missing currency is a computation error",
			expenses: []*models.ExpenseRecord{
				expense("e1", "", "alice", 30,
					models.SplitLine{UserID: "bob", Amount: 30}),
			},
			wantErr: true,
			validateFunc: func(t *testing.T, contribs map[string][]Contribution) {
				if len(contribs) != 0 {
					t.Errorf("expected no contributions, got %v", contribs)
				}
			},
		},
		{
			name: "self-settlement contributes nothing",
			settlements: []*models.SettlementRecord{
				settlement("s1", "USD", "alice", "alice", 10),
			},
			validateFunc: func(t *testing.T, contribs map[string][]Contribution) {
				if len(contribs) != 0 {
					t.Errorf("expected no contributions, got %v", contribs)
				}
			},
		},
		{
			name: "currencies stay separate",
			expenses: []*models.ExpenseRecord{
				expense("e1", "USD", "alice", 10, models.SplitLine{UserID: "bob", Amount: 10}),
				expense("e2", "EUR", "bob", 20, models.SplitLine{UserID: "alice", Amount: 20}),
			},
			validateFunc: func(t *testing.T, contribs map[string][]Contribution) {
				if len(contribs["USD"]) != 1 || len(contribs["EUR"]) != 1 {
					t.Errorf("expected one contribution per currency, got %v", contribs)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contribs, err := AggregateLedger(tt.expenses, tt.settlements)
			if (err != nil) != tt.wantErr {
				t.Errorf("AggregateLedger() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, contribs)
			}
		})
	}
}

func TestAggregateLedgerErrorTypes(t *testing.T) {
	_, err := AggregateLedger([]*models.ExpenseRecord{
		expense("bad-sum", "USD", "alice", 100, models.SplitLine{UserID: "bob", Amount: 30}),
		expense("no-payer", "USD", "", 30, models.SplitLine{UserID: "bob", Amount: 30}),
	}, nil)
	if err == nil {
		t.Fatal("expected error")
	}

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Error("expected a ValidationError in the chain")
	} else if vErr.ExpenseID != "bad-sum" {
		t.Errorf("ValidationError.ExpenseID = %s, want bad-sum", vErr.ExpenseID)
	}

	var cErr *ComputationError
	if !errors.As(err, &cErr) {
		t.Error("expected a ComputationError in the chain")
	}
}
