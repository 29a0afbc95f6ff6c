package calculator

import (
	"testing"

	"github.com/tallysplit/tally/internal/models"
)

func TestIsLocked(t *testing.T) {
	active := []string{"alice", "bob"}

	tests := []struct {
		name   string
		record LedgerRecord
		want   bool
	}{
		{
			name: "expense with all members active",
			record: expense("e1", "USD", "alice", 20,
				models.SplitLine{UserID: "bob", Amount: 20}),
			want: false,
		},
		{
			name: "expense split with a departed member",
			record: expense("e1", "USD", "alice", 20,
				models.SplitLine{UserID: "carol", Amount: 20}),
			want: true,
		},
		{
			name: "expense paid by a departed member",
			record: expense("e1", "USD", "carol", 20,
				models.SplitLine{UserID: "bob", Amount: 20}),
			want: true,
		},
		{
			name:   "settlement between active members",
			record: settlement("s1", "USD", "alice", "bob", 10),
			want:   false,
		},
		{
			name:   "settlement paying a departed member",
			record: settlement("s1", "USD", "alice", "carol", 10),
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLocked(tt.record, active); got != tt.want {
				t.Errorf("IsLocked() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLockedRecordStillCounts(t *testing.T) {
	// carol left the group, but her expense still shapes the balances.
	expenses := []*models.ExpenseRecord{
		expense("e1", "USD", "carol", 30,
			models.SplitLine{UserID: "alice", Amount: 15},
			models.SplitLine{UserID: "bob", Amount: 15}),
	}
	active := []string{"alice", "bob"}

	if !IsLocked(expenses[0], active) {
		t.Fatal("expected expense to be locked")
	}

	got, err := ComputeGroupBalances("g1", expenses, nil, active)
	if err != nil {
		t.Fatalf("ComputeGroupBalances() error = %v", err)
	}
	if net := got.NetBalanceOf("carol", "USD"); net != 30 {
		t.Errorf("carol net = %v, want 30 (history preserved)", net)
	}
}
