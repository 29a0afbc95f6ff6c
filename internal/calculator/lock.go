package calculator

// LedgerRecord is any record that references group members. Both
// models.ExpenseRecord and models.SettlementRecord satisfy it.
type LedgerRecord interface {
	ReferencedUsers() []string
}

// IsLocked reports whether the record references a user who is no longer an
// active group member. Locked records reject edits and deletes — the history
// of a departed member must stay intact for balances to remain correct — but
// they are still readable and still count toward balance computation.
func IsLocked(record LedgerRecord, activeMembers []string) bool {
	active := make(map[string]bool, len(activeMembers))
	for _, m := range activeMembers {
		active[m] = true
	}
	for _, ref := range record.ReferencedUsers() {
		if !active[ref] {
			return true
		}
	}
	return false
}
