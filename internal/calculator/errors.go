package calculator

import (
	"errors"
	"fmt"
)

// ErrRecordLocked is returned by the mutation layer when an edit or delete is
// attempted on a record that references a departed member.
var ErrRecordLocked = errors.New("record references a member who left the group")

// ValidationError reports an expense whose split lines do not sum to its
// total. The expense is excluded from aggregation rather than silently
// corrected.
type ValidationError struct {
	ExpenseID string
	Expected  float64
	Actual    float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("expense %s: splits sum to %.2f, expected %.2f", e.ExpenseID, e.Actual, e.Expected)
}

// ComputationError reports a ledger record the aggregator had to skip, such
// as a record missing its currency or payer. The rest of the ledger still
// produces balances; affected users simply net to zero.
type ComputationError struct {
	RecordID string
	Reason   string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("record %s skipped: %s", e.RecordID, e.Reason)
}
