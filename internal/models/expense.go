package models

// SplitLine is one participant's share of an expense.
type SplitLine struct {
	// UserID is the participant who owes this share.
	UserID string

	// Amount is this participant's share of the expense total.
	Amount float64
}

// ExpenseRecord represents a shared expense paid by one member on behalf of
// several participants. The split lines must sum to Amount (within the
// settlement epsilon); the balance engine rejects expenses that do not.
type ExpenseRecord struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Currency is the ISO 4217 code the expense was paid in.
	Currency string

	// Amount is the full expense total paid by PaidBy.
	Amount float64

	// Description is a human-readable label (e.g., "Groceries").
	Description string

	// PaidBy is the user ID that paid the expense.
	PaidBy string

	// Participants is the list of user IDs sharing the expense.
	Participants []string

	// Splits divides Amount among the participants. A line for the payer is
	// allowed but contributes no debt.
	Splits []SplitLine

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64

	// CreatedBy is the user ID that recorded the expense.
	CreatedBy string

	// Deleted is the soft-delete state. Deleted expenses are excluded from
	// balance computation but remain readable.
	Deleted Deletion
}

// ReferencedUsers returns every user ID the expense mentions: the payer and
// all split participants. Used by the lock evaluator.
func (e *ExpenseRecord) ReferencedUsers() []string {
	refs := make([]string, 0, len(e.Splits)+1)
	if e.PaidBy != "" {
		refs = append(refs, e.PaidBy)
	}
	for _, s := range e.Splits {
		refs = append(refs, s.UserID)
	}
	return refs
}
