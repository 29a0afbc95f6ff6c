package models

// SettlementRecord represents a direct payment between group members that
// reduces the payer's debt to the payee.
type SettlementRecord struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// Currency is the ISO 4217 code the payment was made in.
	Currency string

	// PayerID is the user who paid (debtor settling up).
	PayerID string

	// PayeeID is the user who received the payment (creditor being paid).
	PayeeID string

	// Amount is the payment amount.
	Amount float64

	// Note is an optional description for the settlement.
	Note string

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64

	// CreatedBy is the user ID who recorded the settlement.
	CreatedBy string

	// Deleted is the soft-delete state.
	Deleted Deletion
}

// ReferencedUsers returns the payer and payee. Used by the lock evaluator.
func (s *SettlementRecord) ReferencedUsers() []string {
	return []string{s.PayerID, s.PayeeID}
}
