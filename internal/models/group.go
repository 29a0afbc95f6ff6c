package models

// Group represents a set of users who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// DefaultCurrency is the ISO 4217 code suggested for new expenses.
	// Expenses may still be recorded in any currency; balances are kept
	// per currency and never converted.
	DefaultCurrency string

	// Members is the list of user IDs currently active in the group.
	// Users who left the group are absent here but may still be referenced
	// by historical expenses and settlements.
	Members []string

	// CreatedBy is the user ID that created the group.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether the user is in the active roster.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}
