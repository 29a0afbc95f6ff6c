package models

// Deletion is the soft-delete state of a ledger record: either active or
// deleted at a known time. Modeling this as a small value type (rather than a
// nullable timestamp) keeps the "is this record in the ledger" check total —
// there is no third state to forget about.
type Deletion struct {
	deleted bool
	at      int64
}

// Active returns the state of a record that has not been deleted.
func Active() Deletion {
	return Deletion{}
}

// DeletedAt returns the state of a record soft-deleted at the given Unix time.
func DeletedAt(ts int64) Deletion {
	return Deletion{deleted: true, at: ts}
}

// IsDeleted reports whether the record has been soft-deleted.
func (d Deletion) IsDeleted() bool {
	return d.deleted
}

// Timestamp returns the Unix time of deletion and whether the record is
// deleted at all.
func (d Deletion) Timestamp() (int64, bool) {
	return d.at, d.deleted
}
