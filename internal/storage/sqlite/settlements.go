package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tallysplit/tally/internal/models"
)

// CreateSettlement persists a new settlement to the database.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, stl *models.SettlementRecord) error {
	if stl.ID == "" {
		stl.ID = uuid.New().String()
	}
	if stl.CreatedAt == 0 {
		stl.CreatedAt = time.Now().Unix()
	}

	var note interface{} = nil
	if stl.Note != "" {
		note = stl.Note
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlements (id, group_id, currency, payer_id, payee_id, amount, note, created_at, created_by, deleted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		stl.ID, stl.GroupID, stl.Currency, stl.PayerID, stl.PayeeID,
		stl.Amount, note, stl.CreatedAt, stl.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}
	return nil
}

// GetSettlement retrieves a settlement by ID, deleted or not.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.SettlementRecord, error) {
	stl := &models.SettlementRecord{}
	var note sql.NullString
	var deletedAt sql.NullInt64

	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, currency, payer_id, payee_id, amount, note, created_at, created_by, deleted_at
		 FROM settlements WHERE id = ?`, settlementID,
	).Scan(&stl.ID, &stl.GroupID, &stl.Currency, &stl.PayerID, &stl.PayeeID,
		&stl.Amount, &note, &stl.CreatedAt, &stl.CreatedBy, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("settlement not found: %s", settlementID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	if note.Valid {
		stl.Note = note.String
	}
	if deletedAt.Valid {
		stl.Deleted = models.DeletedAt(deletedAt.Int64)
	} else {
		stl.Deleted = models.Active()
	}
	return stl, nil
}

// UpdateSettlement replaces a settlement's mutable fields.
func (s *SQLiteStore) UpdateSettlement(ctx context.Context, stl *models.SettlementRecord) error {
	var note interface{} = nil
	if stl.Note != "" {
		note = stl.Note
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE settlements SET currency = ?, payer_id = ?, payee_id = ?, amount = ?, note = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		stl.Currency, stl.PayerID, stl.PayeeID, stl.Amount, note, stl.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update settlement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("settlement not found: %s", stl.ID)
	}
	return nil
}

// SoftDeleteSettlement marks a settlement deleted at the given Unix time.
func (s *SQLiteStore) SoftDeleteSettlement(ctx context.Context, settlementID string, deletedAt int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE settlements SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		deletedAt, settlementID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("settlement not found: %s", settlementID)
	}
	return nil
}

// ListSettlementsByGroup retrieves all non-deleted settlements for a group.
func (s *SQLiteStore) ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.SettlementRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, currency, payer_id, payee_id, amount, note, created_at, created_by
		 FROM settlements WHERE group_id = ? AND deleted_at IS NULL
		 ORDER BY created_at DESC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements by group: %w", err)
	}
	defer rows.Close()

	var settlements []*models.SettlementRecord
	for rows.Next() {
		stl := &models.SettlementRecord{Deleted: models.Active()}
		var note sql.NullString

		if err := rows.Scan(&stl.ID, &stl.GroupID, &stl.Currency, &stl.PayerID, &stl.PayeeID,
			&stl.Amount, &note, &stl.CreatedAt, &stl.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		if note.Valid {
			stl.Note = note.String
		}
		settlements = append(settlements, stl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}
