package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tallysplit/tally/internal/models"
)

// CreateExpense persists an expense and its split lines in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, exp *models.ExpenseRecord) error {
	if exp.ID == "" {
		exp.ID = uuid.New().String()
	}
	if exp.CreatedAt == 0 {
		exp.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, currency, amount, description, paid_by, created_at, created_by, deleted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		exp.ID, exp.GroupID, exp.Currency, exp.Amount, exp.Description,
		exp.PaidBy, exp.CreatedAt, exp.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertSplits(ctx, tx, exp.ID, exp.Splits); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID, deleted or not.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.ExpenseRecord, error) {
	exp := &models.ExpenseRecord{}
	var deletedAt sql.NullInt64

	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, currency, amount, description, paid_by, created_at, created_by, deleted_at
		 FROM expenses WHERE id = ?`, expenseID,
	).Scan(&exp.ID, &exp.GroupID, &exp.Currency, &exp.Amount, &exp.Description,
		&exp.PaidBy, &exp.CreatedAt, &exp.CreatedBy, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense not found: %s", expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if deletedAt.Valid {
		exp.Deleted = models.DeletedAt(deletedAt.Int64)
	} else {
		exp.Deleted = models.Active()
	}

	if err := s.loadSplits(ctx, exp); err != nil {
		return nil, err
	}
	return exp, nil
}

// UpdateExpense replaces an expense and its split lines.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, exp *models.ExpenseRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses SET currency = ?, amount = ?, description = ?, paid_by = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		exp.Currency, exp.Amount, exp.Description, exp.PaidBy, exp.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense not found: %s", exp.ID)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_splits WHERE expense_id = ?", exp.ID); err != nil {
		return fmt.Errorf("failed to clear expense splits: %w", err)
	}
	if err := insertSplits(ctx, tx, exp.ID, exp.Splits); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SoftDeleteExpense marks an expense deleted at the given Unix time.
func (s *SQLiteStore) SoftDeleteExpense(ctx context.Context, expenseID string, deletedAt int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		deletedAt, expenseID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense not found: %s", expenseID)
	}
	return nil
}

// ListExpensesByGroup retrieves all non-deleted expenses for a group.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.ExpenseRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, currency, amount, description, paid_by, created_at, created_by
		 FROM expenses WHERE group_id = ? AND deleted_at IS NULL
		 ORDER BY created_at DESC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by group: %w", err)
	}
	defer rows.Close()

	var expenses []*models.ExpenseRecord
	for rows.Next() {
		exp := &models.ExpenseRecord{Deleted: models.Active()}
		if err := rows.Scan(&exp.ID, &exp.GroupID, &exp.Currency, &exp.Amount,
			&exp.Description, &exp.PaidBy, &exp.CreatedAt, &exp.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for _, exp := range expenses {
		if err := s.loadSplits(ctx, exp); err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

// insertSplits writes the split lines for an expense inside a transaction.
func insertSplits(ctx context.Context, tx *sql.Tx, expenseID string, splits []models.SplitLine) error {
	for _, line := range splits {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, user_id, amount) VALUES (?, ?, ?)",
			expenseID, line.UserID, line.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense split: %w", err)
		}
	}
	return nil
}

// loadSplits fills in an expense's split lines and participant list.
func (s *SQLiteStore) loadSplits(ctx context.Context, exp *models.ExpenseRecord) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, amount FROM expense_splits WHERE expense_id = ? ORDER BY user_id",
		exp.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get expense splits: %w", err)
	}
	defer rows.Close()

	exp.Splits = nil
	exp.Participants = nil
	for rows.Next() {
		var line models.SplitLine
		if err := rows.Scan(&line.UserID, &line.Amount); err != nil {
			return fmt.Errorf("failed to scan expense split: %w", err)
		}
		exp.Splits = append(exp.Splits, line)
		exp.Participants = append(exp.Participants, line.UserID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate expense splits: %w", err)
	}
	return nil
}
