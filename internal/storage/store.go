// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/tallysplit/tally/internal/models"
)

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Expenses and settlements are soft-deleted: the delete operations set a
// deletion timestamp and the list operations exclude deleted records, but
// Get* still returns them so the mutation layer can inspect history.
type Store interface {
	// CreateUser inserts a new user account.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// CreateGroup persists a new group and its member roster.
	// The group.ID field will be populated by the store.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its active member roster.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsByUser retrieves all groups the user is an active member of.
	ListGroupsByUser(ctx context.Context, userID string) ([]*models.Group, error)

	// UpdateGroup updates a group's name and default currency.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes a group and its roster.
	DeleteGroup(ctx context.Context, groupID string) error

	// AddGroupMembers adds users to the active roster, skipping existing ones.
	AddGroupMembers(ctx context.Context, groupID string, userIDs []string) error

	// RemoveGroupMember removes one user from the active roster.
	RemoveGroupMember(ctx context.Context, groupID, userID string) error

	// CreateExpense persists an expense and its split lines.
	CreateExpense(ctx context.Context, exp *models.ExpenseRecord) error

	// GetExpense retrieves an expense by ID, deleted or not.
	GetExpense(ctx context.Context, expenseID string) (*models.ExpenseRecord, error)

	// UpdateExpense replaces an expense and its split lines.
	UpdateExpense(ctx context.Context, exp *models.ExpenseRecord) error

	// SoftDeleteExpense marks an expense deleted at the given Unix time.
	SoftDeleteExpense(ctx context.Context, expenseID string, deletedAt int64) error

	// ListExpensesByGroup retrieves all non-deleted expenses for a group.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.ExpenseRecord, error)

	// CreateSettlement persists a settlement.
	CreateSettlement(ctx context.Context, stl *models.SettlementRecord) error

	// GetSettlement retrieves a settlement by ID, deleted or not.
	GetSettlement(ctx context.Context, settlementID string) (*models.SettlementRecord, error)

	// UpdateSettlement replaces a settlement.
	UpdateSettlement(ctx context.Context, stl *models.SettlementRecord) error

	// SoftDeleteSettlement marks a settlement deleted at the given Unix time.
	SoftDeleteSettlement(ctx context.Context, settlementID string, deletedAt int64) error

	// ListSettlementsByGroup retrieves all non-deleted settlements for a group.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.SettlementRecord, error)

	// Close releases any resources held by the store.
	Close() error
}
