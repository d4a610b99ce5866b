// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kmehta/divvy/internal/models"
)

// BalanceEntry is one directed half of a persisted balance pair.
type BalanceEntry struct {
	UserID         string
	CounterpartyID string
	Amount         decimal.Decimal
}

// Store defines the interface for entity storage. This abstraction keeps the
// service layer independent of the backend (SQLite here, anything else
// later). Persistence is supporting infrastructure: the ledger's correctness
// never depends on it, and balance rows exist only so the ledger can be
// rebuilt on startup.
type Store interface {
	// CreateUser persists a new user. Fails if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser retrieves a user by id, friend and group sets included.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// AddFriend records a one-directional friendship edge.
	AddFriend(ctx context.Context, userID, friendID string) error

	// RemoveFriend drops a one-directional friendship edge.
	RemoveFriend(ctx context.Context, userID, friendID string) error

	// CreateGroup persists a new group with its initial members.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by id, members and expense ids included.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// AddGroupMember adds a user to a group.
	AddGroupMember(ctx context.Context, groupID, userID string) error

	// RemoveGroupMember drops a user from a group.
	RemoveGroupMember(ctx context.Context, groupID, userID string) error

	// DeleteGroup removes a group; its expenses are detached, not deleted.
	DeleteGroup(ctx context.Context, groupID string) error

	// ListGroupsByMember retrieves all groups the user belongs to.
	ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error)

	// CreateExpense persists a new expense with participants and splits.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense by id.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// UpdateExpense rewrites an existing expense, participants and splits
	// included.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// ListExpensesByUser retrieves expenses the user participates in,
	// newest first.
	ListExpensesByUser(ctx context.Context, userID string) ([]*models.Expense, error)

	// ListExpensesByGroup retrieves a group's expenses, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// CreateSettlement persists a new settlement.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// GetSettlement retrieves a settlement by id.
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// UpdateSettlement rewrites an existing settlement.
	UpdateSettlement(ctx context.Context, settlement *models.Settlement) error

	// ListSettlementsByUser retrieves settlements the user is a party to,
	// newest first.
	ListSettlementsByUser(ctx context.Context, userID string) ([]*models.Settlement, error)

	// SaveBalances upserts directed balance rows.
	SaveBalances(ctx context.Context, entries []BalanceEntry) error

	// ListBalances retrieves every stored balance row.
	ListBalances(ctx context.Context) ([]BalanceEntry, error)

	// Close releases any resources held by the store.
	Close() error
}
