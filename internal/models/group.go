package models

import (
	"time"

	"github.com/google/uuid"
)

// Group represents a reusable participant list that can own expenses.
// Groups are pure bookkeeping: balances are always between individual users,
// never between a user and a group.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name (e.g. "Roommates", "Goa Trip").
	Name string

	// Description is an optional free-text description.
	Description string

	// CreatedBy is the user id of the creator, who is always a member.
	CreatedBy string

	// Members is the set of member user ids.
	Members map[string]struct{}

	// Expenses is the set of expense ids recorded against this group.
	Expenses map[string]struct{}

	// DefaultSplitType is applied when an expense omits a split type.
	DefaultSplitType SplitType

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// NewGroup creates a group with the creator as its first member.
func NewGroup(name, description, createdBy string) *Group {
	g := &Group{
		ID:               uuid.New().String(),
		Name:             name,
		Description:      description,
		CreatedBy:        createdBy,
		Members:          make(map[string]struct{}),
		Expenses:         make(map[string]struct{}),
		DefaultSplitType: SplitEqual,
		CreatedAt:        time.Now().Unix(),
	}
	g.Members[createdBy] = struct{}{}
	return g
}

// HasMember reports whether userID is a member of the group.
func (g *Group) HasMember(userID string) bool {
	_, ok := g.Members[userID]
	return ok
}

// AddMember adds a user to the group.
func (g *Group) AddMember(userID string) {
	g.Members[userID] = struct{}{}
}

// RemoveMember drops a user from the group.
func (g *Group) RemoveMember(userID string) {
	delete(g.Members, userID)
}

// AddExpense records an expense id against the group.
func (g *Group) AddExpense(expenseID string) {
	g.Expenses[expenseID] = struct{}{}
}

// RemoveExpense drops an expense id from the group's bookkeeping.
func (g *Group) RemoveExpense(expenseID string) {
	delete(g.Expenses, expenseID)
}
