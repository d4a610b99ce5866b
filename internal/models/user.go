package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account.
//
// Friends are advisory only: they drive UI suggestions and have no bearing on
// ledger correctness. A user's pairwise balances live in the ledger package,
// never here.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Name is the display name of the user.
	Name string

	// Email is the user's email address (unique). Used for login.
	Email string

	// Phone is an optional contact number.
	Phone string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// Friends is the set of user ids this user has befriended (undirected).
	Friends map[string]struct{}

	// Groups is the set of group ids this user belongs to.
	Groups map[string]struct{}

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// NewUser creates a user with a fresh id and empty friend/group sets.
func NewUser(name, email, passwordHash string) *User {
	return &User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Friends:      make(map[string]struct{}),
		Groups:       make(map[string]struct{}),
		CreatedAt:    time.Now().Unix(),
	}
}

// AddFriend records an advisory friendship edge.
func (u *User) AddFriend(userID string) {
	if u.Friends == nil {
		u.Friends = make(map[string]struct{})
	}
	u.Friends[userID] = struct{}{}
}

// RemoveFriend drops an advisory friendship edge.
func (u *User) RemoveFriend(userID string) {
	delete(u.Friends, userID)
}

// AddGroup records group membership.
func (u *User) AddGroup(groupID string) {
	if u.Groups == nil {
		u.Groups = make(map[string]struct{})
	}
	u.Groups[groupID] = struct{}{}
}

// RemoveGroup drops group membership.
func (u *User) RemoveGroup(groupID string) {
	delete(u.Groups, groupID)
}
