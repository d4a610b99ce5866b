package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kmehta/divvy/internal/models"
)

// CreateUser persists a new user to the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}

	var phone interface{}
	if user.Phone != "" {
		phone = user.Phone
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, phone, password_hash, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		user.ID, user.Name, user.Email, phone, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetUser retrieves a user by ID, including friend and group sets.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.getUser(ctx, "id = ?", userID)
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email = ?", email)
}

func (s *SQLiteStore) getUser(ctx context.Context, where string, arg string) (*models.User, error) {
	user := &models.User{
		Friends: make(map[string]struct{}),
		Groups:  make(map[string]struct{}),
	}
	var phone sql.NullString

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, phone, password_hash, created_at FROM users WHERE "+where,
		arg,
	).Scan(&user.ID, &user.Name, &user.Email, &phone, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", arg, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if phone.Valid {
		user.Phone = phone.String
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT friend_id FROM friendships WHERE user_id = ?", user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get friendships: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var friendID string
		if err := rows.Scan(&friendID); err != nil {
			return nil, fmt.Errorf("failed to scan friendship: %w", err)
		}
		user.Friends[friendID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friendships: %w", err)
	}

	groupRows, err := s.db.QueryContext(ctx,
		"SELECT group_id FROM group_members WHERE user_id = ?", user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group memberships: %w", err)
	}
	defer groupRows.Close()
	for groupRows.Next() {
		var groupID string
		if err := groupRows.Scan(&groupID); err != nil {
			return nil, fmt.Errorf("failed to scan group membership: %w", err)
		}
		user.Groups[groupID] = struct{}{}
	}
	if err := groupRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group memberships: %w", err)
	}

	return user, nil
}

// AddFriend records a one-directional friendship edge.
func (s *SQLiteStore) AddFriend(ctx context.Context, userID, friendID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO friendships (user_id, friend_id) VALUES (?, ?)",
		userID, friendID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert friendship: %w", err)
	}
	return nil
}

// RemoveFriend drops a one-directional friendship edge.
func (s *SQLiteStore) RemoveFriend(ctx context.Context, userID, friendID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM friendships WHERE user_id = ? AND friend_id = ?",
		userID, friendID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete friendship: %w", err)
	}
	return nil
}
