package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/kmehta/divvy/internal/auth"
	"github.com/kmehta/divvy/internal/models"
	"github.com/kmehta/divvy/internal/storage"
)

// UserService handles registration, login and the advisory friend graph.
type UserService struct {
	store storage.Store
	jwt   *auth.JWTManager
}

// NewUserService creates a UserService on the given store and token manager.
func NewUserService(store storage.Store, jwt *auth.JWTManager) *UserService {
	return &UserService{store: store, jwt: jwt}
}

// RegisterParams carries the input for Register.
type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// Register creates a new user account with a hashed password.
func (s *UserService) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	if params.Name == "" {
		return nil, models.NewValidationError("name", "required")
	}
	if params.Email == "" {
		return nil, models.NewValidationError("email", "required")
	}
	if err := auth.ValidatePassword(params.Password); err != nil {
		return nil, models.NewValidationError("password", err.Error())
	}

	if existing, err := s.store.GetUserByEmail(ctx, params.Email); err == nil && existing != nil {
		return nil, models.NewValidationError("email", "already registered")
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		slog.Error("Register: password hashing failed", "error", err)
		return nil, err
	}

	user := models.NewUser(params.Name, params.Email, hash)
	user.Phone = params.Phone

	if err := s.store.CreateUser(ctx, user); err != nil {
		slog.Error("Register: store write failed", "error", err)
		return nil, err
	}

	slog.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies credentials and returns the user with a session token.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", auth.ErrInvalidCredentials
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, "", err
	}

	token, err := s.jwt.Generate(user.ID, user.Email)
	if err != nil {
		slog.Error("Login: token generation failed", "user_id", user.ID, "error", err)
		return nil, "", err
	}
	return user, token, nil
}

// Get retrieves a user by id.
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	return s.store.GetUser(ctx, userID)
}

// AddFriend records an undirected friendship between the user and the owner
// of friendEmail.
func (s *UserService) AddFriend(ctx context.Context, userID, friendEmail string) error {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	friend, err := s.store.GetUserByEmail(ctx, friendEmail)
	if err != nil {
		return err
	}
	if friend.ID == user.ID {
		return models.NewValidationError("friend_email", "cannot add yourself as a friend")
	}

	if err := s.store.AddFriend(ctx, user.ID, friend.ID); err != nil {
		return err
	}
	return s.store.AddFriend(ctx, friend.ID, user.ID)
}

// RemoveFriend drops the undirected friendship between two users.
func (s *UserService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return err
	}
	if _, err := s.store.GetUser(ctx, friendID); err != nil {
		return err
	}

	if err := s.store.RemoveFriend(ctx, userID, friendID); err != nil {
		return err
	}
	return s.store.RemoveFriend(ctx, friendID, userID)
}

// Friends retrieves the user's friends, sorted by name.
func (s *UserService) Friends(ctx context.Context, userID string) ([]*models.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	friends := make([]*models.User, 0, len(user.Friends))
	for friendID := range user.Friends {
		friend, err := s.store.GetUser(ctx, friendID)
		if err != nil {
			return nil, err
		}
		friends = append(friends, friend)
	}
	sort.Slice(friends, func(i, j int) bool { return friends[i].Name < friends[j].Name })
	return friends, nil
}
