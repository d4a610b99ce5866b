package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kmehta/divvy/internal/models"
	"github.com/kmehta/divvy/internal/storage"
)

// GroupService manages shared-expense groups and their membership.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a GroupService on the given store.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroupParams carries the input for Create.
type CreateGroupParams struct {
	Name             string
	Description      string
	CreatorID        string
	DefaultSplitType models.SplitType
}

// Create creates a group with the creator as its first member.
func (s *GroupService) Create(ctx context.Context, params CreateGroupParams) (*models.Group, error) {
	if params.Name == "" {
		return nil, models.NewValidationError("name", "required")
	}
	if _, err := s.store.GetUser(ctx, params.CreatorID); err != nil {
		return nil, err
	}

	group := models.NewGroup(params.Name, params.Description, params.CreatorID)
	if params.DefaultSplitType != "" {
		group.DefaultSplitType = params.DefaultSplitType
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("Create group: store write failed", "error", err)
		return nil, err
	}

	slog.Info("group created", "group_id", group.ID, "creator_id", params.CreatorID)
	return group, nil
}

// Get retrieves a group by id.
func (s *GroupService) Get(ctx context.Context, groupID string) (*models.Group, error) {
	return s.store.GetGroup(ctx, groupID)
}

// ListByUser retrieves the groups the user belongs to.
func (s *GroupService) ListByUser(ctx context.Context, userID string) ([]*models.Group, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListGroupsByMember(ctx, userID)
}

// AddMember adds the owner of memberEmail to the group. The requester must
// already be a member.
func (s *GroupService) AddMember(ctx context.Context, groupID, requesterID, memberEmail string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.HasMember(requesterID) {
		return models.NewValidationError("user_id", "requester is not a group member")
	}

	member, err := s.store.GetUserByEmail(ctx, memberEmail)
	if err != nil {
		return err
	}
	if group.HasMember(member.ID) {
		return models.NewValidationError("member_email", "already a member")
	}

	return s.store.AddGroupMember(ctx, groupID, member.ID)
}

// RemoveMember removes a member from the group. Only the creator may remove
// other members, and the creator cannot be removed.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, requesterID, memberID string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if requesterID != group.CreatedBy {
		return models.NewValidationError("user_id", "only the group creator can remove members")
	}
	if memberID == group.CreatedBy {
		return models.NewValidationError("member_id", "the creator cannot be removed")
	}
	if !group.HasMember(memberID) {
		return models.NewValidationError("member_id", "not a group member")
	}

	return s.store.RemoveGroupMember(ctx, groupID, memberID)
}

// Leave removes the requesting user from the group. The creator cannot
// leave; they must delete the group instead.
func (s *GroupService) Leave(ctx context.Context, groupID, userID string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if userID == group.CreatedBy {
		return fmt.Errorf("creator cannot leave group %s: %w", groupID, models.ErrInvalidState)
	}
	if !group.HasMember(userID) {
		return models.NewValidationError("user_id", "not a group member")
	}

	return s.store.RemoveGroupMember(ctx, groupID, userID)
}

// Delete removes the group. Only the creator may delete it. Expenses that
// referenced the group survive as ungrouped expenses.
func (s *GroupService) Delete(ctx context.Context, groupID, requesterID string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if requesterID != group.CreatedBy {
		return models.NewValidationError("user_id", "only the group creator can delete the group")
	}

	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		return err
	}
	slog.Info("group deleted", "group_id", groupID)
	return nil
}
