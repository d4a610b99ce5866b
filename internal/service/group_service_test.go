package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmehta/divvy/internal/models"
)

func TestGroupService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")

	group, err := env.groups.Create(ctx, CreateGroupParams{
		Name:      "Flat",
		CreatorID: alice.ID,
	})
	require.NoError(t, err)
	assert.True(t, group.HasMember(alice.ID))
	assert.Equal(t, models.SplitEqual, group.DefaultSplitType)

	// Only members can invite.
	err = env.groups.AddMember(ctx, group.ID, bob.ID, "carol@example.com")
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))

	require.NoError(t, env.groups.AddMember(ctx, group.ID, alice.ID, "bob@example.com"))
	require.NoError(t, env.groups.AddMember(ctx, group.ID, bob.ID, "carol@example.com"))

	groups, err := env.groups.ListByUser(ctx, carol.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, group.ID, groups[0].ID)

	// Only the creator removes members, and never themselves.
	err = env.groups.RemoveMember(ctx, group.ID, bob.ID, carol.ID)
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))
	err = env.groups.RemoveMember(ctx, group.ID, alice.ID, alice.ID)
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))
	require.NoError(t, env.groups.RemoveMember(ctx, group.ID, alice.ID, carol.ID))

	// Members may leave; the creator may not.
	require.NoError(t, env.groups.Leave(ctx, group.ID, bob.ID))
	assert.ErrorIs(t, env.groups.Leave(ctx, group.ID, alice.ID), models.ErrInvalidState)

	// Only the creator deletes the group.
	err = env.groups.Delete(ctx, group.ID, bob.ID)
	require.Error(t, err)
	require.NoError(t, env.groups.Delete(ctx, group.ID, alice.ID))
	_, err = env.groups.Get(ctx, group.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGroupService_ExpenseSurvivesGroupDeletion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	group, err := env.groups.Create(ctx, CreateGroupParams{Name: "Trip", CreatorID: alice.ID})
	require.NoError(t, err)
	require.NoError(t, env.groups.AddMember(ctx, group.ID, alice.ID, "bob@example.com"))

	exp, err := env.expenses.Create(ctx, CreateExpenseParams{
		Description:    "Fuel",
		Amount:         dec("60"),
		PaidBy:         alice.ID,
		ParticipantIDs: []string{alice.ID, bob.ID},
		GroupID:        group.ID,
	})
	require.NoError(t, err)

	require.NoError(t, env.groups.Delete(ctx, group.ID, alice.ID))

	// The expense and its ledger effect are untouched.
	got, err := env.expenses.Get(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExpenseActive, got.Status)
	assert.True(t, env.ledger.BalanceBetween(alice.ID, bob.ID).Equal(dec("30")))
}
