package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmehta/divvy/internal/models"
)

func TestExpenseService_CreateEqualSplit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")

	exp, err := env.expenses.Create(ctx, CreateExpenseParams{
		Description:    "Dinner",
		Amount:         dec("90"),
		PaidBy:         alice.ID,
		ParticipantIDs: []string{alice.ID, bob.ID, carol.ID},
		SplitType:      models.SplitEqual,
	})
	require.NoError(t, err)
	require.NotNil(t, exp)
	assert.Equal(t, models.ExpenseActive, exp.Status)
	assert.Equal(t, models.CategoryOther, exp.Category)

	// Each non-payer owes the payer a third.
	assert.True(t, env.ledger.BalanceBetween(alice.ID, bob.ID).Equal(dec("30")))
	assert.True(t, env.ledger.BalanceBetween(alice.ID, carol.ID).Equal(dec("30")))
	assert.True(t, env.ledger.BalanceBetween(bob.ID, alice.ID).Equal(dec("-30")))
	assert.True(t, env.ledger.BalanceBetween(bob.ID, carol.ID).IsZero())

	// The persisted balance rows mirror the ledger.
	entries, err := env.store.ListBalances(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestExpenseService_CreateExactSplitMustReconcile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	_, err := env.expenses.Create(ctx, CreateExpenseParams{
		Description:    "Groceries",
		Amount:         dec("100"),
		PaidBy:         alice.ID,
		ParticipantIDs: []string{alice.ID, bob.ID},
		SplitType:      models.SplitExact,
		SplitParams: map[string]decimal.Decimal{
			alice.ID: dec("50"),
			bob.ID:   dec("49"),
		},
	})
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))

	// A failed create leaves the ledger untouched.
	assert.True(t, env.ledger.BalanceBetween(alice.ID, bob.ID).IsZero())
}

func TestExpenseService_CreateUnknownPayer(t *testing.T) {
	env := newTestEnv(t)

	bob := env.createUser(t, "bob")

	_, err := env.expenses.Create(context.Background(), CreateExpenseParams{
		Description:    "Lunch",
		Amount:         dec("20"),
		PaidBy:         "nonexistent-id",
		ParticipantIDs: []string{bob.ID},
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestExpenseService_GroupMembershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	outsider := env.createUser(t, "outsider")

	group, err := env.groups.Create(ctx, CreateGroupParams{Name: "Flat", CreatorID: alice.ID})
	require.NoError(t, err)
	require.NoError(t, env.groups.AddMember(ctx, group.ID, alice.ID, "bob@example.com"))

	_, err = env.expenses.Create(ctx, CreateExpenseParams{
		Description:    "Rent",
		Amount:         dec("1000"),
		PaidBy:         alice.ID,
		ParticipantIDs: []string{bob.ID, outsider.ID},
		GroupID:        group.ID,
	})
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))

	// Group default split type applies when none is given.
	exp, err := env.expenses.Create(ctx, CreateExpenseParams{
		Description:    "Rent",
		Amount:         dec("1000"),
		PaidBy:         alice.ID,
		ParticipantIDs: []string{alice.ID, bob.ID},
		GroupID:        group.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SplitEqual, exp.SplitType)
	assert.Equal(t, group.ID, exp.GroupID)
}

func TestExpenseService_DeleteReversesLedger(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	exp, err := env.expenses.Create(ctx, CreateExpenseParams{
		Description:    "Taxi",
		Amount:         dec("40"),
		PaidBy:         alice.ID,
		ParticipantIDs: []string{alice.ID, bob.ID},
	})
	require.NoError(t, err)
	require.True(t, env.ledger.BalanceBetween(alice.ID, bob.ID).Equal(dec("20")))

	require.NoError(t, env.expenses.Delete(ctx, exp.ID, bob.ID))

	assert.True(t, env.ledger.BalanceBetween(alice.ID, bob.ID).IsZero())

	got, err := env.expenses.Get(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExpenseDeleted, got.Status)

	// Deleting twice is a lifecycle violation.
	err = env.expenses.Delete(ctx, exp.ID, bob.ID)
	assert.ErrorIs(t, err, models.ErrInvalidState)
}

func TestExpenseService_DeleteRequiresParticipant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	outsider := env.createUser(t, "outsider")

	exp, err := env.expenses.Create(ctx, CreateExpenseParams{
		Description:    "Coffee",
		Amount:         dec("10"),
		PaidBy:         alice.ID,
		ParticipantIDs: []string{alice.ID, bob.ID},
	})
	require.NoError(t, err)

	err = env.expenses.Delete(ctx, exp.ID, outsider.ID)
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))

	// Unchanged by the rejected delete.
	got, err := env.expenses.Get(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExpenseActive, got.Status)
	assert.True(t, env.ledger.BalanceBetween(alice.ID, bob.ID).Equal(dec("5")))
}

func TestExpenseService_UpdateRecomputesSplits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	exp, err := env.expenses.Create(ctx, CreateExpenseParams{
		Description:    "Hotel",
		Amount:         dec("100"),
		PaidBy:         alice.ID,
		ParticipantIDs: []string{alice.ID, bob.ID},
	})
	require.NoError(t, err)
	require.True(t, env.ledger.BalanceBetween(alice.ID, bob.ID).Equal(dec("50")))

	newAmount := dec("200")
	updated, err := env.expenses.Update(ctx, UpdateExpenseParams{
		ExpenseID: exp.ID,
		Amount:    &newAmount,
	})
	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(dec("200")))

	// Old effect reversed, new one applied.
	assert.True(t, env.ledger.BalanceBetween(alice.ID, bob.ID).Equal(dec("100")))

	// A failed recompute is a no-op on ledger and record.
	badType := models.SplitExact
	_, err = env.expenses.Update(ctx, UpdateExpenseParams{
		ExpenseID: exp.ID,
		SplitType: &badType,
		SplitParams: map[string]decimal.Decimal{
			alice.ID: dec("10"),
			bob.ID:   dec("10"),
		},
	})
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))
	assert.True(t, env.ledger.BalanceBetween(alice.ID, bob.ID).Equal(dec("100")))
}

func TestExpenseService_UpdateTerminalExpenseFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	exp, err := env.expenses.Create(ctx, CreateExpenseParams{
		Description:    "Snacks",
		Amount:         dec("12"),
		PaidBy:         alice.ID,
		ParticipantIDs: []string{alice.ID, bob.ID},
	})
	require.NoError(t, err)
	require.NoError(t, env.expenses.Delete(ctx, exp.ID, alice.ID))

	desc := "changed"
	_, err = env.expenses.Update(ctx, UpdateExpenseParams{ExpenseID: exp.ID, Description: &desc})
	assert.ErrorIs(t, err, models.ErrInvalidState)
}

func TestBalanceService_Views(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")

	_, err := env.expenses.Create(ctx, CreateExpenseParams{
		Description:    "Dinner",
		Amount:         dec("90"),
		PaidBy:         alice.ID,
		ParticipantIDs: []string{alice.ID, bob.ID, carol.ID},
	})
	require.NoError(t, err)

	balances, err := env.balances.Balances(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, balances, 2)

	net, err := env.balances.NetBalance(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, net.Equal(dec("60")))

	transfers, err := env.balances.SimplifyDebts(ctx)
	require.NoError(t, err)
	require.Len(t, transfers, 2)
	for _, tr := range transfers {
		assert.Equal(t, alice.ID, tr.To)
		assert.True(t, tr.Amount.Equal(dec("30")))
	}

	_, err = env.balances.Balances(ctx, "nonexistent-id")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}
