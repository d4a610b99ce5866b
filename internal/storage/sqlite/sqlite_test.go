package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kmehta/divvy/internal/models"
	"github.com/kmehta/divvy/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "divvy-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestSQLiteStore_Users(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := models.NewUser("Alice", "alice@example.com", "hash-a")
	bob := models.NewUser("Bob", "bob@example.com", "hash-b")

	t.Run("CreateUser and GetUser round-trip", func(t *testing.T) {
		if err := store.CreateUser(ctx, alice); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if err := store.CreateUser(ctx, bob); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		got, err := store.GetUser(ctx, alice.ID)
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if got.Name != "Alice" {
			t.Errorf("Name mismatch: got %s, want Alice", got.Name)
		}
		if got.Email != "alice@example.com" {
			t.Errorf("Email mismatch: got %s", got.Email)
		}
		if got.PasswordHash != "hash-a" {
			t.Errorf("PasswordHash mismatch: got %s", got.PasswordHash)
		}
	})

	t.Run("GetUserByEmail", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "bob@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got.ID != bob.ID {
			t.Errorf("ID mismatch: got %s, want %s", got.ID, bob.ID)
		}
	})

	t.Run("GetUser returns ErrNotFound for unknown id", func(t *testing.T) {
		_, err := store.GetUser(ctx, "nonexistent-id")
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("AddFriend is reflected in loaded user", func(t *testing.T) {
		if err := store.AddFriend(ctx, alice.ID, bob.ID); err != nil {
			t.Fatalf("AddFriend failed: %v", err)
		}

		got, err := store.GetUser(ctx, alice.ID)
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if _, ok := got.Friends[bob.ID]; !ok {
			t.Error("Expected bob in alice's friend set")
		}

		// Idempotent
		if err := store.AddFriend(ctx, alice.ID, bob.ID); err != nil {
			t.Fatalf("AddFriend (repeat) failed: %v", err)
		}
	})

	t.Run("RemoveFriend", func(t *testing.T) {
		if err := store.RemoveFriend(ctx, alice.ID, bob.ID); err != nil {
			t.Fatalf("RemoveFriend failed: %v", err)
		}

		got, err := store.GetUser(ctx, alice.ID)
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if _, ok := got.Friends[bob.ID]; ok {
			t.Error("Expected bob removed from alice's friend set")
		}
	})
}

func TestSQLiteStore_Groups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := models.NewUser("Alice", "alice@example.com", "h")
	bob := models.NewUser("Bob", "bob@example.com", "h")
	for _, u := range []*models.User{alice, bob} {
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	group := models.NewGroup("Trip", "Summer trip", alice.ID)

	t.Run("CreateGroup and GetGroup round-trip", func(t *testing.T) {
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.Name != "Trip" {
			t.Errorf("Name mismatch: got %s", got.Name)
		}
		if got.CreatedBy != alice.ID {
			t.Errorf("CreatedBy mismatch: got %s", got.CreatedBy)
		}
		if !got.HasMember(alice.ID) {
			t.Error("Expected creator to be a member")
		}
	})

	t.Run("AddGroupMember and ListGroupsByMember", func(t *testing.T) {
		if err := store.AddGroupMember(ctx, group.ID, bob.ID); err != nil {
			t.Fatalf("AddGroupMember failed: %v", err)
		}

		groups, err := store.ListGroupsByMember(ctx, bob.ID)
		if err != nil {
			t.Fatalf("ListGroupsByMember failed: %v", err)
		}
		if len(groups) != 1 || groups[0].ID != group.ID {
			t.Errorf("Expected bob to be in exactly one group, got %d", len(groups))
		}
	})

	t.Run("RemoveGroupMember", func(t *testing.T) {
		if err := store.RemoveGroupMember(ctx, group.ID, bob.ID); err != nil {
			t.Fatalf("RemoveGroupMember failed: %v", err)
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.HasMember(bob.ID) {
			t.Error("Expected bob removed from group")
		}
	})

	t.Run("DeleteGroup then GetGroup returns ErrNotFound", func(t *testing.T) {
		if err := store.DeleteGroup(ctx, group.ID); err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}
		if _, err := store.GetGroup(ctx, group.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
		if err := store.DeleteGroup(ctx, group.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on repeat delete, got %v", err)
		}
	})
}

func TestSQLiteStore_Expenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := models.NewUser("Alice", "alice@example.com", "h")
	bob := models.NewUser("Bob", "bob@example.com", "h")
	for _, u := range []*models.User{alice, bob} {
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	exp := models.NewExpense(
		"Dinner",
		decimal.NewFromInt(90),
		alice.ID,
		[]string{alice.ID, bob.ID},
		models.SplitEqual,
		models.CategoryFood,
	)
	exp.Splits = map[string]decimal.Decimal{
		alice.ID: decimal.NewFromInt(45),
		bob.ID:   decimal.NewFromInt(-45),
	}

	t.Run("CreateExpense and GetExpense round-trip", func(t *testing.T) {
		if err := store.CreateExpense(ctx, exp); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		got, err := store.GetExpense(ctx, exp.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.Description != "Dinner" {
			t.Errorf("Description mismatch: got %s", got.Description)
		}
		if !got.Amount.Equal(decimal.NewFromInt(90)) {
			t.Errorf("Amount mismatch: got %s", got.Amount)
		}
		if got.Status != models.ExpenseActive {
			t.Errorf("Status mismatch: got %s", got.Status)
		}
		if len(got.Participants) != 2 {
			t.Errorf("Expected 2 participants, got %d", len(got.Participants))
		}
		if !got.Splits[bob.ID].Equal(decimal.NewFromInt(-45)) {
			t.Errorf("Bob's split mismatch: got %s", got.Splits[bob.ID])
		}
	})

	t.Run("UpdateExpense persists status change", func(t *testing.T) {
		if err := exp.MarkDeleted(); err != nil {
			t.Fatalf("MarkDeleted failed: %v", err)
		}
		if err := store.UpdateExpense(ctx, exp); err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}

		got, err := store.GetExpense(ctx, exp.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.Status != models.ExpenseDeleted {
			t.Errorf("Expected DELETED, got %s", got.Status)
		}
	})

	t.Run("ListExpensesByUser includes participant expenses", func(t *testing.T) {
		expenses, err := store.ListExpensesByUser(ctx, bob.ID)
		if err != nil {
			t.Fatalf("ListExpensesByUser failed: %v", err)
		}
		if len(expenses) != 1 || expenses[0].ID != exp.ID {
			t.Errorf("Expected bob's list to contain the expense, got %d entries", len(expenses))
		}
	})

	t.Run("GetExpense returns ErrNotFound for unknown id", func(t *testing.T) {
		if _, err := store.GetExpense(ctx, "nonexistent-id"); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestSQLiteStore_Settlements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := models.NewUser("Alice", "alice@example.com", "h")
	bob := models.NewUser("Bob", "bob@example.com", "h")
	for _, u := range []*models.User{alice, bob} {
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	st := models.NewSettlement(bob.ID, alice.ID, decimal.NewFromInt(30), models.MethodUPI, "dinner debt")

	t.Run("CreateSettlement and GetSettlement round-trip", func(t *testing.T) {
		if err := store.CreateSettlement(ctx, st); err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}

		got, err := store.GetSettlement(ctx, st.ID)
		if err != nil {
			t.Fatalf("GetSettlement failed: %v", err)
		}
		if got.FromUserID != bob.ID || got.ToUserID != alice.ID {
			t.Errorf("Party mismatch: got %s -> %s", got.FromUserID, got.ToUserID)
		}
		if !got.Amount.Equal(decimal.NewFromInt(30)) {
			t.Errorf("Amount mismatch: got %s", got.Amount)
		}
		if got.Status != models.SettlementPending {
			t.Errorf("Expected PENDING, got %s", got.Status)
		}
	})

	t.Run("UpdateSettlement persists completion", func(t *testing.T) {
		if err := st.MarkCompleted(models.MethodUPI); err != nil {
			t.Fatalf("MarkCompleted failed: %v", err)
		}
		if err := store.UpdateSettlement(ctx, st); err != nil {
			t.Fatalf("UpdateSettlement failed: %v", err)
		}

		got, err := store.GetSettlement(ctx, st.ID)
		if err != nil {
			t.Fatalf("GetSettlement failed: %v", err)
		}
		if got.Status != models.SettlementCompleted {
			t.Errorf("Expected COMPLETED, got %s", got.Status)
		}
		if got.CompletedAt == 0 {
			t.Error("Expected CompletedAt to be set")
		}
	})

	t.Run("ListSettlementsByUser sees both parties", func(t *testing.T) {
		for _, id := range []string{alice.ID, bob.ID} {
			settlements, err := store.ListSettlementsByUser(ctx, id)
			if err != nil {
				t.Fatalf("ListSettlementsByUser failed: %v", err)
			}
			if len(settlements) != 1 {
				t.Errorf("Expected 1 settlement for %s, got %d", id, len(settlements))
			}
		}
	})
}

func TestSQLiteStore_Balances(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := models.NewUser("A", "a@example.com", "h")
	b := models.NewUser("B", "b@example.com", "h")
	for _, u := range []*models.User{a, b} {
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	entries := []storage.BalanceEntry{
		{UserID: a.ID, CounterpartyID: b.ID, Amount: decimal.NewFromInt(30)},
		{UserID: b.ID, CounterpartyID: a.ID, Amount: decimal.NewFromInt(-30)},
	}

	t.Run("SaveBalances and ListBalances round-trip", func(t *testing.T) {
		if err := store.SaveBalances(ctx, entries); err != nil {
			t.Fatalf("SaveBalances failed: %v", err)
		}

		got, err := store.ListBalances(ctx)
		if err != nil {
			t.Fatalf("ListBalances failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("Expected 2 rows, got %d", len(got))
		}
	})

	t.Run("SaveBalances upserts existing pairs", func(t *testing.T) {
		updated := []storage.BalanceEntry{
			{UserID: a.ID, CounterpartyID: b.ID, Amount: decimal.NewFromInt(10)},
			{UserID: b.ID, CounterpartyID: a.ID, Amount: decimal.NewFromInt(-10)},
		}
		if err := store.SaveBalances(ctx, updated); err != nil {
			t.Fatalf("SaveBalances failed: %v", err)
		}

		got, err := store.ListBalances(ctx)
		if err != nil {
			t.Fatalf("ListBalances failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("Expected 2 rows after upsert, got %d", len(got))
		}
		for _, e := range got {
			if e.UserID == a.ID && !e.Amount.Equal(decimal.NewFromInt(10)) {
				t.Errorf("Expected a->b amount 10, got %s", e.Amount)
			}
		}
	})
}
