package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/kmehta/divvy/internal/ledger"
	"github.com/kmehta/divvy/internal/models"
	"github.com/kmehta/divvy/internal/storage"
	"github.com/kmehta/divvy/internal/storage/sqlite"
)

type testEnv struct {
	store       storage.Store
	ledger      *ledger.Ledger
	expenses    *ExpenseService
	settlements *SettlementService
	balances    *BalanceService
	groups      *GroupService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	led := ledger.New()
	return &testEnv{
		store:       store,
		ledger:      led,
		expenses:    NewExpenseService(store, led),
		settlements: NewSettlementService(store, led),
		balances:    NewBalanceService(store, led),
		groups:      NewGroupService(store),
	}
}

func (e *testEnv) createUser(t *testing.T, name string) *models.User {
	t.Helper()

	user := models.NewUser(name, name+"@example.com", "hash")
	require.NoError(t, e.store.CreateUser(context.Background(), user))
	return user
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
