// Package service implements the operation surface of the ledger core:
// expense and settlement lifecycles, balance queries, debt simplification,
// and the user/group bookkeeping around them.
//
// Every operation takes explicit user ids; session resolution happens at the
// transport boundary, never here. The in-memory ledger is authoritative for
// balances. Entity writes go through the store; after a ledger mutation the
// touched balance pairs are persisted so the ledger can be rebuilt on
// startup, but a persistence failure never invalidates the operation.
package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/kmehta/divvy/internal/ledger"
	"github.com/kmehta/divvy/internal/storage"
)

// persistPairBalances writes both directed halves of each touched pair to the
// store, reading current values from the ledger. Best-effort: failures are
// logged, not returned, because the ledger remains correct without them.
func persistPairBalances(ctx context.Context, store storage.Store, led *ledger.Ledger, pairs [][2]string) {
	entries := make([]storage.BalanceEntry, 0, len(pairs)*2)
	for _, p := range pairs {
		entries = append(entries,
			storage.BalanceEntry{UserID: p[0], CounterpartyID: p[1], Amount: led.BalanceBetween(p[0], p[1])},
			storage.BalanceEntry{UserID: p[1], CounterpartyID: p[0], Amount: led.BalanceBetween(p[1], p[0])},
		)
	}
	if err := store.SaveBalances(ctx, entries); err != nil {
		slog.Warn("failed to persist balances", "pairs", len(pairs), "error", err)
	}
}

// expensePairs lists the (debtor, payer) pairs an expense's share map touches.
func expensePairs(payerID string, splits map[string]decimal.Decimal) [][2]string {
	var pairs [][2]string
	for id, share := range splits {
		if id == payerID || share.Sign() >= 0 {
			continue
		}
		pairs = append(pairs, [2]string{id, payerID})
	}
	return pairs
}
