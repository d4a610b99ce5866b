package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kmehta/divvy/internal/ledger"
	"github.com/kmehta/divvy/internal/storage"
)

// BalanceService exposes read-only views of the ledger: per-counterparty
// balances, net positions, and the simplified transfer plan.
type BalanceService struct {
	store  storage.Store
	ledger *ledger.Ledger
}

// NewBalanceService creates a BalanceService on the given store and ledger.
func NewBalanceService(store storage.Store, led *ledger.Ledger) *BalanceService {
	return &BalanceService{store: store, ledger: led}
}

// Balances returns the user's non-zero balance rows, sorted by counterparty
// id. Positive means the counterparty owes the user.
func (s *BalanceService) Balances(ctx context.Context, userID string) ([]ledger.Balance, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	all := s.ledger.BalancesFor(userID)
	out := make([]ledger.Balance, 0, len(all))
	for _, b := range all {
		if !b.Amount.IsZero() {
			out = append(out, b)
		}
	}
	return out, nil
}

// NetBalance returns the sum of the user's balances across all
// counterparties.
func (s *BalanceService) NetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return decimal.Zero, err
	}
	return s.ledger.NetPosition(userID), nil
}

// SimplifyDebts returns the minimal transfer plan that would zero every net
// position in the ledger. It does not execute anything.
func (s *BalanceService) SimplifyDebts(ctx context.Context) ([]ledger.Transfer, error) {
	return s.ledger.SimplifyDebts(), nil
}
