package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/kmehta/divvy/internal/ledger"
	"github.com/kmehta/divvy/internal/models"
	"github.com/kmehta/divvy/internal/storage"
)

// SettlementService drives the settlement state machine:
// PENDING → COMPLETED (one ledger transfer) or CANCELLED (no effect).
type SettlementService struct {
	store  storage.Store
	ledger *ledger.Ledger
}

// NewSettlementService creates a SettlementService on the given store and ledger.
func NewSettlementService(store storage.Store, led *ledger.Ledger) *SettlementService {
	return &SettlementService{store: store, ledger: led}
}

// CreateSettlementParams carries the input for Create.
type CreateSettlementParams struct {
	FromUserID string
	ToUserID   string
	Amount     decimal.Decimal
	Method     models.SettlementMethod
	Notes      string
}

// Create records a PENDING settlement. It fails unless FromUserID currently
// owes ToUserID and the amount is within (0, debt].
func (s *SettlementService) Create(ctx context.Context, params CreateSettlementParams) (*models.Settlement, error) {
	if _, err := s.store.GetUser(ctx, params.FromUserID); err != nil {
		slog.Error("CreateSettlement: from-user lookup failed", "user_id", params.FromUserID, "error", err)
		return nil, err
	}
	if _, err := s.store.GetUser(ctx, params.ToUserID); err != nil {
		slog.Error("CreateSettlement: to-user lookup failed", "user_id", params.ToUserID, "error", err)
		return nil, err
	}
	if params.FromUserID == params.ToUserID {
		return nil, models.NewValidationError("to_user_id", "cannot settle with yourself")
	}

	debt := s.ledger.BalanceBetween(params.FromUserID, params.ToUserID)
	if debt.Sign() >= 0 {
		return nil, fmt.Errorf("no debt from %s to %s: %w", params.FromUserID, params.ToUserID, models.ErrInvalidState)
	}
	if params.Amount.Sign() <= 0 {
		return nil, models.NewValidationError("amount", "must be positive")
	}
	if params.Amount.GreaterThan(debt.Abs()) {
		return nil, models.NewValidationError("amount", fmt.Sprintf("must not exceed the debt of %s", debt.Abs()))
	}

	settlement := models.NewSettlement(params.FromUserID, params.ToUserID, params.Amount, params.Method, params.Notes)
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		slog.Error("CreateSettlement: store write failed", "error", err)
		return nil, err
	}

	slog.Info("settlement created",
		"settlement_id", settlement.ID,
		"from_user_id", settlement.FromUserID,
		"to_user_id", settlement.ToUserID,
		"amount", settlement.Amount,
	)
	return settlement, nil
}

// Complete transitions a PENDING settlement to COMPLETED and applies its
// ledger transfer exactly once. Completing a terminal settlement fails.
func (s *SettlementService) Complete(ctx context.Context, settlementID string, method models.SettlementMethod) error {
	settlement, err := s.store.GetSettlement(ctx, settlementID)
	if err != nil {
		slog.Error("CompleteSettlement: lookup failed", "settlement_id", settlementID, "error", err)
		return err
	}

	if err := settlement.MarkCompleted(method); err != nil {
		return err
	}

	if err := s.ledger.ApplyTransfer(settlement.FromUserID, settlement.ToUserID, settlement.Amount); err != nil {
		slog.Error("CompleteSettlement: ledger transfer failed", "settlement_id", settlementID, "error", err)
		return err
	}

	if err := s.store.UpdateSettlement(ctx, settlement); err != nil {
		// Undo the transfer so the failed call is a no-op.
		if rerr := s.ledger.ApplyTransfer(settlement.ToUserID, settlement.FromUserID, settlement.Amount); rerr != nil {
			slog.Error("CompleteSettlement: compensation failed", "settlement_id", settlementID, "error", rerr)
		}
		slog.Error("CompleteSettlement: store write failed", "settlement_id", settlementID, "error", err)
		return err
	}

	persistPairBalances(ctx, s.store, s.ledger, [][2]string{{settlement.FromUserID, settlement.ToUserID}})
	slog.Info("settlement completed", "settlement_id", settlementID, "method", settlement.Method)
	return nil
}

// Cancel transitions a PENDING settlement to CANCELLED with no ledger
// effect. Cancelling a terminal settlement fails.
func (s *SettlementService) Cancel(ctx context.Context, settlementID string) error {
	settlement, err := s.store.GetSettlement(ctx, settlementID)
	if err != nil {
		slog.Error("CancelSettlement: lookup failed", "settlement_id", settlementID, "error", err)
		return err
	}

	if err := settlement.MarkCancelled(); err != nil {
		return err
	}

	if err := s.store.UpdateSettlement(ctx, settlement); err != nil {
		slog.Error("CancelSettlement: store write failed", "settlement_id", settlementID, "error", err)
		return err
	}

	slog.Info("settlement cancelled", "settlement_id", settlementID)
	return nil
}

// Get retrieves a settlement by id.
func (s *SettlementService) Get(ctx context.Context, settlementID string) (*models.Settlement, error) {
	return s.store.GetSettlement(ctx, settlementID)
}

// ListByUser retrieves settlements the user is a party to, newest first.
func (s *SettlementService) ListByUser(ctx context.Context, userID string) ([]*models.Settlement, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListSettlementsByUser(ctx, userID)
}
