package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementStatus is the lifecycle state of a settlement.
//
// Transitions:
//
//	PENDING → COMPLETED | CANCELLED
//
// Both COMPLETED and CANCELLED are terminal. Only the transition to COMPLETED
// has a ledger effect, and it happens exactly once.
type SettlementStatus string

const (
	SettlementPending   SettlementStatus = "PENDING"
	SettlementCompleted SettlementStatus = "COMPLETED"
	SettlementCancelled SettlementStatus = "CANCELLED"
)

// SettlementMethod records how a settlement was (or will be) paid.
type SettlementMethod string

const (
	MethodCash         SettlementMethod = "CASH"
	MethodBankTransfer SettlementMethod = "BANK_TRANSFER"
	MethodUPI          SettlementMethod = "UPI"
	MethodPayPal       SettlementMethod = "PAYPAL"
	MethodOther        SettlementMethod = "OTHER"
)

// Settlement represents a recorded transfer intended to reduce one directed
// debt: FromUserID owes ToUserID before the settlement.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// FromUserID is the debtor proposing to pay.
	FromUserID string

	// ToUserID is the creditor being paid.
	ToUserID string

	// Amount is the positive settlement amount, at most the debt magnitude
	// at creation time.
	Amount decimal.Decimal

	// Status is the lifecycle state.
	Status SettlementStatus

	// Method records the payment method, set at creation or completion.
	Method SettlementMethod

	// Notes is optional free text.
	Notes string

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64

	// CompletedAt is the Unix timestamp of completion, zero until then.
	CompletedAt int64
}

// NewSettlement creates a PENDING settlement with a fresh id.
func NewSettlement(fromUserID, toUserID string, amount decimal.Decimal, method SettlementMethod, notes string) *Settlement {
	now := time.Now().Unix()
	return &Settlement{
		ID:         uuid.New().String(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Amount:     amount,
		Status:     SettlementPending,
		Method:     method,
		Notes:      notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// MarkCompleted transitions PENDING → COMPLETED and records the method and
// completion time. The ledger transfer is the caller's responsibility and
// must happen in the same logical operation.
func (s *Settlement) MarkCompleted(method SettlementMethod) error {
	if s.Status != SettlementPending {
		return fmt.Errorf("settlement %s is %s: %w", s.ID, s.Status, ErrInvalidState)
	}
	if method == "" {
		method = MethodCash
	}
	now := time.Now().Unix()
	s.Status = SettlementCompleted
	s.Method = method
	s.CompletedAt = now
	s.UpdatedAt = now
	return nil
}

// MarkCancelled transitions PENDING → CANCELLED with no ledger effect.
// Repeated cancellation fails.
func (s *Settlement) MarkCancelled() error {
	if s.Status != SettlementPending {
		return fmt.Errorf("settlement %s is %s: %w", s.ID, s.Status, ErrInvalidState)
	}
	s.Status = SettlementCancelled
	s.UpdatedAt = time.Now().Unix()
	return nil
}
