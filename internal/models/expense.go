package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SplitType selects the strategy used to divide an expense among its
// participants.
type SplitType string

const (
	// SplitEqual divides the amount evenly among all participants.
	SplitEqual SplitType = "EQUAL"
	// SplitExact uses caller-supplied per-participant amounts.
	SplitExact SplitType = "EXACT"
	// SplitPercentage uses caller-supplied per-participant percentages.
	SplitPercentage SplitType = "PERCENTAGE"
	// SplitShares uses caller-supplied per-participant weights.
	SplitShares SplitType = "SHARES"
)

// ExpenseCategory classifies an expense for reporting.
type ExpenseCategory string

const (
	CategoryFood          ExpenseCategory = "FOOD"
	CategoryRent          ExpenseCategory = "RENT"
	CategoryUtilities     ExpenseCategory = "UTILITIES"
	CategoryEntertainment ExpenseCategory = "ENTERTAINMENT"
	CategoryTravel        ExpenseCategory = "TRAVEL"
	CategoryShopping      ExpenseCategory = "SHOPPING"
	CategoryMedical       ExpenseCategory = "MEDICAL"
	CategoryEducation     ExpenseCategory = "EDUCATION"
	CategoryOther         ExpenseCategory = "OTHER"
)

// ExpenseStatus is the lifecycle state of an expense.
//
// Transitions:
//
//	ACTIVE → SETTLED | DELETED
//
// SETTLED and DELETED are terminal. A DELETED expense has had its ledger
// effects reversed but is retained for audit.
type ExpenseStatus string

const (
	ExpenseActive  ExpenseStatus = "ACTIVE"
	ExpenseSettled ExpenseStatus = "SETTLED"
	ExpenseDeleted ExpenseStatus = "DELETED"
)

// Expense represents one shared real-world cost.
//
// Splits maps each participant id to a signed share: the payer's entry is a
// credit (amount minus the payer's own consumed share), every other entry is
// a debit (negative). The map always sums to zero within money.Tolerance.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// Description is the human-readable label for the expense.
	Description string

	// Amount is the positive total cost.
	Amount decimal.Decimal

	// PaidBy is the user id of the single payer. The payer is always a
	// participant.
	PaidBy string

	// GroupID is the owning group, if any.
	GroupID string

	// Participants is the set of participating user ids, payer included.
	Participants map[string]struct{}

	// Splits maps participant id to signed share.
	Splits map[string]decimal.Decimal

	// Category classifies the expense.
	Category ExpenseCategory

	// Notes is optional free text.
	Notes string

	// ReceiptURL is an optional link to a stored receipt.
	ReceiptURL string

	// Status is the lifecycle state.
	Status ExpenseStatus

	// SplitType is the strategy the splits were computed with.
	SplitType SplitType

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// NewExpense creates an ACTIVE expense with a fresh id. The payer is inserted
// into the participant set if absent. Splits must be computed separately and
// assigned before the expense is applied to the ledger.
func NewExpense(description string, amount decimal.Decimal, paidBy string, participants []string, splitType SplitType, category ExpenseCategory) *Expense {
	now := time.Now().Unix()
	e := &Expense{
		ID:           uuid.New().String(),
		Description:  description,
		Amount:       amount,
		PaidBy:       paidBy,
		Participants: make(map[string]struct{}, len(participants)+1),
		Splits:       make(map[string]decimal.Decimal),
		Category:     category,
		Status:       ExpenseActive,
		SplitType:    splitType,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, p := range participants {
		e.Participants[p] = struct{}{}
	}
	e.Participants[paidBy] = struct{}{}
	return e
}

// HasParticipant reports whether userID participates in the expense.
func (e *Expense) HasParticipant(userID string) bool {
	_, ok := e.Participants[userID]
	return ok
}

// SplitFor returns the signed share for userID, zero if absent.
func (e *Expense) SplitFor(userID string) decimal.Decimal {
	return e.Splits[userID]
}

// ParticipantIDs returns the participant set as a slice, order unspecified.
func (e *Expense) ParticipantIDs() []string {
	ids := make([]string, 0, len(e.Participants))
	for id := range e.Participants {
		ids = append(ids, id)
	}
	return ids
}

// MarkSettled transitions ACTIVE → SETTLED.
func (e *Expense) MarkSettled() error {
	if e.Status != ExpenseActive {
		return fmt.Errorf("expense %s is %s: %w", e.ID, e.Status, ErrInvalidState)
	}
	e.Status = ExpenseSettled
	e.UpdatedAt = time.Now().Unix()
	return nil
}

// MarkDeleted transitions ACTIVE → DELETED. Deleting an already-deleted or
// settled expense fails.
func (e *Expense) MarkDeleted() error {
	if e.Status != ExpenseActive {
		return fmt.Errorf("expense %s is %s: %w", e.ID, e.Status, ErrInvalidState)
	}
	e.Status = ExpenseDeleted
	e.UpdatedAt = time.Now().Unix()
	return nil
}
