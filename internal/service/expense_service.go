package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/kmehta/divvy/internal/ledger"
	"github.com/kmehta/divvy/internal/models"
	"github.com/kmehta/divvy/internal/split"
	"github.com/kmehta/divvy/internal/storage"
)

// ExpenseService drives the expense lifecycle: create computes splits and
// applies them to the ledger, delete reverses them, update does both.
type ExpenseService struct {
	store  storage.Store
	ledger *ledger.Ledger
}

// NewExpenseService creates an ExpenseService on the given store and ledger.
func NewExpenseService(store storage.Store, led *ledger.Ledger) *ExpenseService {
	return &ExpenseService{store: store, ledger: led}
}

// CreateExpenseParams carries the input for Create.
type CreateExpenseParams struct {
	Description    string
	Amount         decimal.Decimal
	PaidBy         string
	ParticipantIDs []string
	SplitType      models.SplitType
	SplitParams    map[string]decimal.Decimal
	Category       models.ExpenseCategory
	GroupID        string
	Notes          string
	ReceiptURL     string
}

// Create validates the input, computes splits, records the expense and
// applies it to the ledger. All validation happens before any mutation, so a
// failed call leaves every entity as it was.
func (s *ExpenseService) Create(ctx context.Context, params CreateExpenseParams) (*models.Expense, error) {
	if params.Category == "" {
		params.Category = models.CategoryOther
	}

	if _, err := s.store.GetUser(ctx, params.PaidBy); err != nil {
		slog.Error("CreateExpense: payer lookup failed", "payer_id", params.PaidBy, "error", err)
		return nil, err
	}
	for _, id := range params.ParticipantIDs {
		if _, err := s.store.GetUser(ctx, id); err != nil {
			slog.Error("CreateExpense: participant lookup failed", "participant_id", id, "error", err)
			return nil, err
		}
	}

	if params.GroupID != "" {
		group, err := s.store.GetGroup(ctx, params.GroupID)
		if err != nil {
			slog.Error("CreateExpense: group lookup failed", "group_id", params.GroupID, "error", err)
			return nil, err
		}
		if params.SplitType == "" {
			params.SplitType = group.DefaultSplitType
		}
		if !group.HasMember(params.PaidBy) {
			return nil, models.NewValidationError("payer_id", "payer is not a member of the group")
		}
		for _, id := range params.ParticipantIDs {
			if !group.HasMember(id) {
				return nil, models.NewValidationError("participant_ids", fmt.Sprintf("participant %s is not a member of the group", id))
			}
		}
	}
	if params.SplitType == "" {
		params.SplitType = models.SplitEqual
	}

	splits, err := split.Compute(params.Amount, params.PaidBy, params.ParticipantIDs, params.SplitType, params.SplitParams)
	if err != nil {
		slog.Error("CreateExpense: split computation failed", "error", err)
		return nil, err
	}

	expense := models.NewExpense(params.Description, params.Amount, params.PaidBy, params.ParticipantIDs, params.SplitType, params.Category)
	expense.GroupID = params.GroupID
	expense.Notes = params.Notes
	expense.ReceiptURL = params.ReceiptURL
	expense.Splits = splits

	if err := s.ledger.ApplyExpense(expense.PaidBy, expense.Splits); err != nil {
		slog.Error("CreateExpense: ledger apply failed", "error", err)
		return nil, err
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		// Undo the ledger effect so the failed call is a no-op.
		if rerr := s.ledger.ReverseExpense(expense.PaidBy, expense.Splits); rerr != nil {
			slog.Error("CreateExpense: compensation failed", "expense_id", expense.ID, "error", rerr)
		}
		slog.Error("CreateExpense: store write failed", "error", err)
		return nil, err
	}

	persistPairBalances(ctx, s.store, s.ledger, expensePairs(expense.PaidBy, expense.Splits))
	slog.Info("expense created",
		"expense_id", expense.ID,
		"payer_id", expense.PaidBy,
		"amount", expense.Amount,
		"split_type", expense.SplitType,
		"participants", len(expense.Participants),
	)
	return expense, nil
}

// Delete reverses an expense's ledger effects and marks it DELETED. The
// record itself is retained for audit. The requesting user must be the payer
// or a participant.
func (s *ExpenseService) Delete(ctx context.Context, expenseID, requestingUserID string) error {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		slog.Error("DeleteExpense: lookup failed", "expense_id", expenseID, "error", err)
		return err
	}

	if expense.PaidBy != requestingUserID && !expense.HasParticipant(requestingUserID) {
		return models.NewValidationError("requesting_user_id", "must be the payer or a participant to delete an expense")
	}

	if err := expense.MarkDeleted(); err != nil {
		return err
	}

	if err := s.ledger.ReverseExpense(expense.PaidBy, expense.Splits); err != nil {
		slog.Error("DeleteExpense: ledger reverse failed", "expense_id", expenseID, "error", err)
		return err
	}

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		if aerr := s.ledger.ApplyExpense(expense.PaidBy, expense.Splits); aerr != nil {
			slog.Error("DeleteExpense: compensation failed", "expense_id", expenseID, "error", aerr)
		}
		slog.Error("DeleteExpense: store write failed", "expense_id", expenseID, "error", err)
		return err
	}

	persistPairBalances(ctx, s.store, s.ledger, expensePairs(expense.PaidBy, expense.Splits))
	slog.Info("expense deleted", "expense_id", expenseID, "requested_by", requestingUserID)
	return nil
}

// UpdateExpenseParams carries the input for Update. Nil fields are unchanged.
type UpdateExpenseParams struct {
	ExpenseID      string
	Description    *string
	Amount         *decimal.Decimal
	Category       *models.ExpenseCategory
	ParticipantIDs []string
	SplitType      *models.SplitType
	SplitParams    map[string]decimal.Decimal
}

// Update recomputes the splits of an ACTIVE expense and applies the ledger
// delta as reverse-old, apply-new.
func (s *ExpenseService) Update(ctx context.Context, params UpdateExpenseParams) (*models.Expense, error) {
	expense, err := s.store.GetExpense(ctx, params.ExpenseID)
	if err != nil {
		slog.Error("UpdateExpense: lookup failed", "expense_id", params.ExpenseID, "error", err)
		return nil, err
	}
	if expense.Status != models.ExpenseActive {
		return nil, fmt.Errorf("expense %s is %s: %w", expense.ID, expense.Status, models.ErrInvalidState)
	}

	amount := expense.Amount
	if params.Amount != nil {
		amount = *params.Amount
	}
	participants := expense.ParticipantIDs()
	if params.ParticipantIDs != nil {
		participants = params.ParticipantIDs
	}
	splitType := expense.SplitType
	if params.SplitType != nil {
		splitType = *params.SplitType
	}

	// Recompute before touching anything so validation failures are no-ops.
	newSplits, err := split.Compute(amount, expense.PaidBy, participants, splitType, params.SplitParams)
	if err != nil {
		slog.Error("UpdateExpense: split computation failed", "expense_id", params.ExpenseID, "error", err)
		return nil, err
	}

	oldSplits := expense.Splits
	if err := s.ledger.ReverseExpense(expense.PaidBy, oldSplits); err != nil {
		slog.Error("UpdateExpense: ledger reverse failed", "expense_id", params.ExpenseID, "error", err)
		return nil, err
	}
	if err := s.ledger.ApplyExpense(expense.PaidBy, newSplits); err != nil {
		if aerr := s.ledger.ApplyExpense(expense.PaidBy, oldSplits); aerr != nil {
			slog.Error("UpdateExpense: compensation failed", "expense_id", params.ExpenseID, "error", aerr)
		}
		slog.Error("UpdateExpense: ledger apply failed", "expense_id", params.ExpenseID, "error", err)
		return nil, err
	}

	expense.Amount = amount
	expense.SplitType = splitType
	expense.Splits = newSplits
	expense.Participants = make(map[string]struct{}, len(participants)+1)
	for _, id := range participants {
		expense.Participants[id] = struct{}{}
	}
	expense.Participants[expense.PaidBy] = struct{}{}
	if params.Description != nil {
		expense.Description = *params.Description
	}
	if params.Category != nil {
		expense.Category = *params.Category
	}

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		if rerr := s.ledger.ReverseExpense(expense.PaidBy, newSplits); rerr == nil {
			if aerr := s.ledger.ApplyExpense(expense.PaidBy, oldSplits); aerr != nil {
				slog.Error("UpdateExpense: compensation failed", "expense_id", params.ExpenseID, "error", aerr)
			}
		}
		slog.Error("UpdateExpense: store write failed", "expense_id", params.ExpenseID, "error", err)
		return nil, err
	}

	pairs := append(expensePairs(expense.PaidBy, oldSplits), expensePairs(expense.PaidBy, newSplits)...)
	persistPairBalances(ctx, s.store, s.ledger, pairs)
	slog.Info("expense updated", "expense_id", expense.ID, "amount", expense.Amount, "split_type", expense.SplitType)
	return expense, nil
}

// Get retrieves an expense by id.
func (s *ExpenseService) Get(ctx context.Context, expenseID string) (*models.Expense, error) {
	return s.store.GetExpense(ctx, expenseID)
}

// ListByUser retrieves expenses the user participates in, newest first.
func (s *ExpenseService) ListByUser(ctx context.Context, userID string) ([]*models.Expense, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListExpensesByUser(ctx, userID)
}

// ListByGroup retrieves a group's expenses, newest first.
func (s *ExpenseService) ListByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListExpensesByGroup(ctx, groupID)
}
