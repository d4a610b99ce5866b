package expense

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/kmehta/divvy/internal/http/respond"
	"github.com/kmehta/divvy/internal/middleware"
	"github.com/kmehta/divvy/internal/models"
	"github.com/kmehta/divvy/internal/service"
)

type Handler struct {
	svc *service.ExpenseService
}

func NewHandler(svc *service.ExpenseService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type expenseResponse struct {
	ID           string                     `json:"id"`
	Description  string                     `json:"description"`
	Amount       decimal.Decimal            `json:"amount"`
	PaidBy       string                     `json:"paid_by"`
	GroupID      string                     `json:"group_id,omitempty"`
	Participants []string                   `json:"participants"`
	Splits       map[string]decimal.Decimal `json:"splits"`
	Category     models.ExpenseCategory     `json:"category"`
	Notes        string                     `json:"notes,omitempty"`
	ReceiptURL   string                     `json:"receipt_url,omitempty"`
	Status       models.ExpenseStatus       `json:"status"`
	SplitType    models.SplitType           `json:"split_type"`
	CreatedAt    int64                      `json:"created_at"`
	UpdatedAt    int64                      `json:"updated_at"`
}

func toResponse(e *models.Expense) expenseResponse {
	participants := make([]string, 0, len(e.Participants))
	for id := range e.Participants {
		participants = append(participants, id)
	}
	sort.Strings(participants)

	return expenseResponse{
		ID:           e.ID,
		Description:  e.Description,
		Amount:       e.Amount,
		PaidBy:       e.PaidBy,
		GroupID:      e.GroupID,
		Participants: participants,
		Splits:       e.Splits,
		Category:     e.Category,
		Notes:        e.Notes,
		ReceiptURL:   e.ReceiptURL,
		Status:       e.Status,
		SplitType:    e.SplitType,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func toResponseList(expenses []*models.Expense) []expenseResponse {
	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toResponse(e))
	}
	return out
}

type createExpenseRequest struct {
	Description  string                     `json:"description"`
	Amount       decimal.Decimal            `json:"amount"`
	Participants []string                   `json:"participants"`
	SplitType    models.SplitType           `json:"split_type"`
	SplitParams  map[string]decimal.Decimal `json:"split_params"`
	Category     models.ExpenseCategory     `json:"category"`
	GroupID      string                     `json:"group_id"`
	Notes        string                     `json:"notes"`
	ReceiptURL   string                     `json:"receipt_url"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	exp, err := h.svc.Create(r.Context(), service.CreateExpenseParams{
		Description:    req.Description,
		Amount:         req.Amount,
		PaidBy:         middleware.GetUserID(r.Context()),
		ParticipantIDs: req.Participants,
		SplitType:      req.SplitType,
		SplitParams:    req.SplitParams,
		Category:       req.Category,
		GroupID:        req.GroupID,
		Notes:          req.Notes,
		ReceiptURL:     req.ReceiptURL,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(exp))
}

// list returns the caller's expenses, or a group's expenses when the
// group_id query parameter is set.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var (
		expenses []*models.Expense
		err      error
	)
	if groupID := r.URL.Query().Get("group_id"); groupID != "" {
		expenses, err = h.svc.ListByGroup(r.Context(), groupID)
	} else {
		expenses, err = h.svc.ListByUser(r.Context(), middleware.GetUserID(r.Context()))
	}
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(expenses))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	exp, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toResponse(exp))
}

type updateExpenseRequest struct {
	Description  *string                    `json:"description,omitempty"`
	Amount       *decimal.Decimal           `json:"amount,omitempty"`
	Category     *models.ExpenseCategory    `json:"category,omitempty"`
	Participants []string                   `json:"participants,omitempty"`
	SplitType    *models.SplitType          `json:"split_type,omitempty"`
	SplitParams  map[string]decimal.Decimal `json:"split_params,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	exp, err := h.svc.Update(r.Context(), service.UpdateExpenseParams{
		ExpenseID:      chi.URLParam(r, "id"),
		Description:    req.Description,
		Amount:         req.Amount,
		Category:       req.Category,
		ParticipantIDs: req.Participants,
		SplitType:      req.SplitType,
		SplitParams:    req.SplitParams,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(exp))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()))
	if err != nil {
		respond.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
