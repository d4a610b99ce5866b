package settlement

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/kmehta/divvy/internal/http/respond"
	"github.com/kmehta/divvy/internal/middleware"
	"github.com/kmehta/divvy/internal/models"
	"github.com/kmehta/divvy/internal/service"
)

type Handler struct {
	svc *service.SettlementService
}

func NewHandler(svc *service.SettlementService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/{id}/complete", h.complete)
	r.Post("/{id}/cancel", h.cancel)
}

type settlementResponse struct {
	ID          string                  `json:"id"`
	FromUserID  string                  `json:"from_user_id"`
	ToUserID    string                  `json:"to_user_id"`
	Amount      decimal.Decimal         `json:"amount"`
	Status      models.SettlementStatus `json:"status"`
	Method      models.SettlementMethod `json:"method,omitempty"`
	Notes       string                  `json:"notes,omitempty"`
	CreatedAt   int64                   `json:"created_at"`
	UpdatedAt   int64                   `json:"updated_at"`
	CompletedAt int64                   `json:"completed_at,omitempty"`
}

func toResponse(s *models.Settlement) settlementResponse {
	return settlementResponse{
		ID:          s.ID,
		FromUserID:  s.FromUserID,
		ToUserID:    s.ToUserID,
		Amount:      s.Amount,
		Status:      s.Status,
		Method:      s.Method,
		Notes:       s.Notes,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		CompletedAt: s.CompletedAt,
	}
}

type createSettlementRequest struct {
	ToUserID string                  `json:"to_user_id"`
	Amount   decimal.Decimal         `json:"amount"`
	Method   models.SettlementMethod `json:"method"`
	Notes    string                  `json:"notes"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	st, err := h.svc.Create(r.Context(), service.CreateSettlementParams{
		FromUserID: middleware.GetUserID(r.Context()),
		ToUserID:   req.ToUserID,
		Amount:     req.Amount,
		Method:     req.Method,
		Notes:      req.Notes,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(st))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	settlements, err := h.svc.ListByUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respond.Error(w, err)
		return
	}

	out := make([]settlementResponse, 0, len(settlements))
	for _, s := range settlements {
		out = append(out, toResponse(s))
	}
	respond.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toResponse(st))
}

type completeSettlementRequest struct {
	Method models.SettlementMethod `json:"method"`
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	var req completeSettlementRequest
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.Complete(r.Context(), id, req.Method); err != nil {
		respond.Error(w, err)
		return
	}

	st, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toResponse(st))
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Cancel(r.Context(), id); err != nil {
		respond.Error(w, err)
		return
	}

	st, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toResponse(st))
}
