package balance

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/kmehta/divvy/internal/http/respond"
	"github.com/kmehta/divvy/internal/ledger"
	"github.com/kmehta/divvy/internal/middleware"
	"github.com/kmehta/divvy/internal/service"
)

type Handler struct {
	svc *service.BalanceService
}

func NewHandler(svc *service.BalanceService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/net", h.net)
	r.Get("/simplify", h.simplify)
}

type balanceResponse struct {
	CounterpartyID string          `json:"counterparty_id"`
	Amount         decimal.Decimal `json:"amount"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	balances, err := h.svc.Balances(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respond.Error(w, err)
		return
	}

	out := make([]balanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, balanceResponse{CounterpartyID: b.CounterpartyID, Amount: b.Amount})
	}
	respond.JSON(w, http.StatusOK, out)
}

type netResponse struct {
	Net decimal.Decimal `json:"net"`
}

func (h *Handler) net(w http.ResponseWriter, r *http.Request) {
	net, err := h.svc.NetBalance(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, netResponse{Net: net})
}

type transferResponse struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// simplify returns the minimal set of transfers that would settle all
// outstanding debts. It is advisory only; no balances are mutated.
func (h *Handler) simplify(w http.ResponseWriter, r *http.Request) {
	transfers, err := h.svc.SimplifyDebts(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	out := make([]transferResponse, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, toTransferResponse(t))
	}
	respond.JSON(w, http.StatusOK, out)
}

func toTransferResponse(t ledger.Transfer) transferResponse {
	return transferResponse{From: t.From, To: t.To, Amount: t.Amount}
}
