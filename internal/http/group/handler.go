package group

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/kmehta/divvy/internal/http/respond"
	"github.com/kmehta/divvy/internal/middleware"
	"github.com/kmehta/divvy/internal/models"
	"github.com/kmehta/divvy/internal/service"
)

type Handler struct {
	svc *service.GroupService
}

func NewHandler(svc *service.GroupService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/members", h.addMember)
	r.Delete("/{id}/members/{memberID}", h.removeMember)
	r.Post("/{id}/leave", h.leave)
}

type groupResponse struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Description      string           `json:"description,omitempty"`
	CreatedBy        string           `json:"created_by"`
	Members          []string         `json:"members"`
	DefaultSplitType models.SplitType `json:"default_split_type"`
	CreatedAt        int64            `json:"created_at"`
}

func toResponse(g *models.Group) groupResponse {
	members := make([]string, 0, len(g.Members))
	for id := range g.Members {
		members = append(members, id)
	}
	sort.Strings(members)

	return groupResponse{
		ID:               g.ID,
		Name:             g.Name,
		Description:      g.Description,
		CreatedBy:        g.CreatedBy,
		Members:          members,
		DefaultSplitType: g.DefaultSplitType,
		CreatedAt:        g.CreatedAt,
	}
}

type createGroupRequest struct {
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	DefaultSplitType models.SplitType `json:"default_split_type"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	group, err := h.svc.Create(r.Context(), service.CreateGroupParams{
		Name:             req.Name,
		Description:      req.Description,
		CreatorID:        middleware.GetUserID(r.Context()),
		DefaultSplitType: req.DefaultSplitType,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(group))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	groups, err := h.svc.ListByUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respond.Error(w, err)
		return
	}

	out := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, toResponse(g))
	}
	respond.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	group, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toResponse(group))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()))
	if err != nil {
		respond.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addMemberRequest struct {
	Email string `json:"email"`
}

func (h *Handler) addMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err := h.svc.AddMember(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()), req.Email)
	if err != nil {
		respond.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeMember(w http.ResponseWriter, r *http.Request) {
	err := h.svc.RemoveMember(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "memberID"),
	)
	if err != nil {
		respond.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) leave(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Leave(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()))
	if err != nil {
		respond.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
