package user

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kmehta/divvy/internal/http/respond"
	"github.com/kmehta/divvy/internal/middleware"
	"github.com/kmehta/divvy/internal/models"
	"github.com/kmehta/divvy/internal/service"
)

type Handler struct {
	svc *service.UserService
}

func NewHandler(svc *service.UserService) *Handler {
	return &Handler{svc: svc}
}

// AuthRoutes registers the unauthenticated registration and login endpoints.
func (h *Handler) AuthRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
}

// Routes registers the authenticated user endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/me", h.me)
	r.Get("/me/friends", h.friends)
	r.Post("/me/friends", h.addFriend)
	r.Delete("/me/friends/{id}", h.removeFriend)
}

type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

func toResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.svc.Register(r.Context(), service.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(user))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, loginResponse{Token: token, User: toResponse(user)})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toResponse(user))
}

func (h *Handler) friends(w http.ResponseWriter, r *http.Request) {
	friends, err := h.svc.Friends(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respond.Error(w, err)
		return
	}

	out := make([]userResponse, 0, len(friends))
	for _, f := range friends {
		out = append(out, toResponse(f))
	}
	respond.JSON(w, http.StatusOK, out)
}

type addFriendRequest struct {
	Email string `json:"email"`
}

func (h *Handler) addFriend(w http.ResponseWriter, r *http.Request) {
	var req addFriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.AddFriend(r.Context(), middleware.GetUserID(r.Context()), req.Email); err != nil {
		respond.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeFriend(w http.ResponseWriter, r *http.Request) {
	friendID := chi.URLParam(r, "id")
	if err := h.svc.RemoveFriend(r.Context(), middleware.GetUserID(r.Context()), friendID); err != nil {
		respond.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
