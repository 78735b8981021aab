package identity

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rayanh/salary-tracker/internal/domain"
	"github.com/rayanh/salary-tracker/internal/pkg/httputil"
)

// Handler handles HTTP requests for the identity module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new identity handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers the unauthenticated identity routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})
}

// RegisterProtectedRoutes registers routes behind the auth filters.
// Role restrictions on /users come from the access policy, not from
// per-route middleware.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/me", h.Me)
	r.Get("/users", h.ListUsers)
	r.Get("/users/{id}", h.GetUser)
	r.Delete("/users/{id}", h.DeleteUser)
}

// RegisterRequest represents registration request body.
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// Register handles POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, httputil.CodeInvalidArguments, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	user, err := h.service.Register(r.Context(), RegisterInput(req))
	if err != nil {
		httputil.HandleError(r.Context(), w, err)
		return
	}

	httputil.JSON(w, http.StatusCreated, user)
}

// LoginRequest represents login request body.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents login response.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, httputil.CodeInvalidArguments, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	token, user, err := h.service.Login(r.Context(), LoginInput(req))
	if err != nil {
		httputil.HandleError(r.Context(), w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, LoginResponse{
		Token: token,
		User:  user,
	})
}

// Me handles GET /me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal := httputil.PrincipalFrom(r.Context())
	if principal == nil {
		httputil.HandleError(r.Context(), w, domain.ErrAuthFailed)
		return
	}

	user, err := h.service.GetUserByID(r.Context(), principal.UserID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, user)
}

// ListUsers handles GET /users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, users)
}

// GetUser handles GET /users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httputil.HandleError(r.Context(), w, err)
		return
	}

	user, err := h.service.GetUserByID(r.Context(), id)
	if err != nil {
		httputil.HandleError(r.Context(), w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /users/{id}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httputil.HandleError(r.Context(), w, err)
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		httputil.HandleError(r.Context(), w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidArguments
	}
	return id, nil
}
