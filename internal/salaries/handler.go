package salaries

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rayanh/salary-tracker/internal/domain"
	"github.com/rayanh/salary-tracker/internal/pkg/httputil"
)

// Handler handles HTTP requests for the salaries module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new salaries handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers salary routes. All of them sit behind the
// auth filters; the owner is always the authenticated principal.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/salaries", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// CreateRequest represents the salary creation body.
type CreateRequest struct {
	Month    domain.Month `json:"month"`
	Gross    float64      `json:"gross" validate:"gte=0"`
	Bonus    float64      `json:"bonus" validate:"gte=0"`
	Currency string       `json:"currency" validate:"required,iso4217"`
}

// Create handles POST /salaries.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal := httputil.PrincipalFrom(r.Context())

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, domain.ErrInvalidArguments) {
			httputil.HandleError(r.Context(), w, err)
			return
		}
		httputil.Error(w, http.StatusBadRequest, httputil.CodeInvalidArguments, "invalid json")
		return
	}
	if req.Month == (domain.Month{}) {
		httputil.Error(w, http.StatusBadRequest, httputil.CodeInvalidArguments, "month is required")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	salary, err := h.service.Create(r.Context(), principal.UserID, CreateInput(req))
	if err != nil {
		httputil.HandleError(r.Context(), w, err)
		return
	}

	httputil.JSON(w, http.StatusCreated, salary)
}

// List handles GET /salaries.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal := httputil.PrincipalFrom(r.Context())

	salaries, err := h.service.List(r.Context(), principal.UserID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, salaries)
}

// Get handles GET /salaries/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	principal := httputil.PrincipalFrom(r.Context())

	id, err := parseID(r)
	if err != nil {
		httputil.HandleError(r.Context(), w, err)
		return
	}

	salary, err := h.service.Get(r.Context(), principal.UserID, id)
	if err != nil {
		httputil.HandleError(r.Context(), w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, salary)
}

// UpdateRequest represents the partial update body. Absent fields keep
// their stored values; the month cannot be changed.
type UpdateRequest struct {
	Gross    *float64 `json:"gross" validate:"omitempty,gte=0"`
	Bonus    *float64 `json:"bonus" validate:"omitempty,gte=0"`
	Currency *string  `json:"currency" validate:"omitempty,iso4217"`
}

// Update handles PUT /salaries/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	principal := httputil.PrincipalFrom(r.Context())

	id, err := parseID(r)
	if err != nil {
		httputil.HandleError(r.Context(), w, err)
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, httputil.CodeInvalidArguments, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	salary, err := h.service.Update(r.Context(), principal.UserID, id, UpdateInput(req))
	if err != nil {
		httputil.HandleError(r.Context(), w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, salary)
}

// Delete handles DELETE /salaries/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := httputil.PrincipalFrom(r.Context())

	id, err := parseID(r)
	if err != nil {
		httputil.HandleError(r.Context(), w, err)
		return
	}

	if err := h.service.Delete(r.Context(), principal.UserID, id); err != nil {
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
