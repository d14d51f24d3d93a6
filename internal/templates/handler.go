package templates

import (
	"net/http"

	"github.com/bissquit/journal-templates/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler handles HTTP requests for the templates module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new templates handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers step management routes (admin only).
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/steps", func(r chi.Router) {
		r.Post("/", h.CreateStep)
		r.Get("/{stepID}", h.GetStep)
		r.Put("/{stepID}/choices", h.UpdateChoices)
		r.Put("/{stepID}/excluded-selections", h.UpdateExcludedSelections)
	})
}

// CreateStepRequest represents the request body for creating a step.
type CreateStepRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// UpdateChoicesRequest represents the request body for replacing step choices.
type UpdateChoicesRequest struct {
	ChoiceIDs []int64 `json:"choice_ids" validate:"required,dive,gt=0"`
}

// UpdateExcludedSelectionsRequest represents the request body for replacing
// excluded selections.
type UpdateExcludedSelectionsRequest struct {
	SelectionIDs []int64 `json:"selection_ids" validate:"required,dive,gt=0"`
}

// CreateStep handles POST /steps.
func (h *Handler) CreateStep(w http.ResponseWriter, r *http.Request) {
	var req CreateStepRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	step, err := h.service.CreateStep(r.Context(), req.Name)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusCreated, step)
}

// GetStep handles GET /steps/{stepID}.
func (h *Handler) GetStep(w http.ResponseWriter, r *http.Request) {
	stepID, ok := httputil.Int64Param(w, r, "stepID")
	if !ok {
		return
	}

	step, err := h.service.GetStepWithExcludedSelections(r.Context(), stepID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, step)
}

// UpdateChoices handles PUT /steps/{stepID}/choices.
func (h *Handler) UpdateChoices(w http.ResponseWriter, r *http.Request) {
	stepID, ok := httputil.Int64Param(w, r, "stepID")
	if !ok {
		return
	}

	var req UpdateChoicesRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	step, err := h.service.UpdateChoices(r.Context(), stepID, req.ChoiceIDs)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, step)
}

// UpdateExcludedSelections handles PUT /steps/{stepID}/excluded-selections.
func (h *Handler) UpdateExcludedSelections(w http.ResponseWriter, r *http.Request) {
	stepID, ok := httputil.Int64Param(w, r, "stepID")
	if !ok {
		return
	}

	var req UpdateExcludedSelectionsRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	step, err := h.service.UpdateExcludedSelections(r.Context(), stepID, req.SelectionIDs)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, step)
}

var errorMappings = append([]httputil.ErrorMapping{
	{Error: ErrEmptyStepName, Status: http.StatusBadRequest},
}, httputil.CommonErrorMappings...)
