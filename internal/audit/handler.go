package audit

import (
	"net/http"
	"time"

	"github.com/bissquit/journal-templates/internal/domain"
	"github.com/bissquit/journal-templates/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler handles HTTP requests for the audit module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new audit handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers routes available to every authenticated user.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/projects/{projectID}/history", h.GetHistory)
}

// RegisterOperatorRoutes registers routes that require operator role.
func (h *Handler) RegisterOperatorRoutes(r chi.Router) {
	r.Post("/projects/{projectID}/history", h.Ingest)
}

// IngestEvent is one activity in an ingest request.
type IngestEvent struct {
	Activity      string    `json:"activity" validate:"required,max=1024"`
	Originator    string    `json:"originator" validate:"required,max=255"`
	ActivityTime  time.Time `json:"activity_time" validate:"required"`
	Action        string    `json:"action" validate:"required,oneof=create update delete share revoke complete uncomplete move"`
	ProjectItemID *int64    `json:"project_item_id" validate:"omitempty,gt=0"`
}

// IngestRequest represents the request body for recording activities.
type IngestRequest struct {
	Events []IngestEvent `json:"events" validate:"required,min=1,max=1000,dive"`
}

// GetHistory handles GET /projects/{projectID}/history.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	projectID, ok := httputil.Int64Param(w, r, "projectID")
	if !ok {
		return
	}

	q := r.URL.Query()
	activities, err := h.service.GetHistory(r.Context(),
		projectID,
		q.Get("timezone"),
		q.Get("start_date"),
		q.Get("end_date"),
		httputil.GetUsername(r.Context()),
	)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, activities)
}

// Ingest handles POST /projects/{projectID}/history.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	projectID, ok := httputil.Int64Param(w, r, "projectID")
	if !ok {
		return
	}

	var req IngestRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	events := make([]domain.AuditableEvent, 0, len(req.Events))
	for _, e := range req.Events {
		events = append(events, domain.AuditableEvent{
			ProjectID:     projectID,
			Activity:      e.Activity,
			Originator:    e.Originator,
			ActivityTime:  e.ActivityTime,
			Action:        domain.Action(e.Action),
			ProjectItemID: e.ProjectItemID,
		})
	}

	if err := h.service.Create(r.Context(), events); err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusCreated, map[string]int{"recorded": len(events)})
}

var errorMappings = append([]httputil.ErrorMapping{
	{Error: ErrInvalidWindow, Status: http.StatusBadRequest},
}, httputil.CommonErrorMappings...)

