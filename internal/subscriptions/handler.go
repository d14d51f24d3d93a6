package subscriptions

import (
	"context"
	"net/http"

	"github.com/bissquit/journal-templates/internal/domain"
	"github.com/bissquit/journal-templates/internal/pkg/ctxlog"
	"github.com/bissquit/journal-templates/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Informer delivers notification events produced by subscription removal.
type Informer interface {
	Inform(ctx context.Context, originator string, events []domain.NotificationEvent) error
}

// Handler handles HTTP requests for the subscriptions module.
type Handler struct {
	service   *Service
	users     UserResolver
	informer  Informer
	validator *validator.Validate
}

// NewHandler creates a new subscriptions handler. informer may be nil, in which
// case removal events are only returned to the caller.
func NewHandler(service *Service, users UserResolver, informer Informer) *Handler {
	return &Handler{
		service:   service,
		users:     users,
		informer:  informer,
		validator: validator.New(),
	}
}

// RegisterRoutes registers routes that require authentication.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/me/subscriptions", h.ListMine)
	r.Put("/categories/{categoryID}/subscriptions", h.Reconcile)
	r.Post("/subscriptions/remove", h.Remove)
}

// ReconcileRequest represents the request body for subscribing to selections.
type ReconcileRequest struct {
	Selections []int64 `json:"selections" validate:"required,dive,gt=0"`
	ProjectID  int64   `json:"project_id" validate:"required,gt=0"`
}

// RemoveItem identifies one subscription in a removal request.
type RemoveItem struct {
	Username        string `json:"username" validate:"required,max=255"`
	CategoryID      int64  `json:"category_id" validate:"required,gt=0"`
	MetadataKeyword string `json:"metadata_keyword" validate:"required,max=255"`
}

// RemoveRequest represents the request body for removing subscriptions.
type RemoveRequest struct {
	Subscriptions []RemoveItem `json:"subscriptions" validate:"required,min=1,max=500,dive"`
}

// RemoveResponse lists the notification events produced by a removal.
type RemoveResponse struct {
	Events []domain.NotificationEvent `json:"events"`
}

// ListMine handles GET /me/subscriptions.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	subs, err := h.service.ListSubscriptions(r.Context(), httputil.GetUsername(r.Context()))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, subs)
}

// Reconcile handles PUT /categories/{categoryID}/subscriptions.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := httputil.Int64Param(w, r, "categoryID")
	if !ok {
		return
	}

	var req ReconcileRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	user, err := h.users.GetUserByName(r.Context(), httputil.GetUsername(r.Context()))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	if err := h.service.Reconcile(r.Context(), *user, categoryID, req.Selections, req.ProjectID); err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Remove handles POST /subscriptions/remove.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	var req RemoveRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	params := make([]RemoveParams, 0, len(req.Subscriptions))
	for _, item := range req.Subscriptions {
		params = append(params, RemoveParams(item))
	}

	requester := httputil.GetUsername(r.Context())
	events, err := h.service.RemoveSubscriptions(r.Context(), requester, params)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, errorMappings)
		return
	}

	// Removal is committed at this point; informer failures are only logged.
	if h.informer != nil && len(events) > 0 {
		if err := h.informer.Inform(r.Context(), requester, events); err != nil {
			ctxlog.FromContext(r.Context()).Error("failed to inform about removed subscriptions",
				"error", err, "events", len(events))
		}
	}

	httputil.Success(w, http.StatusOK, RemoveResponse{Events: events})
}

var errorMappings = httputil.CommonErrorMappings
