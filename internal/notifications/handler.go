package notifications

import (
	"net/http"
	"strconv"

	"github.com/bissquit/journal-templates/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
)

// Handler handles HTTP requests for the notifications module.
type Handler struct {
	service *Service
}

// NewHandler creates a new notifications handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers notification routes (require auth).
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/me/notifications", h.ListMine)
}

// ListMine handles GET /me/notifications.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			httputil.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	items, err := h.service.ListForUser(r.Context(), httputil.GetUsername(r.Context()), limit)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, httputil.CommonErrorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, items)
}
