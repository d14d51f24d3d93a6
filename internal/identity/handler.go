package identity

import (
	"net/http"

	"github.com/bissquit/journal-templates/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
)

// Handler handles HTTP requests for the identity module.
type Handler struct {
	service *Service
}

// NewHandler creates a new identity handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterProtectedRoutes registers routes that require authentication.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/me", h.Me)
}

// MeResponse describes the authenticated user.
type MeResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// Me handles GET /me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUserByName(r.Context(), httputil.GetUsername(r.Context()))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, httputil.CommonErrorMappings)
		return
	}

	httputil.Success(w, http.StatusOK, MeResponse{
		ID:   user.ID,
		Name: user.Name,
		Role: string(httputil.GetRole(r.Context())),
	})
}
