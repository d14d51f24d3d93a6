package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/bissquit/journal-templates/internal/domain"
	"github.com/bissquit/journal-templates/internal/pkg/ctxlog"
)

// ErrorMapping defines how a domain error maps to an HTTP response.
type ErrorMapping struct {
	Error   error
	Status  int
	Message string // if empty, derived from the error
}

// CommonErrorMappings covers errors shared by every module. Append them after
// module-specific mappings.
var CommonErrorMappings = []ErrorMapping{
	{Error: domain.ErrNotFound, Status: http.StatusNotFound},
	{Error: domain.ErrUnauthorized, Status: http.StatusForbidden, Message: "access denied"},
}

// HandleError maps a domain error to an HTTP response using provided mappings.
// If no mapping matches, logs the error and returns 500 Internal Server Error.
func HandleError(ctx context.Context, w http.ResponseWriter, err error, mappings []ErrorMapping) {
	for _, m := range mappings {
		if errors.Is(err, m.Error) {
			Error(w, m.Status, messageFor(err, m))
			return
		}
	}
	ctxlog.FromContext(ctx).Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, "internal error")
}

// messageFor prefers the mapping message, then the innermost not-found error,
// so that wrapping context never leaks to clients.
func messageFor(err error, m ErrorMapping) string {
	if m.Message != "" {
		return m.Message
	}
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}
	return err.Error()
}
