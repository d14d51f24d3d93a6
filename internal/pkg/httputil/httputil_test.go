package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bissquit/journal-templates/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator struct {
	username string
	role     domain.Role
	err      error
}

func (s stubValidator) ValidateToken(_ context.Context, _ string) (string, domain.Role, error) {
	return s.username, s.role, s.err
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error.Message
}

func TestAuthMiddleware(t *testing.T) {
	var gotUser string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = GetUsername(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		header     string
		validator  stubValidator
		wantStatus int
		wantUser   string
	}{
		{"missing header", "", stubValidator{}, http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic abc", stubValidator{}, http.StatusUnauthorized, ""},
		{"invalid token", "Bearer abc", stubValidator{err: errors.New("expired")}, http.StatusUnauthorized, ""},
		{"valid token", "Bearer abc", stubValidator{username: "alice", role: domain.RoleUser}, http.StatusNoContent, "alice"},
		{"lowercase scheme", "bearer abc", stubValidator{username: "bob", role: domain.RoleUser}, http.StatusNoContent, "bob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			AuthMiddleware(tt.validator)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUser, gotUser)
		})
	}
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		ctx        func(context.Context) context.Context
		wantStatus int
	}{
		{"no role", func(ctx context.Context) context.Context { return ctx }, http.StatusUnauthorized},
		{"insufficient", func(ctx context.Context) context.Context { return WithUsername(ctx, "u", domain.RoleUser) }, http.StatusForbidden},
		{"exact", func(ctx context.Context) context.Context { return WithUsername(ctx, "u", domain.RoleOperator) }, http.StatusOK},
		{"higher", func(ctx context.Context) context.Context { return WithUsername(ctx, "u", domain.RoleAdmin) }, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(tt.ctx(req.Context()))
			rec := httptest.NewRecorder()

			RequireRole(domain.RoleOperator)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandleError(t *testing.T) {
	errCustom := errors.New("custom failure")
	mappings := append([]ErrorMapping{
		{Error: errCustom, Status: http.StatusConflict, Message: "conflict happened"},
	}, CommonErrorMappings...)

	t.Run("not found hides wrapping context", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := fmt.Errorf("remove subscriptions: %w", domain.NewNotFound(domain.EntityCategory, 5))

		HandleError(context.Background(), rec, err, mappings)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "category 5 not found", errorMessage(t, rec))
	})

	t.Run("unauthorized", func(t *testing.T) {
		rec := httptest.NewRecorder()

		HandleError(context.Background(), rec, domain.ErrUnauthorized, mappings)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "access denied", errorMessage(t, rec))
	})

	t.Run("module mapping", func(t *testing.T) {
		rec := httptest.NewRecorder()

		HandleError(context.Background(), rec, fmt.Errorf("x: %w", errCustom), mappings)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "conflict happened", errorMessage(t, rec))
	})

	t.Run("unmapped", func(t *testing.T) {
		rec := httptest.NewRecorder()

		HandleError(context.Background(), rec, errors.New("db down"), mappings)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "internal error", errorMessage(t, rec))
	})
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	handler := CORSMiddleware([]string{"https://app.example.com"})(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/me/subscriptions", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
