package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bissquit/journal-templates/internal/domain"
	"github.com/bissquit/journal-templates/internal/pkg/httputil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	users map[string]*domain.User
	calls int
}

func (m *mockRepository) GetUserByName(_ context.Context, name string) (*domain.User, error) {
	m.calls++
	if u, ok := m.users[name]; ok {
		return u, nil
	}
	return nil, domain.NewNotFound(domain.EntityUser, name)
}

func newMockRepository() *mockRepository {
	return &mockRepository{users: map[string]*domain.User{
		"alice": {ID: 1, Name: "alice"},
	}}
}

func TestService_GetUserByName(t *testing.T) {
	svc := NewService(newMockRepository())

	u, err := svc.GetUserByName(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)

	_, err = svc.GetUserByName(context.Background(), "Alice")
	assert.True(t, domain.IsNotFoundKind(err, domain.EntityUser), "names match exactly")
}

func TestService_GetUserByNameBlank(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	_, err := svc.GetUserByName(context.Background(), "  ")

	assert.True(t, domain.IsNotFoundKind(err, domain.EntityUser))
	assert.Zero(t, repo.calls)
}

func TestHandler_Me(t *testing.T) {
	h := NewHandler(NewService(newMockRepository()))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req = req.WithContext(httputil.WithUsername(req.Context(), "alice", domain.RoleAdmin))
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data MeResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, MeResponse{ID: 1, Name: "alice", Role: "admin"}, body.Data)
}

func TestHandler_MeUnknownUser(t *testing.T) {
	h := NewHandler(NewService(newMockRepository()))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req = req.WithContext(httputil.WithUsername(req.Context(), "ghost", domain.RoleUser))
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
