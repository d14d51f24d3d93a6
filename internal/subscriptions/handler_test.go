package subscriptions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bissquit/journal-templates/internal/domain"
	"github.com/bissquit/journal-templates/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingInformer struct {
	originator string
	events     []domain.NotificationEvent
	err        error
}

func (i *recordingInformer) Inform(_ context.Context, originator string, events []domain.NotificationEvent) error {
	i.originator = originator
	i.events = append(i.events, events...)
	return i.err
}

func newTestRouter(f *fixture, informer Informer) http.Handler {
	users := &mockUsers{users: map[string]*domain.User{"alice": &alice, "bob": &bob}}
	h := NewHandler(f.service, users, informer)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(httputil.WithUsername(r.Context(), "alice", domain.RoleUser)))
		})
	})
	h.RegisterRoutes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Reconcile(t *testing.T) {
	f := newFixture()
	router := newTestRouter(f, nil)

	rec := do(t, router, http.MethodPut, "/categories/5/subscriptions", `{"selections":[1,2],"project_id":10}`)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	got, ok := f.repo.selections(key(alice, "stocks"))
	require.True(t, ok)
	assert.Equal(t, domain.SelectionSet{1, 2}, got)
}

func TestHandler_ReconcileErrors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{"bad category id", "/categories/abc/subscriptions", `{"selections":[1],"project_id":10}`, http.StatusBadRequest},
		{"invalid json", "/categories/5/subscriptions", `{`, http.StatusBadRequest},
		{"missing project", "/categories/5/subscriptions", `{"selections":[1]}`, http.StatusBadRequest},
		{"unknown project", "/categories/5/subscriptions", `{"selections":[1],"project_id":404}`, http.StatusNotFound},
		{"unknown category", "/categories/77/subscriptions", `{"selections":[1],"project_id":10}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			rec := do(t, newTestRouter(f, nil), http.MethodPut, tt.path, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Zero(t, f.repo.count())
		})
	}
}

func TestHandler_RemoveInformsRecipients(t *testing.T) {
	f := newFixture()
	seedSubscription(f, bob, "k")
	seedSubscription(f, alice, "k")
	informer := &recordingInformer{}
	router := newTestRouter(f, informer)

	rec := do(t, router, http.MethodPost, "/subscriptions/remove", `{"subscriptions":[
		{"username":"bob","category_id":5,"metadata_keyword":"k"},
		{"username":"alice","category_id":5,"metadata_keyword":"k"}
	]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data RemoveResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Data.Events, 1)
	assert.Equal(t, "bob", body.Data.Events[0].Recipient)
	assert.Equal(t, "Investing", body.Data.Events[0].CategoryName)

	assert.Equal(t, "alice", informer.originator)
	assert.Equal(t, body.Data.Events, informer.events)
	assert.Zero(t, f.repo.count())
}

func TestHandler_RemoveInformerFailureIsNotReported(t *testing.T) {
	f := newFixture()
	seedSubscription(f, bob, "k")
	router := newTestRouter(f, &recordingInformer{err: errStore})

	rec := do(t, router, http.MethodPost, "/subscriptions/remove",
		`{"subscriptions":[{"username":"bob","category_id":5,"metadata_keyword":"k"}]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, f.repo.count())
}

func TestHandler_RemoveMissingSubscription(t *testing.T) {
	f := newFixture()
	informer := &recordingInformer{}
	router := newTestRouter(f, informer)

	rec := do(t, router, http.MethodPost, "/subscriptions/remove",
		`{"subscriptions":[{"username":"bob","category_id":5,"metadata_keyword":"k"}]}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "subscription")
	assert.Empty(t, informer.events)
}

func TestHandler_RemoveRejectsEmptyBatch(t *testing.T) {
	f := newFixture()

	rec := do(t, newTestRouter(f, nil), http.MethodPost, "/subscriptions/remove", `{"subscriptions":[]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_ListMine(t *testing.T) {
	f := newFixture()
	seedSubscription(f, alice, "k")
	seedSubscription(f, bob, "k")

	rec := do(t, newTestRouter(f, nil), http.MethodGet, "/me/subscriptions", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []domain.Subscription `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, alice.ID, body.Data[0].UserID)
}
