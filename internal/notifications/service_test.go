package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bissquit/journal-templates/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	pending []domain.Notification
	repo    *mockRepository
	closed  bool
}

func (tx *fakeTx) Commit(_ context.Context) error {
	if tx.closed {
		return pgx.ErrTxClosed
	}
	tx.closed = true
	tx.repo.stored = append(tx.repo.stored, tx.pending...)
	return nil
}

func (tx *fakeTx) Rollback(_ context.Context) error {
	if tx.closed {
		return pgx.ErrTxClosed
	}
	tx.closed = true
	return nil
}

type mockRepository struct {
	stored    []domain.Notification
	failFor   string
	lastLimit int
}

func (m *mockRepository) BeginTx(_ context.Context) (pgx.Tx, error) {
	return &fakeTx{repo: m}, nil
}

func (m *mockRepository) CreateTx(_ context.Context, tx pgx.Tx, n *domain.Notification) error {
	if n.TargetUser == m.failFor {
		return errors.New("insert failed")
	}
	ftx := tx.(*fakeTx)
	n.ID = int64(len(m.stored) + len(ftx.pending) + 1)
	ftx.pending = append(ftx.pending, *n)
	return nil
}

func (m *mockRepository) ListForUser(_ context.Context, username string, limit int) ([]domain.Notification, error) {
	m.lastLimit = limit
	out := make([]domain.Notification, 0)
	for _, n := range m.stored {
		if n.TargetUser == username {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockRepository) DeleteBefore(_ context.Context, _ time.Time) (int64, error) {
	n := int64(len(m.stored))
	m.stored = nil
	return n, nil
}

func newTestService(t *testing.T) (*Service, *mockRepository) {
	t.Helper()
	renderer, err := NewRenderer()
	require.NoError(t, err)
	repo := &mockRepository{}
	svc := NewService(repo, renderer)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, repo
}

func TestService_Inform(t *testing.T) {
	svc, repo := newTestService(t)

	err := svc.Inform(context.Background(), "alice", []domain.NotificationEvent{
		{Recipient: "bob", CategoryID: 5, CategoryName: "investing"},
		{Recipient: "carol", CategoryID: 6, CategoryName: "travel"},
	})

	require.NoError(t, err)
	require.Len(t, repo.stored, 2)
	assert.Equal(t, "bob", repo.stored[0].TargetUser)
	assert.Equal(t, "alice", repo.stored[0].Originator)
	assert.Equal(t, int64(5), repo.stored[0].ContentID)
	assert.Equal(t, TypeSubscriptionRemoved, repo.stored[0].Type)
	assert.Equal(t, "alice removed you from category Investing", repo.stored[0].Title)
	assert.Equal(t, "carol", repo.stored[1].TargetUser)
}

func TestService_InformAllOrNothing(t *testing.T) {
	svc, repo := newTestService(t)
	repo.failFor = "carol"

	err := svc.Inform(context.Background(), "alice", []domain.NotificationEvent{
		{Recipient: "bob", CategoryID: 5, CategoryName: "investing"},
		{Recipient: "carol", CategoryID: 6, CategoryName: "travel"},
	})

	require.Error(t, err)
	assert.Empty(t, repo.stored)
}

func TestService_InformNoEvents(t *testing.T) {
	svc, repo := newTestService(t)

	require.NoError(t, svc.Inform(context.Background(), "alice", nil))
	assert.Empty(t, repo.stored)
}

func TestService_ListForUserClampsLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"default", 0, DefaultListLimit},
		{"within range", 10, 10},
		{"capped", 10_000, MaxListLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService(t)

			_, err := svc.ListForUser(context.Background(), "bob", tt.limit)

			require.NoError(t, err)
			assert.Equal(t, tt.want, repo.lastLimit)
		})
	}
}
