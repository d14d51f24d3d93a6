package subscriptions

import (
	"context"
	"errors"
	"maps"
	"sync"

	"github.com/bissquit/journal-templates/internal/domain"
	"github.com/jackc/pgx/v5"
)

// mockRepository is an in-memory store whose transactions stage operations and
// apply them on commit. Merges are applied as unions against the state current
// at commit time, mirroring the atomic upsert of the PostgreSQL store.
type mockRepository struct {
	mu       sync.Mutex
	rows     map[domain.SubscriptionKey]domain.Subscription
	beginErr error
	mergeErr map[string]error // by keyword
	begun    int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		rows:     make(map[domain.SubscriptionKey]domain.Subscription),
		mergeErr: make(map[string]error),
	}
}

type stagedOp struct {
	key    domain.SubscriptionKey
	delete bool
	sub    domain.Subscription
}

func applyOp(rows map[domain.SubscriptionKey]domain.Subscription, op stagedOp) {
	if op.delete {
		delete(rows, op.key)
		return
	}
	if existing, ok := rows[op.key]; ok {
		existing.Selections = existing.Selections.Union(op.sub.Selections)
		rows[op.key] = existing
		return
	}
	rows[op.key] = op.sub
}

// fakeTx implements pgx.Tx through the embedded interface; only Commit and
// Rollback are called by the service.
type fakeTx struct {
	pgx.Tx
	repo   *mockRepository
	ops    []stagedOp
	closed bool

	committed  bool
	rolledBack bool
}

func (tx *fakeTx) Commit(_ context.Context) error {
	if tx.closed {
		return pgx.ErrTxClosed
	}
	tx.closed = true
	tx.committed = true

	tx.repo.mu.Lock()
	defer tx.repo.mu.Unlock()
	for _, op := range tx.ops {
		applyOp(tx.repo.rows, op)
	}
	return nil
}

func (tx *fakeTx) Rollback(_ context.Context) error {
	if tx.closed {
		return pgx.ErrTxClosed
	}
	tx.closed = true
	tx.rolledBack = true
	return nil
}

func (m *mockRepository) BeginTx(_ context.Context) (pgx.Tx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	m.begun++
	return &fakeTx{repo: m}, nil
}

// view returns the rows as seen from inside tx.
func (m *mockRepository) view(tx pgx.Tx) map[domain.SubscriptionKey]domain.Subscription {
	m.mu.Lock()
	rows := maps.Clone(m.rows)
	m.mu.Unlock()

	for _, op := range tx.(*fakeTx).ops {
		applyOp(rows, op)
	}
	return rows
}

func (m *mockRepository) ExistsTx(_ context.Context, tx pgx.Tx, key domain.SubscriptionKey) (bool, error) {
	_, ok := m.view(tx)[key]
	return ok, nil
}

func (m *mockRepository) MergeSelectionsTx(_ context.Context, tx pgx.Tx, sub *domain.Subscription) error {
	if err := m.mergeErr[sub.Key.Keyword]; err != nil {
		return err
	}
	ftx := tx.(*fakeTx)
	ftx.ops = append(ftx.ops, stagedOp{key: sub.Key, sub: *sub})
	return nil
}

func (m *mockRepository) DeleteTx(_ context.Context, tx pgx.Tx, key domain.SubscriptionKey) error {
	if _, ok := m.view(tx)[key]; !ok {
		return domain.NewNotFound(domain.EntitySubscription, key)
	}
	ftx := tx.(*fakeTx)
	ftx.ops = append(ftx.ops, stagedOp{key: key, delete: true})
	return nil
}

func (m *mockRepository) ListByUser(_ context.Context, userID int64) ([]domain.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	subs := make([]domain.Subscription, 0)
	for _, sub := range m.rows {
		if sub.UserID == userID {
			subs = append(subs, sub)
		}
	}
	return subs, nil
}

func (m *mockRepository) seed(sub domain.Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[sub.Key] = sub
}

func (m *mockRepository) selections(key domain.SubscriptionKey) (domain.SelectionSet, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.rows[key]
	return sub.Selections, ok
}

func (m *mockRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type mockProjects struct {
	projects map[int64]*domain.Project
}

func (m *mockProjects) GetProjectByID(_ context.Context, id int64) (*domain.Project, error) {
	if p, ok := m.projects[id]; ok {
		return p, nil
	}
	return nil, domain.NewNotFound(domain.EntityProject, id)
}

type mockUsers struct {
	users map[string]*domain.User
}

func (m *mockUsers) GetUserByName(_ context.Context, name string) (*domain.User, error) {
	if u, ok := m.users[name]; ok {
		return u, nil
	}
	return nil, domain.NewNotFound(domain.EntityUser, name)
}

type mockCategories struct {
	mu         sync.Mutex
	categories map[int64]*domain.Category
	calls      int
}

func (m *mockCategories) GetCategory(_ context.Context, id int64) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if c, ok := m.categories[id]; ok {
		return c, nil
	}
	return nil, domain.NewNotFound(domain.EntityCategory, id)
}

func (m *mockCategories) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockKeywords maps each selection id to the keywords it carries.
type mockKeywords struct {
	bySelection map[int64][]string
	err         error
}

func (m *mockKeywords) KeywordsForSelections(_ context.Context, ids []int64) ([]domain.Keyword, error) {
	if m.err != nil {
		return nil, m.err
	}
	keywords := make([]domain.Keyword, 0)
	for _, id := range ids {
		for _, k := range m.bySelection[id] {
			keywords = append(keywords, domain.Keyword{Keyword: k, SelectionID: id})
		}
	}
	return keywords, nil
}

var errStore = errors.New("store unavailable")
