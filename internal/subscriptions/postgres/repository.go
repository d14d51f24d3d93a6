// Package postgres provides PostgreSQL implementation of the subscription store.
package postgres

import (
	"context"
	"fmt"

	"github.com/bissquit/journal-templates/internal/domain"
	pgutil "github.com/bissquit/journal-templates/internal/pkg/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// mergeQuery inserts a subscription or unions its selections into the stored row.
// The union runs inside the conflicting row's lock, so concurrent merges on one
// key serialize and none of their additions is lost. Selections are kept in the
// canonical form of domain.SelectionSet: ascending ids joined by commas.
const mergeQuery = `
	INSERT INTO user_categories (user_id, category_id, keyword, project_id, selections)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (user_id, category_id, keyword) DO UPDATE
	SET selections = COALESCE((
			SELECT string_agg(id::text, ',' ORDER BY id)
			FROM (
				SELECT DISTINCT unnest(
					string_to_array(NULLIF(user_categories.selections, ''), ',')::bigint[] ||
					string_to_array(NULLIF(EXCLUDED.selections, ''), ',')::bigint[]
				) AS id
			) merged
		), ''),
		updated_at = NOW()
`

// Repository implements subscriptions.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// BeginTx starts a new database transaction.
func (r *Repository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.db.Begin(ctx)
}

// ExistsTx reports whether a subscription row exists for key.
func (r *Repository) ExistsTx(ctx context.Context, tx pgx.Tx, key domain.SubscriptionKey) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM user_categories
			WHERE user_id = $1 AND category_id = $2 AND keyword = $3
		)
	`
	var exists bool
	if err := tx.QueryRow(ctx, query, key.UserID, key.CategoryID, key.Keyword).Scan(&exists); err != nil {
		return false, fmt.Errorf("check subscription exists: %w", err)
	}
	return exists, nil
}

// MergeSelectionsTx inserts sub or merges its selections into the existing row.
func (r *Repository) MergeSelectionsTx(ctx context.Context, tx pgx.Tx, sub *domain.Subscription) error {
	_, err := tx.Exec(ctx, mergeQuery,
		sub.Key.UserID,
		sub.Key.CategoryID,
		sub.Key.Keyword,
		sub.ProjectID,
		sub.Selections.String(),
	)
	if err != nil {
		return fmt.Errorf("merge subscription: %w", err)
	}
	return nil
}

// DeleteTx deletes the subscription row for key.
func (r *Repository) DeleteTx(ctx context.Context, tx pgx.Tx, key domain.SubscriptionKey) error {
	query := `DELETE FROM user_categories WHERE user_id = $1 AND category_id = $2 AND keyword = $3`
	result, err := tx.Exec(ctx, query, key.UserID, key.CategoryID, key.Keyword)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFound(domain.EntitySubscription, key)
	}
	return nil
}

// ListByUser returns all subscriptions of a user ordered by category and keyword.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]domain.Subscription, error) {
	return r.list(ctx, r.db, selectSubscriptions+`
		WHERE uc.user_id = $1
		ORDER BY uc.category_id, uc.keyword
	`, userID)
}

const selectSubscriptions = `
	SELECT uc.user_id, uc.category_id, c.name, c.description, uc.keyword,
	       uc.project_id, uc.selections, uc.created_at, uc.updated_at
	FROM user_categories uc
	JOIN categories c ON c.id = uc.category_id
`

func (r *Repository) list(ctx context.Context, q pgutil.Querier, query string, args ...any) ([]domain.Subscription, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	subs := make([]domain.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}
	return subs, nil
}

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var (
		sub        domain.Subscription
		selections string
	)
	err := row.Scan(
		&sub.UserID,
		&sub.Category.ID,
		&sub.Category.Name,
		&sub.Category.Description,
		&sub.Keyword,
		&sub.ProjectID,
		&selections,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	sub.Selections, err = domain.ParseSelectionSet(selections)
	if err != nil {
		return nil, fmt.Errorf("decode selections of %d/%d/%s: %w", sub.UserID, sub.Category.ID, sub.Keyword, err)
	}
	sub.Key = domain.SubscriptionKey{UserID: sub.UserID, CategoryID: sub.Category.ID, Keyword: sub.Keyword}
	return &sub, nil
}
