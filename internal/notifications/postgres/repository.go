// Package postgres provides PostgreSQL implementation of the notifications repository.
package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/bissquit/journal-templates/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repository implements notifications.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL notifications repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// BeginTx starts a new database transaction.
func (r *Repository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.db.Begin(ctx)
}

// CreateTx stores a notification within a transaction.
func (r *Repository) CreateTx(ctx context.Context, tx pgx.Tx, n *domain.Notification) error {
	statement, args, err := psql.
		Insert("notifications").
		Columns("target_user", "originator", "title", "content", "content_id", "type").
		Values(n.TargetUser, n.Originator, n.Title, n.Content, n.ContentID, n.Type).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if err := tx.QueryRow(ctx, statement, args...).Scan(&n.ID, &n.CreatedAt); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListForUser returns the newest notifications addressed to username.
func (r *Repository) ListForUser(ctx context.Context, username string, limit int) ([]domain.Notification, error) {
	statement, args, err := psql.
		Select("id", "target_user", "originator", "title", "content", "content_id", "type", "created_at").
		From("notifications").
		Where(sq.Eq{"target_user": username}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.db.Query(ctx, statement, args...)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.TargetUser, &n.Originator, &n.Title, &n.Content, &n.ContentID, &n.Type, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return items, nil
}

// DeleteBefore removes notifications created before cutoff.
func (r *Repository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	statement, args, err := psql.
		Delete("notifications").
		Where(sq.Lt{"created_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build purge query: %w", err)
	}

	result, err := r.db.Exec(ctx, statement, args...)
	if err != nil {
		return 0, fmt.Errorf("purge notifications: %w", err)
	}
	return result.RowsAffected(), nil
}
