// Package postgres provides PostgreSQL implementation of the audit log store.
package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/bissquit/journal-templates/internal/domain"
	pgutil "github.com/bissquit/journal-templates/internal/pkg/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const table = "auditables"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repository implements audit.Repository using PostgreSQL.
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

// BeginSnapshotTx starts a read-only repeatable read transaction.
func (r *Repository) BeginSnapshotTx(ctx context.Context) (pgx.Tx, error) {
	return r.db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
}

// HistoryQuery selects the entries of a project in the half-open range [start, end).
func HistoryQuery(projectID int64, start, end time.Time) sq.SelectBuilder {
	return psql.
		Select("id", "batch_id", "project_id", "activity", "originator",
			"activity_time", "action", "project_item_id", "created_at").
		From(table).
		Where(sq.Eq{"project_id": projectID}).
		Where(sq.GtOrEq{"activity_time": start}).
		Where(sq.Lt{"activity_time": end}).
		OrderBy("activity_time DESC", "id DESC")
}

// InsertQuery inserts entries in a single statement.
func InsertQuery(entries []domain.AuditEntry) sq.InsertBuilder {
	q := psql.
		Insert(table).
		Columns("batch_id", "project_id", "activity", "originator",
			"activity_time", "action", "project_item_id")
	for _, e := range entries {
		q = q.Values(e.BatchID, e.ProjectID, e.Activity, e.Originator,
			e.ActivityTime, string(e.Action), e.ProjectItemID)
	}
	return q
}

// PurgeQuery deletes entries whose activity happened before cutoff.
func PurgeQuery(cutoff time.Time) sq.DeleteBuilder {
	return psql.
		Delete(table).
		Where(sq.Lt{"activity_time": cutoff})
}

// ListBetweenTx returns the entries of a project with start <= activity_time < end.
func (r *Repository) ListBetweenTx(ctx context.Context, tx pgx.Tx, projectID int64, start, end time.Time) ([]domain.AuditEntry, error) {
	statement, args, err := HistoryQuery(projectID, start, end).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history query: %w", err)
	}

	rows, err := tx.Query(ctx, statement, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.AuditEntry, 0)
	for rows.Next() {
		var (
			e      domain.AuditEntry
			action string
		)
		err := rows.Scan(
			&e.ID,
			&e.BatchID,
			&e.ProjectID,
			&e.Activity,
			&e.Originator,
			&e.ActivityTime,
			&action,
			&e.ProjectItemID,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Action = domain.Action(action)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}

// InsertEntriesTx inserts entries within a transaction.
func (r *Repository) InsertEntriesTx(ctx context.Context, tx pgx.Tx, entries []domain.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}

	statement, args, err := InsertQuery(entries).ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}
	if _, err := tx.Exec(ctx, statement, args...); err != nil {
		// project_id is the only foreign key of the table.
		if pgutil.IsForeignKeyViolation(err) {
			return domain.NewNotFound(domain.EntityProject, entries[0].ProjectID)
		}
		return fmt.Errorf("insert audit entries: %w", err)
	}
	return nil
}

// DeleteBefore removes entries whose activity happened before cutoff.
func (r *Repository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	statement, args, err := PurgeQuery(cutoff).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build purge query: %w", err)
	}
	result, err := r.db.Exec(ctx, statement, args...)
	if err != nil {
		return 0, fmt.Errorf("purge audit entries: %w", err)
	}
	return result.RowsAffected(), nil
}
