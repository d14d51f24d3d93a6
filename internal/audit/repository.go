// Package audit stores project activity and answers history queries over it.
package audit

import (
	"context"
	"time"

	"github.com/bissquit/journal-templates/internal/domain"
	"github.com/jackc/pgx/v5"
)

// Repository is the audit log store.
type Repository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	// BeginSnapshotTx starts a read-only transaction that sees one consistent snapshot.
	BeginSnapshotTx(ctx context.Context) (pgx.Tx, error)

	// ListBetweenTx returns the entries of a project with start <= activity_time < end,
	// newest first.
	ListBetweenTx(ctx context.Context, tx pgx.Tx, projectID int64, start, end time.Time) ([]domain.AuditEntry, error)
	InsertEntriesTx(ctx context.Context, tx pgx.Tx, entries []domain.AuditEntry) error
	// DeleteBefore removes entries whose activity_time is before cutoff.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ProjectFinder resolves a project on behalf of a requester inside tx.
// It fails with a project NotFoundError or domain.ErrUnauthorized.
type ProjectFinder interface {
	GetProjectTx(ctx context.Context, tx pgx.Tx, id int64, requester string) (*domain.Project, error)
}
