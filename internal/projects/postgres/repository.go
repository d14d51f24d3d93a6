// Package postgres provides PostgreSQL implementation of the projects repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/bissquit/journal-templates/internal/domain"
	pgutil "github.com/bissquit/journal-templates/internal/pkg/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements projects.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a project by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	return getProject(ctx, r.db, id)
}

// GetByIDTx retrieves a project by id within a transaction.
func (r *Repository) GetByIDTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.Project, error) {
	return getProject(ctx, tx, id)
}

func getProject(ctx context.Context, q pgutil.Querier, id int64) (*domain.Project, error) {
	query := `SELECT id, name, owner, shared FROM projects WHERE id = $1`

	var p domain.Project
	err := q.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Owner, &p.Shared)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFound(domain.EntityProject, id)
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

// IsMemberTx reports whether username is a member of the project.
func (r *Repository) IsMemberTx(ctx context.Context, tx pgx.Tx, projectID int64, username string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM project_members WHERE project_id = $1 AND username = $2
		)
	`
	var member bool
	if err := tx.QueryRow(ctx, query, projectID, username).Scan(&member); err != nil {
		return false, fmt.Errorf("check project member: %w", err)
	}
	return member, nil
}
