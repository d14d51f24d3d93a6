// Package projects resolves projects and checks who may read them.
package projects

import (
	"context"

	"github.com/bissquit/journal-templates/internal/domain"
	"github.com/jackc/pgx/v5"
)

// Repository defines the interface for project data operations.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	GetByIDTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.Project, error)
	IsMemberTx(ctx context.Context, tx pgx.Tx, projectID int64, username string) (bool, error)
}
