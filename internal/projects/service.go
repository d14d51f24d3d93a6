package projects

import (
	"context"
	"fmt"

	"github.com/bissquit/journal-templates/internal/domain"
	"github.com/jackc/pgx/v5"
)

// Service implements project lookups.
type Service struct {
	repo Repository
}

// NewService creates a new projects service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetProjectByID returns the project with the given id without an access check.
func (s *Service) GetProjectByID(ctx context.Context, id int64) (*domain.Project, error) {
	return s.repo.GetByID(ctx, id)
}

// GetProjectTx returns the project with the given id if requester owns it or is
// one of its members. Otherwise it fails with domain.ErrUnauthorized.
func (s *Service) GetProjectTx(ctx context.Context, tx pgx.Tx, id int64, requester string) (*domain.Project, error) {
	project, err := s.repo.GetByIDTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if project.Owner == requester {
		return project, nil
	}

	member, err := s.repo.IsMemberTx(ctx, tx, id, requester)
	if err != nil {
		return nil, fmt.Errorf("check project membership: %w", err)
	}
	if !member {
		return nil, fmt.Errorf("project %d for %s: %w", id, requester, domain.ErrUnauthorized)
	}
	return project, nil
}
