package identity

import (
	"context"
	"strings"

	"github.com/bissquit/journal-templates/internal/domain"
)

// Service implements user lookups.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetUserByName returns the user with the given name. Names are matched exactly.
func (s *Service) GetUserByName(ctx context.Context, name string) (*domain.User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewNotFound(domain.EntityUser, name)
	}
	return s.repo.GetUserByName(ctx, name)
}
