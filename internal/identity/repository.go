// Package identity resolves users and authenticates their access tokens.
package identity

import (
	"context"

	"github.com/bissquit/journal-templates/internal/domain"
)

// Repository defines the interface for user data operations.
type Repository interface {
	GetUserByName(ctx context.Context, name string) (*domain.User, error)
}
