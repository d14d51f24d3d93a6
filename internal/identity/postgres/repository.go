// Package postgres provides PostgreSQL implementation of the identity repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/bissquit/journal-templates/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements identity.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetUserByName retrieves a user by name.
func (r *Repository) GetUserByName(ctx context.Context, name string) (*domain.User, error) {
	query := `SELECT id, name FROM users WHERE name = $1`

	var u domain.User
	err := r.db.QueryRow(ctx, query, name).Scan(&u.ID, &u.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFound(domain.EntityUser, name)
		}
		return nil, fmt.Errorf("get user by name: %w", err)
	}
	return &u, nil
}
