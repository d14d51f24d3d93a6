// Package notifications stores messages for users and renders them from events.
package notifications

import (
	"context"
	"time"

	"github.com/bissquit/journal-templates/internal/domain"
	"github.com/jackc/pgx/v5"
)

// Repository defines the interface for notifications data access.
type Repository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	CreateTx(ctx context.Context, tx pgx.Tx, n *domain.Notification) error

	ListForUser(ctx context.Context, username string, limit int) ([]domain.Notification, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
