// Package subscriptions reconciles users' keyword subscriptions for template categories.
package subscriptions

import (
	"context"

	"github.com/bissquit/journal-templates/internal/domain"
	"github.com/jackc/pgx/v5"
)

// Repository is the subscription store. It is the only writer of subscription rows.
type Repository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// ExistsTx reports whether a row is stored for key.
	ExistsTx(ctx context.Context, tx pgx.Tx, key domain.SubscriptionKey) (bool, error)
	// MergeSelectionsTx inserts sub, or, if its key is taken, replaces the stored
	// selections with their union with sub.Selections. It is a single atomic statement.
	MergeSelectionsTx(ctx context.Context, tx pgx.Tx, sub *domain.Subscription) error
	// DeleteTx removes the row for key, returning a subscription NotFoundError if absent.
	DeleteTx(ctx context.Context, tx pgx.Tx, key domain.SubscriptionKey) error

	ListByUser(ctx context.Context, userID int64) ([]domain.Subscription, error)
}

// ProjectResolver looks up projects by id.
type ProjectResolver interface {
	GetProjectByID(ctx context.Context, id int64) (*domain.Project, error)
}

// UserResolver looks up users by name.
type UserResolver interface {
	GetUserByName(ctx context.Context, name string) (*domain.User, error)
}

// CategoryResolver looks up categories by id.
type CategoryResolver interface {
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
}

// KeywordIndex maps selections to the keywords they carry.
type KeywordIndex interface {
	KeywordsForSelections(ctx context.Context, selectionIDs []int64) ([]domain.Keyword, error)
}
