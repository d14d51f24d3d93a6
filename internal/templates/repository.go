// Package templates provides template categories, the selection keyword index
// and step management.
package templates

import (
	"context"

	"github.com/bissquit/journal-templates/internal/domain"
	"github.com/jackc/pgx/v5"
)

// Repository defines the interface for template data operations.
type Repository interface {
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	KeywordsForSelections(ctx context.Context, selectionIDs []int64) ([]domain.Keyword, error)
	GetSelections(ctx context.Context, ids []int64) ([]domain.Selection, error)

	CreateStep(ctx context.Context, step *domain.Step) error
	GetStep(ctx context.Context, id int64) (*domain.Step, error)

	// Transaction methods
	BeginTx(ctx context.Context) (pgx.Tx, error)
	// LockStepTx locks the step row for update, returning a step NotFoundError if absent.
	LockStepTx(ctx context.Context, tx pgx.Tx, stepID int64) error
	ExistingChoiceIDsTx(ctx context.Context, tx pgx.Tx, ids []int64) ([]int64, error)
	ExistingSelectionIDsTx(ctx context.Context, tx pgx.Tx, ids []int64) ([]int64, error)
	SetStepChoicesTx(ctx context.Context, tx pgx.Tx, stepID int64, choiceIDs []int64) error
	SetExcludedSelectionsTx(ctx context.Context, tx pgx.Tx, stepID int64, selectionIDs []int64) error
}
