// Package postgres provides PostgreSQL implementation of the templates repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/bissquit/journal-templates/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements templates.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetCategory retrieves a category by id.
func (r *Repository) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	query := `SELECT id, name, description FROM categories WHERE id = $1`

	var c domain.Category
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFound(domain.EntityCategory, id)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// KeywordsForSelections returns the keywords attached to the given selections.
func (r *Repository) KeywordsForSelections(ctx context.Context, selectionIDs []int64) ([]domain.Keyword, error) {
	query := `
		SELECT keyword, selection_id
		FROM selection_metadata_keywords
		WHERE selection_id = ANY($1)
		ORDER BY selection_id, keyword
	`
	rows, err := r.db.Query(ctx, query, selectionIDs)
	if err != nil {
		return nil, fmt.Errorf("query keywords: %w", err)
	}
	defer rows.Close()

	keywords := make([]domain.Keyword, 0)
	for rows.Next() {
		var k domain.Keyword
		if err := rows.Scan(&k.Keyword, &k.SelectionID); err != nil {
			return nil, fmt.Errorf("scan keyword: %w", err)
		}
		keywords = append(keywords, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keywords: %w", err)
	}
	return keywords, nil
}

// GetSelections returns the selections with the given ids, ordered by id.
func (r *Repository) GetSelections(ctx context.Context, ids []int64) ([]domain.Selection, error) {
	query := `SELECT id, choice_id, text FROM selections WHERE id = ANY($1) ORDER BY id`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("query selections: %w", err)
	}
	defer rows.Close()

	selections := make([]domain.Selection, 0)
	for rows.Next() {
		var s domain.Selection
		if err := rows.Scan(&s.ID, &s.ChoiceID, &s.Text); err != nil {
			return nil, fmt.Errorf("scan selection: %w", err)
		}
		selections = append(selections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate selections: %w", err)
	}
	return selections, nil
}

// CreateStep creates a new step.
func (r *Repository) CreateStep(ctx context.Context, step *domain.Step) error {
	query := `
		INSERT INTO steps (name, excluded_selections)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	excluded := step.ExcludedSelections
	if excluded == nil {
		excluded = []int64{}
	}
	err := r.db.QueryRow(ctx, query, step.Name, excluded).Scan(&step.ID, &step.CreatedAt, &step.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create step: %w", err)
	}
	return nil
}

// GetStep retrieves a step with its choices and their selections.
func (r *Repository) GetStep(ctx context.Context, id int64) (*domain.Step, error) {
	query := `SELECT id, name, excluded_selections, created_at, updated_at FROM steps WHERE id = $1`

	var step domain.Step
	err := r.db.QueryRow(ctx, query, id).Scan(
		&step.ID,
		&step.Name,
		&step.ExcludedSelections,
		&step.CreatedAt,
		&step.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFound(domain.EntityStep, id)
		}
		return nil, fmt.Errorf("get step: %w", err)
	}
	if step.ExcludedSelections == nil {
		step.ExcludedSelections = []int64{}
	}

	step.Choices, err = r.stepChoices(ctx, id)
	if err != nil {
		return nil, err
	}
	return &step, nil
}

func (r *Repository) stepChoices(ctx context.Context, stepID int64) ([]domain.Choice, error) {
	query := `
		SELECT c.id, c.name, c.multiple, s.id, s.text
		FROM step_choices sc
		JOIN choices c ON c.id = sc.choice_id
		LEFT JOIN selections s ON s.choice_id = c.id
		WHERE sc.step_id = $1
		ORDER BY sc.position, c.id, s.id
	`
	rows, err := r.db.Query(ctx, query, stepID)
	if err != nil {
		return nil, fmt.Errorf("query step choices: %w", err)
	}
	defer rows.Close()

	choices := make([]domain.Choice, 0)
	for rows.Next() {
		var (
			c             domain.Choice
			selectionID   *int64
			selectionText *string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Multiple, &selectionID, &selectionText); err != nil {
			return nil, fmt.Errorf("scan step choice: %w", err)
		}

		if n := len(choices); n == 0 || choices[n-1].ID != c.ID {
			c.Selections = make([]domain.Selection, 0)
			choices = append(choices, c)
		}
		if selectionID != nil {
			last := &choices[len(choices)-1]
			last.Selections = append(last.Selections, domain.Selection{
				ID:       *selectionID,
				ChoiceID: c.ID,
				Text:     *selectionText,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate step choices: %w", err)
	}
	return choices, nil
}

// BeginTx starts a new database transaction.
func (r *Repository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.db.Begin(ctx)
}

// LockStepTx locks the step row until the transaction ends.
func (r *Repository) LockStepTx(ctx context.Context, tx pgx.Tx, stepID int64) error {
	var id int64
	err := tx.QueryRow(ctx, `SELECT id FROM steps WHERE id = $1 FOR UPDATE`, stepID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NewNotFound(domain.EntityStep, stepID)
		}
		return fmt.Errorf("lock step: %w", err)
	}
	return nil
}

// ExistingChoiceIDsTx returns the ids among ids that belong to stored choices.
func (r *Repository) ExistingChoiceIDsTx(ctx context.Context, tx pgx.Tx, ids []int64) ([]int64, error) {
	return existingIDs(ctx, tx, `SELECT id FROM choices WHERE id = ANY($1) ORDER BY id`, ids)
}

// ExistingSelectionIDsTx returns the ids among ids that belong to stored selections.
func (r *Repository) ExistingSelectionIDsTx(ctx context.Context, tx pgx.Tx, ids []int64) ([]int64, error) {
	return existingIDs(ctx, tx, `SELECT id FROM selections WHERE id = ANY($1) ORDER BY id`, ids)
}

func existingIDs(ctx context.Context, tx pgx.Tx, query string, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}
	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("query ids: %w", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("collect ids: %w", err)
	}
	return found, nil
}

// SetStepChoicesTx replaces the choices of a step, storing each one's position
// in choiceIDs.
func (r *Repository) SetStepChoicesTx(ctx context.Context, tx pgx.Tx, stepID int64, choiceIDs []int64) error {
	_, err := tx.Exec(ctx, `DELETE FROM step_choices WHERE step_id = $1`, stepID)
	if err != nil {
		return fmt.Errorf("delete step choices: %w", err)
	}

	for i, choiceID := range choiceIDs {
		_, err = tx.Exec(ctx,
			`INSERT INTO step_choices (step_id, choice_id, position) VALUES ($1, $2, $3)`,
			stepID, choiceID, i)
		if err != nil {
			return fmt.Errorf("insert step choice: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `UPDATE steps SET updated_at = NOW() WHERE id = $1`, stepID)
	if err != nil {
		return fmt.Errorf("touch step: %w", err)
	}
	return nil
}

// SetExcludedSelectionsTx overwrites the excluded selections array of a step.
func (r *Repository) SetExcludedSelectionsTx(ctx context.Context, tx pgx.Tx, stepID int64, selectionIDs []int64) error {
	if selectionIDs == nil {
		selectionIDs = []int64{}
	}
	query := `UPDATE steps SET excluded_selections = $2, updated_at = NOW() WHERE id = $1`
	result, err := tx.Exec(ctx, query, stepID, selectionIDs)
	if err != nil {
		return fmt.Errorf("update excluded selections: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFound(domain.EntityStep, stepID)
	}
	return nil
}
