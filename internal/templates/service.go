package templates

import (
	"context"
	"fmt"
	"strings"

	"github.com/bissquit/journal-templates/internal/domain"
	"github.com/bissquit/journal-templates/internal/pkg/ctxlog"
	"github.com/bissquit/journal-templates/internal/pkg/postgres"
)

// Service implements template business logic.
type Service struct {
	repo Repository
}

// NewService creates a new templates service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetCategory returns the category with the given id.
func (s *Service) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	return s.repo.GetCategory(ctx, id)
}

// KeywordsForSelections returns the keywords attached to the given selections.
func (s *Service) KeywordsForSelections(ctx context.Context, selectionIDs []int64) ([]domain.Keyword, error) {
	if len(selectionIDs) == 0 {
		return []domain.Keyword{}, nil
	}
	return s.repo.KeywordsForSelections(ctx, selectionIDs)
}

// CreateStep creates an empty step.
func (s *Service) CreateStep(ctx context.Context, name string) (*domain.Step, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyStepName
	}

	step := &domain.Step{
		Name:               name,
		Choices:            []domain.Choice{},
		ExcludedSelections: []int64{},
	}
	if err := s.repo.CreateStep(ctx, step); err != nil {
		return nil, fmt.Errorf("create step: %w", err)
	}

	ctxlog.FromContext(ctx).Info("step created", "step_id", step.ID, "name", step.Name)
	return step, nil
}

// GetStep returns a step with its choices.
func (s *Service) GetStep(ctx context.Context, id int64) (*domain.Step, error) {
	return s.repo.GetStep(ctx, id)
}

// UpdateChoices replaces the choices of a step with the existing choices among
// choiceIDs, in request order without repeats.
func (s *Service) UpdateChoices(ctx context.Context, stepID int64, choiceIDs []int64) (*domain.Step, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer postgres.Rollback(ctx, tx)

	if err := s.repo.LockStepTx(ctx, tx, stepID); err != nil {
		return nil, err
	}

	requested := firstSeen(choiceIDs)
	found, err := s.repo.ExistingChoiceIDsTx(ctx, tx, requested)
	if err != nil {
		return nil, fmt.Errorf("resolve choices: %w", err)
	}
	existing := keepFound(requested, found)
	if err := s.repo.SetStepChoicesTx(ctx, tx, stepID, existing); err != nil {
		return nil, fmt.Errorf("set step choices: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	ctxlog.FromContext(ctx).Info("step choices updated",
		"step_id", stepID, "requested", len(choiceIDs), "applied", len(existing))
	return s.repo.GetStep(ctx, stepID)
}

// UpdateExcludedSelections replaces the excluded selections of a step with the
// existing selections among selectionIDs. Unlike subscriptions, the previous
// value is discarded rather than merged.
func (s *Service) UpdateExcludedSelections(ctx context.Context, stepID int64, selectionIDs []int64) (*domain.Step, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer postgres.Rollback(ctx, tx)

	if err := s.repo.LockStepTx(ctx, tx, stepID); err != nil {
		return nil, err
	}

	existing, err := s.repo.ExistingSelectionIDsTx(ctx, tx, domain.NewSelectionSet(selectionIDs...).IDs())
	if err != nil {
		return nil, fmt.Errorf("resolve selections: %w", err)
	}
	if err := s.repo.SetExcludedSelectionsTx(ctx, tx, stepID, existing); err != nil {
		return nil, fmt.Errorf("set excluded selections: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	ctxlog.FromContext(ctx).Info("step excluded selections replaced",
		"step_id", stepID, "requested", len(selectionIDs), "applied", len(existing))
	return s.repo.GetStep(ctx, stepID)
}

// GetStepWithExcludedSelections returns a step together with its resolved
// excluded selections.
func (s *Service) GetStepWithExcludedSelections(ctx context.Context, stepID int64) (*domain.StepWithExclusions, error) {
	step, err := s.repo.GetStep(ctx, stepID)
	if err != nil {
		return nil, err
	}

	excluded := []domain.Selection{}
	if len(step.ExcludedSelections) > 0 {
		excluded, err = s.repo.GetSelections(ctx, step.ExcludedSelections)
		if err != nil {
			return nil, fmt.Errorf("get excluded selections: %w", err)
		}
	}

	return &domain.StepWithExclusions{Step: *step, Excluded: excluded}, nil
}

// firstSeen drops repeated ids, keeping the first occurrence of each.
func firstSeen(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// keepFound returns the ids of requested that are in found, in requested order.
func keepFound(requested, found []int64) []int64 {
	ok := make(map[int64]struct{}, len(found))
	for _, id := range found {
		ok[id] = struct{}{}
	}
	out := make([]int64, 0, len(found))
	for _, id := range requested {
		if _, exists := ok[id]; exists {
			out = append(out, id)
		}
	}
	return out
}
