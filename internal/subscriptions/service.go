package subscriptions

import (
	"context"
	"fmt"

	"github.com/bissquit/journal-templates/internal/domain"
	"github.com/bissquit/journal-templates/internal/pkg/ctxlog"
	"github.com/bissquit/journal-templates/internal/pkg/postgres"
)

// Service reconciles subscription state and removes subscriptions.
type Service struct {
	repo       Repository
	projects   ProjectResolver
	users      UserResolver
	categories CategoryResolver
	keywords   KeywordIndex
}

// NewService creates a new subscriptions service.
func NewService(
	repo Repository,
	projects ProjectResolver,
	users UserResolver,
	categories CategoryResolver,
	keywords KeywordIndex,
) *Service {
	return &Service{
		repo:       repo,
		projects:   projects,
		users:      users,
		categories: categories,
		keywords:   keywords,
	}
}

// RemoveParams identifies one subscription to remove.
type RemoveParams struct {
	Username        string
	CategoryID      int64
	MetadataKeyword string
}

// Reconcile subscribes user to every keyword carried by selectionIDs within
// categoryID. Existing subscriptions keep their selections and gain the new ones,
// so repeating a call, or replaying calls in another order, yields the same state.
func (s *Service) Reconcile(ctx context.Context, user domain.User, categoryID int64, selectionIDs []int64, projectID int64) error {
	selections := domain.NewSelectionSet(selectionIDs...)

	project, err := s.projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return err
	}

	keywords, err := s.keywords.KeywordsForSelections(ctx, selections.IDs())
	if err != nil {
		return fmt.Errorf("resolve keywords: %w", err)
	}
	keywordNames := distinctKeywords(keywords)
	if len(keywordNames) == 0 {
		ctxlog.FromContext(ctx).Debug("no keywords for selections, nothing to reconcile",
			"user", user.Name, "category_id", categoryID)
		return nil
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer postgres.Rollback(ctx, tx)

	var category *domain.Category
	created := make([]bool, 0, len(keywordNames))

	for _, keyword := range keywordNames {
		key := domain.SubscriptionKey{UserID: user.ID, CategoryID: categoryID, Keyword: keyword}

		exists, err := s.repo.ExistsTx(ctx, tx, key)
		if err != nil {
			return fmt.Errorf("check subscription %s: %w", key, err)
		}

		// The category is only needed, and only validated, when a row is created.
		if !exists && category == nil {
			category, err = s.categories.GetCategory(ctx, categoryID)
			if err != nil {
				return err
			}
		}

		sub := &domain.Subscription{
			Key:        key,
			UserID:     user.ID,
			Category:   domain.Category{ID: categoryID},
			ProjectID:  project.ID,
			Keyword:    keyword,
			Selections: selections,
		}
		if category != nil {
			sub.Category = *category
		}

		if err := s.repo.MergeSelectionsTx(ctx, tx, sub); err != nil {
			return fmt.Errorf("merge subscription %s: %w", key, err)
		}
		created = append(created, !exists)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	for _, c := range created {
		recordReconciled(c)
	}
	ctxlog.FromContext(ctx).Info("subscriptions reconciled",
		"user", user.Name,
		"category_id", categoryID,
		"keywords", len(keywordNames),
		"selections", selections.Len(),
	)
	return nil
}

// RemoveSubscriptions deletes the given subscriptions as one all-or-nothing batch
// and returns, in input order, an event for every subscription that requester
// removed on behalf of someone else.
//
// requester is not required to own the subscriptions it removes.
func (s *Service) RemoveSubscriptions(ctx context.Context, requester string, params []RemoveParams) ([]domain.NotificationEvent, error) {
	events := make([]domain.NotificationEvent, 0, len(params))
	if len(params) == 0 {
		return events, nil
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer postgres.Rollback(ctx, tx)

	notified := make([]bool, 0, len(params))
	for _, p := range params {
		category, err := s.categories.GetCategory(ctx, p.CategoryID)
		if err != nil {
			return nil, err
		}

		user, err := s.users.GetUserByName(ctx, p.Username)
		if err != nil {
			return nil, err
		}

		key := domain.SubscriptionKey{UserID: user.ID, CategoryID: p.CategoryID, Keyword: p.MetadataKeyword}
		if err := s.repo.DeleteTx(ctx, tx, key); err != nil {
			return nil, err
		}

		event, ok := RemovalEvent(requester, p.Username, *category)
		if ok {
			events = append(events, event)
		}
		notified = append(notified, ok)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	for _, n := range notified {
		recordRemoved(n)
	}
	ctxlog.FromContext(ctx).Info("subscriptions removed",
		"requester", requester,
		"removed", len(params),
		"events", len(events),
	)
	return events, nil
}

// ListSubscriptions returns every subscription held by username.
func (s *Service) ListSubscriptions(ctx context.Context, username string) ([]domain.Subscription, error) {
	user, err := s.users.GetUserByName(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, user.ID)
}

// distinctKeywords returns keyword names in first-seen order without repeats.
func distinctKeywords(keywords []domain.Keyword) []string {
	seen := make(map[string]struct{}, len(keywords))
	names := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if _, ok := seen[k.Keyword]; ok {
			continue
		}
		seen[k.Keyword] = struct{}{}
		names = append(names, k.Keyword)
	}
	return names
}
