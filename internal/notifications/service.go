package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/bissquit/journal-templates/internal/domain"
	"github.com/bissquit/journal-templates/internal/pkg/ctxlog"
	"github.com/bissquit/journal-templates/internal/pkg/postgres"
)

// Pagination constants.
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// Service implements notification business logic.
type Service struct {
	repo     Repository
	renderer *Renderer
	now      func() time.Time
}

// NewService creates a new notifications service.
func NewService(repo Repository, renderer *Renderer) *Service {
	return &Service{
		repo:     repo,
		renderer: renderer,
		now:      time.Now,
	}
}

// Inform stores one notification per event, addressed to the event recipient.
// All notifications of a call are stored together or not at all.
func (s *Service) Inform(ctx context.Context, originator string, events []domain.NotificationEvent) error {
	if len(events) == 0 {
		return nil
	}

	now := s.now().UTC()
	notifications := make([]*domain.Notification, 0, len(events))
	for _, e := range events {
		title, content, err := s.renderer.Render(TypeSubscriptionRemoved, RenderData{
			Originator:   originator,
			Recipient:    e.Recipient,
			CategoryName: e.CategoryName,
			CreatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("render notification: %w", err)
		}
		notifications = append(notifications, &domain.Notification{
			TargetUser: e.Recipient,
			Originator: originator,
			Title:      title,
			Content:    content,
			ContentID:  e.CategoryID,
			Type:       TypeSubscriptionRemoved,
		})
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer postgres.Rollback(ctx, tx)

	for _, n := range notifications {
		if err := s.repo.CreateTx(ctx, tx, n); err != nil {
			return fmt.Errorf("create notification for %s: %w", n.TargetUser, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	recordCreated(TypeSubscriptionRemoved, len(notifications))
	ctxlog.FromContext(ctx).Info("notifications created",
		"originator", originator, "count", len(notifications))
	return nil
}

// ListForUser returns the newest notifications addressed to username.
func (s *Service) ListForUser(ctx context.Context, username string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.repo.ListForUser(ctx, username, limit)
}

// DeleteBefore removes notifications created before cutoff.
func (s *Service) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := s.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete notifications: %w", err)
	}
	return n, nil
}
