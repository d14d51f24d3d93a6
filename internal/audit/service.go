package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/bissquit/journal-templates/internal/domain"
	"github.com/bissquit/journal-templates/internal/pkg/ctxlog"
	"github.com/bissquit/journal-templates/internal/pkg/postgres"
	"github.com/google/uuid"
)

// Service implements audit ingest and history queries.
type Service struct {
	repo     Repository
	projects ProjectFinder
}

// NewService creates a new audit service.
func NewService(repo Repository, projects ProjectFinder) *Service {
	return &Service{repo: repo, projects: projects}
}

// Create persists events as one batch. Either every event is stored or none is.
func (s *Service) Create(ctx context.Context, events []domain.AuditableEvent) error {
	if len(events) == 0 {
		return nil
	}

	batchID := uuid.NewString()
	entries := make([]domain.AuditEntry, 0, len(events))
	for _, e := range events {
		entries = append(entries, e.ToEntry(batchID))
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer postgres.Rollback(ctx, tx)

	if err := s.repo.InsertEntriesTx(ctx, tx, entries); err != nil {
		return fmt.Errorf("insert audit entries: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	entriesIngested.Add(float64(len(entries)))
	ctxlog.FromContext(ctx).Info("audit entries ingested", "batch_id", batchID, "count", len(entries))
	return nil
}

// GetHistory returns the activities of a project between the start of startDate
// and the end of endDate in timezone, newest first. History of shared projects is
// always empty, whatever the dates.
func (s *Service) GetHistory(ctx context.Context, projectID int64, timezone, startDate, endDate, requester string) ([]domain.Activity, error) {
	tx, err := s.repo.BeginSnapshotTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer postgres.Rollback(ctx, tx)

	project, err := s.projects.GetProjectTx(ctx, tx, projectID, requester)
	if err != nil {
		historyQueries.WithLabelValues("rejected").Inc()
		return nil, err
	}

	activities := make([]domain.Activity, 0)
	if project.Shared {
		historyQueries.WithLabelValues("shared").Inc()
		return activities, nil
	}

	window, err := ResolveWindow(timezone, startDate, endDate)
	if err != nil {
		historyQueries.WithLabelValues("invalid").Inc()
		return nil, err
	}
	if window.IsEmpty() {
		historyQueries.WithLabelValues("ok").Inc()
		return activities, nil
	}

	entries, err := s.repo.ListBetweenTx(ctx, tx, projectID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	for _, e := range entries {
		activities = append(activities, e.ToActivity())
	}

	historyQueries.WithLabelValues("ok").Inc()
	ctxlog.FromContext(ctx).Debug("history resolved",
		"project_id", projectID,
		"start", window.Start,
		"end", window.End,
		"activities", len(activities),
	)
	return activities, nil
}

// DeleteBefore removes entries whose activity happened before cutoff.
func (s *Service) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := s.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete audit entries: %w", err)
	}
	return n, nil
}
