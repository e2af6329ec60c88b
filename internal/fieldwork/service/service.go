package service

import (
	"context"
	"errors"
	"log/slog"

	"govdash/internal/fieldwork/metrics"
	"govdash/internal/fieldwork/models"
	"govdash/pkg/domain"
	dErrors "govdash/pkg/domain-errors"
	"govdash/pkg/platform/sentinel"
	"govdash/pkg/requestcontext"
)

// Store persists per-user checklists.
type Store interface {
	List(ctx context.Context, userID string) ([]models.Task, error)
	Execute(ctx context.Context, userID string, taskID int, validate func(*models.Task) error, mutate func(*models.Task)) (*models.Task, []models.Task, error)
}

type Service struct {
	store       Store
	logger      *slog.Logger
	metrics     *metrics.Metrics
	zone        string
	performance models.Performance
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithZone sets the assigned zone shown on every checklist.
func WithZone(zone string) Option {
	return func(s *Service) {
		if zone != "" {
			s.zone = zone
		}
	}
}

func WithPerformance(p models.Performance) Option {
	return func(s *Service) {
		s.performance = p
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		logger:      slog.Default(),
		zone:        "Ward 12",
		performance: models.Performance{CoveragePercent: 88, FollowUps: 12, Assisted: 45},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Checklist returns the caller's tasks in assignment order.
func (s *Service) Checklist(ctx context.Context, caller domain.Principal) (*models.Checklist, error) {
	if err := requireFieldWorker(caller); err != nil {
		return nil, err
	}
	tasks, err := s.store.List(ctx, caller.UserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tasks")
	}
	return &models.Checklist{
		UserID:      caller.UserID,
		Zone:        s.zone,
		Pending:     models.PendingCount(tasks),
		Tasks:       tasks,
		Performance: s.performance,
	}, nil
}

// Complete marks a task done. Completing a finished task is a no-op that
// reports Changed=false.
func (s *Service) Complete(ctx context.Context, caller domain.Principal, taskID int) (*models.CompleteResult, error) {
	if err := requireFieldWorker(caller); err != nil {
		return nil, err
	}

	alreadyDone := false
	task, tasks, err := s.store.Execute(ctx, caller.UserID, taskID,
		func(t *models.Task) error {
			if err := t.CanComplete(); err != nil {
				alreadyDone = true
			}
			return nil
		},
		func(t *models.Task) {
			if !alreadyDone {
				t.Status = models.TaskCompleted
			}
		},
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "task not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to complete task")
	}

	outcome := "completed"
	if alreadyDone {
		outcome = "already_completed"
	}
	s.metrics.IncrementCompletion(outcome)
	s.logger.InfoContext(ctx, "task completion",
		"user_id", caller.UserID,
		"task_id", taskID,
		"outcome", outcome,
		"request_id", requestcontext.RequestID(ctx),
	)
	return &models.CompleteResult{
		Task:    *task,
		Changed: !alreadyDone,
		Pending: models.PendingCount(tasks),
	}, nil
}

func requireFieldWorker(p domain.Principal) error {
	if p.IsZero() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if p.Role != domain.RoleFieldWorker {
		return dErrors.New(dErrors.CodeForbidden, "only field workers have a task checklist")
	}
	return nil
}
