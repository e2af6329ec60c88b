package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"govdash/internal/action/metrics"
	"govdash/internal/action/models"
	"govdash/internal/backend"
	"govdash/internal/region"
	"govdash/pkg/domain"
	dErrors "govdash/pkg/domain-errors"
	"govdash/pkg/platform/sentinel"
	"govdash/pkg/requestcontext"
)

type Store interface {
	Save(ctx context.Context, action *models.GovernanceAction) error
	Get(ctx context.Context, id string) (*models.GovernanceAction, error)
	LatestForRegion(ctx context.Context, regionID string) (*models.GovernanceAction, error)
	List(ctx context.Context) ([]*models.GovernanceAction, error)
}

// Backend is the slice of the backend client that records actions upstream.
type Backend interface {
	CreateAction(ctx context.Context, req backend.CreateActionRequest) (*backend.CreateActionResponse, error)
}

// Service records at most one governance action per region. The backend is
// the system of record; the store is the local cache consulted for
// idempotency and for the insight panel.
type Service struct {
	store   Store
	backend Backend
	logger  *slog.Logger
	metrics *metrics.Metrics
	timeout time.Duration
	group   singleflight.Group
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

// WithTimeout bounds a coalesced initiation, which outlives any single caller.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func New(store Store, be Backend, opts ...Option) *Service {
	s := &Service{
		store:   store,
		backend: be,
		logger:  slog.Default(),
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type initiateResult struct {
	action  *models.GovernanceAction
	created bool
}

// Initiate records an action for the request's region unless one already
// exists, in which case the existing action is returned with created=false.
// Concurrent calls for the same region share one backend round trip; only the
// caller that ran it reports created=true.
func (s *Service) Initiate(ctx context.Context, req models.InitiateRequest) (*models.GovernanceAction, bool, error) {
	start := time.Now()
	if req.Initiator.Role != domain.RolePolicymaker {
		return nil, false, dErrors.New(dErrors.CodeForbidden, "only policymakers can initiate actions")
	}
	if req.Region.ID == "" {
		return nil, false, dErrors.New(dErrors.CodeValidation, "region id is required")
	}

	// Detached so one caller cancelling does not fail the others sharing the call.
	shared := context.WithoutCancel(ctx)
	leader := false
	v, err, _ := s.group.Do(req.Region.ID, func() (any, error) {
		leader = true
		callCtx, cancel := context.WithTimeout(shared, s.timeout)
		defer cancel()
		return s.initiate(callCtx, req)
	})
	if err != nil {
		s.metrics.ObserveInitiate("failed", start)
		return nil, false, err
	}
	res := v.(initiateResult)
	created := res.created && leader
	outcome := "existing"
	if created {
		outcome = "created"
	}
	s.metrics.ObserveInitiate(outcome, start)

	out := *res.action
	return &out, created, nil
}

func (s *Service) initiate(ctx context.Context, req models.InitiateRequest) (initiateResult, error) {
	existing, err := s.store.LatestForRegion(ctx, req.Region.ID)
	switch {
	case err == nil:
		s.logger.InfoContext(ctx, "action already initiated",
			"region_id", req.Region.ID,
			"action_id", existing.ID,
			"request_id", requestcontext.RequestID(ctx),
		)
		return initiateResult{action: existing}, nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return initiateResult{}, translateStoreError(err, "failed to read action cache")
	}

	recommendation := req.Region.Recommendation
	displayName := region.DisplayName(req.Region.Name)
	resp, err := s.backend.CreateAction(ctx, backend.CreateActionRequest{
		RegionID:       req.Region.ID,
		RegionName:     displayName,
		Recommendation: recommendation,
		TriggerReason:  models.TriggerReason(req.Region.Alerts),
		UserID:         req.Initiator.UserID,
		UserRole:       req.Initiator.Role.String(),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "backend rejected action",
			"region_id", req.Region.ID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return initiateResult{}, translateBackendError(err)
	}

	action := &models.GovernanceAction{
		ID:                  resp.ID,
		RegionID:            req.Region.ID,
		RegionName:          displayName,
		RecommendationKey:   recommendation,
		TriggerReason:       models.TriggerReason(req.Region.Alerts),
		Timestamp:           requestcontext.Now(ctx),
		Status:              models.StatusInitiated,
		InitiatedByUserID:   req.Initiator.UserID,
		InitiatedByUserRole: req.Initiator.Role,
	}
	if err := s.store.Save(ctx, action); err != nil {
		return initiateResult{}, translateStoreError(err, "failed to cache action")
	}

	s.logger.InfoContext(ctx, "action initiated",
		"region_id", action.RegionID,
		"action_id", action.ID,
		"user_id", action.InitiatedByUserID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return initiateResult{action: action, created: true}, nil
}

// LatestForRegion returns the region's most recent action, or nil when none
// has been recorded.
func (s *Service) LatestForRegion(ctx context.Context, regionID string) (*models.GovernanceAction, error) {
	a, err := s.store.LatestForRegion(ctx, regionID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translateStoreError(err, "failed to read action cache")
	}
	return a, nil
}

// List returns every cached action, newest first.
func (s *Service) List(ctx context.Context) ([]*models.GovernanceAction, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, translateStoreError(err, "failed to list actions")
	}
	return list, nil
}

// UpdateStatus moves an action forward through review. Status never moves
// backwards or repeats.
func (s *Service) UpdateStatus(ctx context.Context, id string, next models.Status) (*models.GovernanceAction, error) {
	a, err := s.store.Get(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "action not found")
	}
	if err != nil {
		return nil, translateStoreError(err, "failed to read action")
	}
	if !a.Status.CanAdvanceTo(next) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation,
			"cannot move action from "+string(a.Status)+" to "+string(next))
	}

	a.Status = next
	if err := s.store.Save(ctx, a); err != nil {
		return nil, translateStoreError(err, "failed to update action")
	}
	s.metrics.IncrementTransition(string(next))
	s.logger.InfoContext(ctx, "action status updated",
		"action_id", id,
		"status", string(next),
		"request_id", requestcontext.RequestID(ctx),
	)
	return a, nil
}

func translateBackendError(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrRejected), errors.Is(err, sentinel.ErrNotFound):
		msg := backend.Detail(err)
		if msg == "" {
			msg = "backend rejected the action"
		}
		return dErrors.Wrap(err, dErrors.CodeBadRequest, msg)
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "backend did not respond in time")
	default:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "backend unavailable")
	}
}

func translateStoreError(err error, msg string) error {
	if errors.Is(err, sentinel.ErrUnavailable) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, msg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
