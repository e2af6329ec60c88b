package service

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"govdash/internal/fieldwork/metrics"
	"govdash/internal/fieldwork/models"
	"govdash/internal/fieldwork/store"
	"govdash/pkg/domain"
	dErrors "govdash/pkg/domain-errors"
)

var (
	worker  = domain.Principal{UserID: "field", Role: domain.RoleFieldWorker}
	worker2 = domain.Principal{UserID: "field2", Role: domain.RoleFieldWorker}
)

type ServiceSuite struct {
	suite.Suite
	metrics *metrics.Metrics
	svc     *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	s.svc = New(store.NewInMemoryStore(), WithMetrics(s.metrics), WithZone("Ward 7"))
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestSeededChecklist() {
	list, err := s.svc.Checklist(s.ctx, worker)
	s.Require().NoError(err)
	s.Equal("Ward 7", list.Zone)
	s.Equal(2, list.Pending)
	s.Require().Len(list.Tasks, 3)
	s.Equal("Ramesh Kumar (Elderly)", list.Tasks[0].Name)
	s.True(list.Tasks[0].ShowUrgent())
	s.Equal(models.TaskCompleted, list.Tasks[2].Status)
	s.Equal(88, list.Performance.CoveragePercent)
}

func (s *ServiceSuite) TestCompleteIsIdempotent() {
	res, err := s.svc.Complete(s.ctx, worker, 1)
	s.Require().NoError(err)
	s.True(res.Changed)
	s.Equal(models.TaskCompleted, res.Task.Status)
	s.Equal(1, res.Pending)
	s.False(res.Task.ShowUrgent())

	res, err = s.svc.Complete(s.ctx, worker, 1)
	s.Require().NoError(err)
	s.False(res.Changed)
	s.Equal(1, res.Pending)

	s.Equal(1.0, testutil.ToFloat64(s.metrics.Completions.WithLabelValues("completed")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Completions.WithLabelValues("already_completed")))
}

func (s *ServiceSuite) TestChecklistsArePerUser() {
	_, err := s.svc.Complete(s.ctx, worker, 2)
	s.Require().NoError(err)

	mine, err := s.svc.Checklist(s.ctx, worker)
	s.Require().NoError(err)
	theirs, err := s.svc.Checklist(s.ctx, worker2)
	s.Require().NoError(err)
	s.Equal(1, mine.Pending)
	s.Equal(2, theirs.Pending)
}

func (s *ServiceSuite) TestErrors() {
	_, err := s.svc.Complete(s.ctx, worker, 99)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.svc.Checklist(s.ctx, domain.Principal{UserID: "admin", Role: domain.RolePolicymaker})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = s.svc.Complete(s.ctx, domain.Principal{}, 1)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestConcurrentCompletionsChangeOnce() {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		changed int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.svc.Complete(s.ctx, worker, 2)
			if err == nil && res.Changed {
				mu.Lock()
				changed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(1, changed)
}
