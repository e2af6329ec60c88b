package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"govdash/internal/action/metrics"
	"govdash/internal/action/models"
	"govdash/internal/action/service/mocks"
	"govdash/internal/action/store"
	"govdash/internal/backend"
	"govdash/internal/region"
	"govdash/pkg/domain"
	dErrors "govdash/pkg/domain-errors"
	"govdash/pkg/platform/sentinel"
	"govdash/pkg/requestcontext"
)

var (
	policymaker = domain.Principal{UserID: "admin", Role: domain.RolePolicymaker}
	fieldWorker = domain.Principal{UserID: "field", Role: domain.RoleFieldWorker}
	fixedNow    = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
)

func uttarPradesh() region.Data {
	return region.Data{
		ID:             "UTT",
		Name:           "uttar_pradesh",
		EnrolmentRate:  1200,
		Alerts:         []string{"alert_gen"},
		Recommendation: "rec_gen",
	}
}

type ServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	store   *mocks.MockStore
	backend *mocks.MockBackend
	metrics *metrics.Metrics
	svc     *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.backend = mocks.NewMockBackend(s.ctrl)
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	s.svc = New(s.store, s.backend, WithMetrics(s.metrics))
	s.ctx = requestcontext.WithTime(context.Background(), fixedNow)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) TestInitiate() {
	s.Run("creates action through backend and caches it", func() {
		s.store.EXPECT().LatestForRegion(gomock.Any(), "UTT").Return(nil, sentinel.ErrNotFound)
		s.backend.EXPECT().CreateAction(gomock.Any(), backend.CreateActionRequest{
			RegionID:       "UTT",
			RegionName:     "Uttar Pradesh",
			Recommendation: "rec_gen",
			TriggerReason:  "alert_gen",
			UserID:         "admin",
			UserRole:       "policymaker",
		}).Return(&backend.CreateActionResponse{Success: true, ID: "act-1"}, nil)
		s.store.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, a *models.GovernanceAction) error {
				s.Equal("act-1", a.ID)
				s.Equal(models.StatusInitiated, a.Status)
				s.True(a.Timestamp.Equal(fixedNow))
				return nil
			})

		a, created, err := s.svc.Initiate(s.ctx, models.InitiateRequest{Region: uttarPradesh(), Initiator: policymaker})
		s.Require().NoError(err)
		s.True(created)
		s.Equal("act-1", a.ID)
		s.Equal("Uttar Pradesh", a.RegionName)
		s.Equal("rec_gen", a.RecommendationKey)
		s.Equal(domain.RolePolicymaker, a.InitiatedByUserRole)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.Initiations.WithLabelValues("created")))
	})

	s.Run("existing action is a no-op", func() {
		existing := &models.GovernanceAction{ID: "act-0", RegionID: "UTT", Status: models.StatusPlanned}
		s.store.EXPECT().LatestForRegion(gomock.Any(), "UTT").Return(existing, nil)

		a, created, err := s.svc.Initiate(s.ctx, models.InitiateRequest{Region: uttarPradesh(), Initiator: policymaker})
		s.Require().NoError(err)
		s.False(created)
		s.Equal("act-0", a.ID)
	})

	s.Run("no alerts records a manual trigger", func() {
		r := uttarPradesh()
		r.Alerts = nil
		s.store.EXPECT().LatestForRegion(gomock.Any(), "UTT").Return(nil, sentinel.ErrNotFound)
		s.backend.EXPECT().CreateAction(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req backend.CreateActionRequest) (*backend.CreateActionResponse, error) {
				s.Equal(models.ManualTrigger, req.TriggerReason)
				return &backend.CreateActionResponse{Success: true, ID: "act-2"}, nil
			})
		s.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

		a, _, err := s.svc.Initiate(s.ctx, models.InitiateRequest{Region: r, Initiator: policymaker})
		s.Require().NoError(err)
		s.Equal(models.ManualTrigger, a.TriggerReason)
	})

	s.Run("non-policymaker is forbidden", func() {
		_, _, err := s.svc.Initiate(s.ctx, models.InitiateRequest{Region: uttarPradesh(), Initiator: fieldWorker})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("missing region id is rejected", func() {
		_, _, err := s.svc.Initiate(s.ctx, models.InitiateRequest{Initiator: policymaker})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("backend rejection surfaces its detail and caches nothing", func() {
		s.store.EXPECT().LatestForRegion(gomock.Any(), "UTT").Return(nil, sentinel.ErrNotFound)
		s.backend.EXPECT().CreateAction(gomock.Any(), gomock.Any()).
			Return(nil, backend.NewStatusError("/api/create-action", 422, "region_id missing"))

		_, _, err := s.svc.Initiate(s.ctx, models.InitiateRequest{Region: uttarPradesh(), Initiator: policymaker})
		s.Require().Error(err)
		de, ok := dErrors.As(err)
		s.Require().True(ok)
		s.Equal(dErrors.CodeBadRequest, de.Code)
		s.Equal("region_id missing", de.Message)
	})

	s.Run("backend outage is unavailable", func() {
		s.store.EXPECT().LatestForRegion(gomock.Any(), "UTT").Return(nil, sentinel.ErrNotFound)
		s.backend.EXPECT().CreateAction(gomock.Any(), gomock.Any()).
			Return(nil, backend.NewStatusError("/api/create-action", 503, ""))

		_, _, err := s.svc.Initiate(s.ctx, models.InitiateRequest{Region: uttarPradesh(), Initiator: policymaker})
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	s.Run("store read failure is reported", func() {
		s.store.EXPECT().LatestForRegion(gomock.Any(), "UTT").Return(nil, errors.New("boom"))

		_, _, err := s.svc.Initiate(s.ctx, models.InitiateRequest{Region: uttarPradesh(), Initiator: policymaker})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

// slowBackend blocks until released so concurrent callers pile onto one call.
type slowBackend struct {
	calls   atomic.Int32
	release chan struct{}
}

func (b *slowBackend) CreateAction(_ context.Context, _ backend.CreateActionRequest) (*backend.CreateActionResponse, error) {
	b.calls.Add(1)
	<-b.release
	return &backend.CreateActionResponse{Success: true, ID: "act-shared"}, nil
}

func (s *ServiceSuite) TestInitiateCoalescesConcurrentCalls() {
	be := &slowBackend{release: make(chan struct{})}
	st := store.NewInMemoryStore()
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	svc := New(st, be, WithMetrics(m))

	const callers = 8
	type outcome struct {
		id      string
		created bool
	}
	var wg sync.WaitGroup
	results := make(chan outcome, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, created, err := svc.Initiate(context.Background(), models.InitiateRequest{Region: uttarPradesh(), Initiator: policymaker})
			if err == nil {
				results <- outcome{id: a.ID, created: created}
			}
		}()
	}

	s.Eventually(func() bool { return be.calls.Load() > 0 }, 2*time.Second, 5*time.Millisecond)
	close(be.release)
	wg.Wait()
	close(results)

	createdCount := 0
	received := 0
	for r := range results {
		received++
		s.Equal("act-shared", r.id)
		if r.created {
			createdCount++
		}
	}
	s.Equal(callers, received)
	s.Equal(1, createdCount, "only the caller that reached the backend reports a new action")
	s.Equal(int32(1), be.calls.Load())
	s.Equal(1.0, testutil.ToFloat64(m.Initiations.WithLabelValues("created")))
	s.Equal(float64(callers-1), testutil.ToFloat64(m.Initiations.WithLabelValues("existing")))

	list, err := st.List(context.Background())
	s.Require().NoError(err)
	s.Len(list, 1)

	s.Run("later call is a no-op", func() {
		_, created, err := svc.Initiate(context.Background(), models.InitiateRequest{Region: uttarPradesh(), Initiator: policymaker})
		s.Require().NoError(err)
		s.False(created)
		s.Equal(int32(1), be.calls.Load())
	})
}

func (s *ServiceSuite) TestLatestForRegion() {
	s.store.EXPECT().LatestForRegion(gomock.Any(), "BIH").Return(nil, sentinel.ErrNotFound)
	a, err := s.svc.LatestForRegion(s.ctx, "BIH")
	s.NoError(err)
	s.Nil(a)

	s.store.EXPECT().LatestForRegion(gomock.Any(), "BIH").Return(nil, sentinel.ErrUnavailable)
	_, err = s.svc.LatestForRegion(s.ctx, "BIH")
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func (s *ServiceSuite) TestUpdateStatus() {
	s.Run("forward step is saved", func() {
		s.store.EXPECT().Get(gomock.Any(), "act-1").
			Return(&models.GovernanceAction{ID: "act-1", Status: models.StatusInitiated}, nil)
		s.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

		a, err := s.svc.UpdateStatus(s.ctx, "act-1", models.StatusUnderReview)
		s.Require().NoError(err)
		s.Equal(models.StatusUnderReview, a.Status)
	})

	s.Run("backward step is rejected", func() {
		s.store.EXPECT().Get(gomock.Any(), "act-1").
			Return(&models.GovernanceAction{ID: "act-1", Status: models.StatusPlanned}, nil)

		_, err := s.svc.UpdateStatus(s.ctx, "act-1", models.StatusInitiated)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("unknown action", func() {
		s.store.EXPECT().Get(gomock.Any(), "nope").Return(nil, sentinel.ErrNotFound)

		_, err := s.svc.UpdateStatus(s.ctx, "nope", models.StatusPlanned)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
