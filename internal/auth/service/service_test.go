package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"govdash/internal/auth/metrics"
	"govdash/internal/auth/models"
	"govdash/internal/auth/service/mocks"
	"govdash/internal/backend"
	"govdash/pkg/domain"
	dErrors "govdash/pkg/domain-errors"
	"govdash/pkg/platform/sentinel"
	"govdash/pkg/requestcontext"
)

var fixedNow = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

type ServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	auth    *mocks.MockAuthenticator
	tokens  *mocks.MockTokenIssuer
	trl     *mocks.MockRevocationList
	metrics *metrics.Metrics
	svc     *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.auth = mocks.NewMockAuthenticator(s.ctrl)
	s.tokens = mocks.NewMockTokenIssuer(s.ctrl)
	s.trl = mocks.NewMockRevocationList(s.ctrl)
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	s.svc = New(s.auth, s.tokens, s.trl, WithMetrics(s.metrics), WithTokenTTL(time.Hour))
	s.ctx = requestcontext.WithTime(context.Background(), fixedNow)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) TestLogin() {
	req := models.LoginRequest{UserID: "admin", Password: "admin123"}

	s.Run("issues a token for a known role", func() {
		s.auth.EXPECT().Login(gomock.Any(), "admin", "admin123").
			Return(&backend.User{ID: "admin", Role: "policymaker", Name: "Asha"}, nil)
		s.tokens.EXPECT().GenerateAccessToken(
			domain.Principal{UserID: "admin", Role: domain.RolePolicymaker}, "Asha", fixedNow, time.Hour,
		).Return("signed", fixedNow.Add(time.Hour), nil)

		sess, err := s.svc.Login(s.ctx, req)
		s.Require().NoError(err)
		s.Equal("signed", sess.Token)
		s.Equal(fixedNow.Add(time.Hour), sess.ExpiresAt)
		s.Equal(models.User{ID: "admin", Role: "policymaker", Name: "Asha"}, sess.User)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.Logins.WithLabelValues("success")))
	})

	s.Run("bad credentials surface the backend detail", func() {
		s.auth.EXPECT().Login(gomock.Any(), "admin", "admin123").
			Return(nil, fmt.Errorf("login: %w", backend.NewStatusError(backend.EndpointLogin, http.StatusUnauthorized, "Invalid credentials")))

		_, err := s.svc.Login(s.ctx, req)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		de, ok := dErrors.As(err)
		s.Require().True(ok)
		s.Equal("Invalid credentials", de.Message)
	})

	s.Run("rejection without detail gets a generic message", func() {
		s.auth.EXPECT().Login(gomock.Any(), "admin", "admin123").Return(nil, sentinel.ErrRejected)

		_, err := s.svc.Login(s.ctx, req)
		de, ok := dErrors.As(err)
		s.Require().True(ok)
		s.Equal(dErrors.CodeUnauthorized, de.Code)
		s.Equal("invalid credentials", de.Message)
	})

	s.Run("unknown role is unauthorized", func() {
		s.auth.EXPECT().Login(gomock.Any(), "admin", "admin123").
			Return(&backend.User{ID: "admin", Role: "superuser"}, nil)

		_, err := s.svc.Login(s.ctx, req)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("backend outage is unavailable", func() {
		s.auth.EXPECT().Login(gomock.Any(), "admin", "admin123").
			Return(nil, fmt.Errorf("dial: %w", sentinel.ErrUnavailable))

		_, err := s.svc.Login(s.ctx, req)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	s.Run("backend timeout", func() {
		s.auth.EXPECT().Login(gomock.Any(), "admin", "admin123").Return(nil, context.DeadlineExceeded)

		_, err := s.svc.Login(s.ctx, req)
		s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
	})

	s.Run("signing failure is internal", func() {
		s.auth.EXPECT().Login(gomock.Any(), "admin", "admin123").
			Return(&backend.User{ID: "admin", Role: "policymaker"}, nil)
		s.tokens.EXPECT().GenerateAccessToken(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", time.Time{}, errors.New("bad key"))

		_, err := s.svc.Login(s.ctx, req)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestLogout() {
	s.Run("revokes for the remaining lifetime", func() {
		s.trl.EXPECT().RevokeToken(gomock.Any(), "jti-1", 45*time.Minute).Return(nil)

		s.Require().NoError(s.svc.Logout(s.ctx, "jti-1", fixedNow.Add(45*time.Minute)))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.Logouts))
	})

	s.Run("expired token is a no-op", func() {
		s.NoError(s.svc.Logout(s.ctx, "jti-2", fixedNow.Add(-time.Minute)))
	})

	s.Run("missing jti", func() {
		err := s.svc.Logout(s.ctx, "", fixedNow.Add(time.Hour))
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("store outage", func() {
		s.trl.EXPECT().RevokeToken(gomock.Any(), "jti-3", gomock.Any()).
			Return(fmt.Errorf("revoke token: %w", sentinel.ErrUnavailable))

		err := s.svc.Logout(s.ctx, "jti-3", fixedNow.Add(time.Hour))
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}
