package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"govdash/internal/auth/metrics"
	"govdash/internal/auth/models"
	"govdash/internal/backend"
	"govdash/pkg/domain"
	dErrors "govdash/pkg/domain-errors"
	"govdash/pkg/platform/sentinel"
	"govdash/pkg/requestcontext"
)

// Authenticator checks credentials against the backend.
type Authenticator interface {
	Login(ctx context.Context, userID, password string) (*backend.User, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	GenerateAccessToken(p domain.Principal, name string, now time.Time, expiresIn time.Duration) (string, time.Time, error)
}

// RevocationList records signed-out tokens.
type RevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
}

// Service signs users in through the backend and issues bearer tokens.
type Service struct {
	auth     Authenticator
	tokens   TokenIssuer
	trl      RevocationList
	tokenTTL time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Service.
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

// WithTokenTTL sets how long an issued token is valid (default 8h).
func WithTokenTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.tokenTTL = d
		}
	}
}

func New(auth Authenticator, tokens TokenIssuer, trl RevocationList, opts ...Option) *Service {
	s := &Service{
		auth:     auth,
		tokens:   tokens,
		trl:      trl,
		tokenTTL: 8 * time.Hour,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login exchanges credentials for a signed session token. A backend
// rejection is returned as CodeUnauthorized carrying the backend's detail.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.Session, error) {
	user, err := s.auth.Login(ctx, req.UserID, req.Password)
	if err != nil {
		return nil, s.translateLoginError(ctx, req.UserID, err)
	}

	role, err := domain.ParseRole(user.Role)
	if err != nil {
		s.metrics.IncrementLogin("rejected")
		s.logger.WarnContext(ctx, "login rejected - unsupported role",
			"user_id", user.ID,
			"role", user.Role,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "account role is not supported by this dashboard")
	}

	principal := domain.Principal{UserID: user.ID, Role: role}
	token, expiresAt, err := s.tokens.GenerateAccessToken(principal, user.Name, requestcontext.Now(ctx), s.tokenTTL)
	if err != nil {
		s.metrics.IncrementLogin("error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session token")
	}

	s.metrics.IncrementLogin("success")
	s.logger.InfoContext(ctx, "user signed in",
		"user_id", user.ID,
		"role", role.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return &models.Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      models.User{ID: user.ID, Role: role.String(), Name: user.Name},
	}, nil
}

// Logout revokes the token identified by jti for the rest of its lifetime.
// An already expired token needs no revocation.
func (s *Service) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "token has no id")
	}
	ttl := expiresAt.Sub(requestcontext.Now(ctx))
	if ttl <= 0 {
		return nil
	}
	if err := s.trl.RevokeToken(ctx, jti, ttl); err != nil {
		s.logger.ErrorContext(ctx, "failed to add token to revocation list",
			"error", err,
			"jti", jti,
			"request_id", requestcontext.RequestID(ctx),
		)
		if errors.Is(err, sentinel.ErrUnavailable) {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "session store unavailable")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke session")
	}
	s.metrics.IncrementLogout()
	return nil
}

func (s *Service) translateLoginError(ctx context.Context, userID string, err error) error {
	requestID := requestcontext.RequestID(ctx)
	switch {
	case errors.Is(err, sentinel.ErrRejected), errors.Is(err, sentinel.ErrNotFound):
		s.metrics.IncrementLogin("rejected")
		s.logger.WarnContext(ctx, "login rejected by backend",
			"user_id", userID,
			"request_id", requestID,
		)
		msg := backend.Detail(err)
		if msg == "" {
			msg = "invalid credentials"
		}
		return dErrors.New(dErrors.CodeUnauthorized, msg)
	case errors.Is(err, context.DeadlineExceeded):
		s.metrics.IncrementLogin("error")
		return dErrors.Wrap(err, dErrors.CodeTimeout, "authentication backend timed out")
	default:
		s.metrics.IncrementLogin("error")
		s.logger.ErrorContext(ctx, "authentication backend unavailable",
			"error", err,
			"request_id", requestID,
		)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "authentication backend unavailable")
	}
}
