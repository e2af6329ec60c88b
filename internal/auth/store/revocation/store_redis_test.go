//go:build integration

package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"govdash/internal/auth/metrics"
	"govdash/pkg/testutil/containers"
)

type RedisTRLSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	trl   *RedisTRL
	ctx   context.Context
}

func TestRedisTRLSuite(t *testing.T) {
	suite.Run(t, new(RedisTRLSuite))
}

func (s *RedisTRLSuite) SetupSuite() {
	s.ctx = context.Background()
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *RedisTRLSuite) SetupTest() {
	s.trl = NewRedisTRL(s.redis.Client,
		WithKeyPrefix("test:"+uuid.NewString()+":"),
		WithMetrics(metrics.NewWithRegisterer(prometheus.NewRegistry())),
	)
}

func (s *RedisTRLSuite) TestRevokeAndCheck() {
	s.Require().NoError(s.trl.RevokeToken(s.ctx, "jti-1", time.Minute))

	revoked, err := s.trl.IsRevoked(s.ctx, "jti-1")
	s.Require().NoError(err)
	s.True(revoked)

	revoked, err = s.trl.IsRevoked(s.ctx, "jti-2")
	s.Require().NoError(err)
	s.False(revoked)
}

func (s *RedisTRLSuite) TestEntryExpiresWithToken() {
	s.Require().NoError(s.trl.RevokeToken(s.ctx, "short", 50*time.Millisecond))
	s.Eventually(func() bool {
		revoked, err := s.trl.IsRevoked(s.ctx, "short")
		return err == nil && !revoked
	}, 2*time.Second, 25*time.Millisecond)
}
