//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"govdash/internal/action/models"
	"govdash/pkg/platform/sentinel"
	"govdash/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *RedisStore
	ctx   context.Context
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *RedisStoreSuite) SetupTest() {
	s.store = NewRedisStore(s.redis.Client).WithPrefix("test:" + uuid.NewString())
}

func (s *RedisStoreSuite) TestRoundTripAndOrdering() {
	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"act-1", "act-2", "act-3"} {
		s.Require().NoError(s.store.Save(s.ctx, &models.GovernanceAction{
			ID:                id,
			RegionID:          "UTT",
			RegionName:        "Uttar Pradesh",
			RecommendationKey: "rec_gen",
			TriggerReason:     models.ManualTrigger,
			Timestamp:         t0.Add(time.Duration(i) * time.Minute),
			Status:            models.StatusInitiated,
		}))
	}

	latest, err := s.store.LatestForRegion(s.ctx, "UTT")
	s.Require().NoError(err)
	s.Equal("act-3", latest.ID)
	s.True(latest.Timestamp.Equal(t0.Add(2 * time.Minute)))

	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal("act-3", list[0].ID)
	s.Equal("act-1", list[2].ID)
}

func (s *RedisStoreSuite) TestNotFound() {
	_, err := s.store.LatestForRegion(s.ctx, "NOPE")
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.Get(s.ctx, "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)

	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *RedisStoreSuite) TestSaveOverwritesStatus() {
	a := &models.GovernanceAction{ID: "act-9", RegionID: "BIH", Timestamp: time.Now(), Status: models.StatusInitiated}
	s.Require().NoError(s.store.Save(s.ctx, a))
	a.Status = models.StatusUnderReview
	s.Require().NoError(s.store.Save(s.ctx, a))

	got, err := s.store.Get(s.ctx, "act-9")
	s.Require().NoError(err)
	s.Equal(models.StatusUnderReview, got.Status)

	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Len(list, 1)
}
