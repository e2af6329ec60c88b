package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"govdash/internal/action/models"
	"govdash/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
	t0    time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
	s.t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) action(id, region string, offset time.Duration) *models.GovernanceAction {
	return &models.GovernanceAction{
		ID:        id,
		RegionID:  region,
		Timestamp: s.t0.Add(offset),
		Status:    models.StatusInitiated,
	}
}

func (s *InMemoryStoreSuite) TestLatestForRegion() {
	s.Run("missing region", func() {
		_, err := s.store.LatestForRegion(s.ctx, "UTT")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("newest by timestamp wins regardless of insert order", func() {
		s.Require().NoError(s.store.Save(s.ctx, s.action("act-2", "UTT", time.Hour)))
		s.Require().NoError(s.store.Save(s.ctx, s.action("act-1", "UTT", 0)))
		s.Require().NoError(s.store.Save(s.ctx, s.action("act-3", "BIH", 2*time.Hour)))

		got, err := s.store.LatestForRegion(s.ctx, "UTT")
		s.Require().NoError(err)
		s.Equal("act-2", got.ID)
	})
}

func (s *InMemoryStoreSuite) TestListNewestFirst() {
	s.Require().NoError(s.store.Save(s.ctx, s.action("a", "X", 0)))
	s.Require().NoError(s.store.Save(s.ctx, s.action("c", "Y", 2*time.Minute)))
	s.Require().NoError(s.store.Save(s.ctx, s.action("b", "Z", time.Minute)))

	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal([]string{"c", "b", "a"}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func (s *InMemoryStoreSuite) TestSaveReplacesByID() {
	a := s.action("a", "X", 0)
	s.Require().NoError(s.store.Save(s.ctx, a))

	updated := *a
	updated.Status = models.StatusPlanned
	s.Require().NoError(s.store.Save(s.ctx, &updated))

	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Len(list, 1)

	got, err := s.store.Get(s.ctx, "a")
	s.Require().NoError(err)
	s.Equal(models.StatusPlanned, got.Status)

	_, err = s.store.Get(s.ctx, "nope")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestReturnedValuesAreCopies() {
	s.Require().NoError(s.store.Save(s.ctx, s.action("a", "X", 0)))

	got, err := s.store.Get(s.ctx, "a")
	s.Require().NoError(err)
	got.Status = models.StatusPlanned

	again, err := s.store.Get(s.ctx, "a")
	s.Require().NoError(err)
	s.Equal(models.StatusInitiated, again.Status)
}

func (s *InMemoryStoreSuite) TestConcurrentWriters() {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.store.Save(s.ctx, s.action(string(rune('A'+i)), "R", time.Duration(i)*time.Second))
		}(i)
	}
	wg.Wait()

	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Len(list, 50)
}
