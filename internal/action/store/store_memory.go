// Package store persists governance actions. The in-memory store is the
// default; the Redis store keeps the cache across restarts and replicas.
package store

import (
	"context"
	"sort"
	"sync"

	"govdash/internal/action/models"
	"govdash/pkg/platform/sentinel"
)

// InMemoryStore keeps actions in a slice that is replaced wholesale on every
// write, so readers holding a previous slice never see it change.
type InMemoryStore struct {
	mu      sync.RWMutex
	actions []models.GovernanceAction
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{actions: []models.GovernanceAction{}}
}

// Save inserts the action or replaces the one with the same id.
func (s *InMemoryStore) Save(_ context.Context, a *models.GovernanceAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.GovernanceAction, 0, len(s.actions)+1)
	next = append(next, *a)
	for _, existing := range s.actions {
		if existing.ID != a.ID {
			next = append(next, existing)
		}
	}
	s.actions = next
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (*models.GovernanceAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.actions {
		if s.actions[i].ID == id {
			a := s.actions[i]
			return &a, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// LatestForRegion returns the region's action with the newest timestamp.
func (s *InMemoryStore) LatestForRegion(_ context.Context, regionID string) (*models.GovernanceAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *models.GovernanceAction
	for i := range s.actions {
		a := s.actions[i]
		if a.RegionID != regionID {
			continue
		}
		if latest == nil || a.Timestamp.After(latest.Timestamp) {
			latest = &a
		}
	}
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}
	return latest, nil
}

// List returns every action, newest first.
func (s *InMemoryStore) List(_ context.Context) ([]*models.GovernanceAction, error) {
	s.mu.RLock()
	snapshot := s.actions
	s.mu.RUnlock()

	out := make([]*models.GovernanceAction, 0, len(snapshot))
	for i := range snapshot {
		a := snapshot[i]
		out = append(out, &a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}
