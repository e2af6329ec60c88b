// Package store keeps each field worker's checklist.
package store

import (
	"context"
	"slices"
	"sync"

	"govdash/internal/fieldwork/models"
	"govdash/pkg/platform/sentinel"
)

// InMemoryStore holds one task list per user, seeded on first access. A
// write replaces the user's whole list.
type InMemoryStore struct {
	mu    sync.RWMutex
	lists map[string][]models.Task
	seed  func() []models.Task
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		lists: make(map[string][]models.Task),
		seed:  models.SeedTasks,
	}
}

// List returns a copy of userID's tasks.
func (s *InMemoryStore) List(_ context.Context, userID string) ([]models.Task, error) {
	s.mu.RLock()
	tasks, ok := s.lists[userID]
	s.mu.RUnlock()
	if !ok {
		return s.seed(), nil
	}
	return slices.Clone(tasks), nil
}

// Execute runs validate then mutate on one task while holding the lock. When
// validate fails the list is left untouched and its error is returned.
func (s *InMemoryStore) Execute(_ context.Context, userID string, taskID int, validate func(*models.Task) error, mutate func(*models.Task)) (*models.Task, []models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.lists[userID]
	if !ok {
		current = s.seed()
	}
	idx := slices.IndexFunc(current, func(t models.Task) bool { return t.ID == taskID })
	if idx < 0 {
		return nil, nil, sentinel.ErrNotFound
	}

	task := current[idx]
	if err := validate(&task); err != nil {
		return &task, slices.Clone(current), err
	}
	mutate(&task)

	next := slices.Clone(current)
	next[idx] = task
	s.lists[userID] = next
	return &task, slices.Clone(next), nil
}
