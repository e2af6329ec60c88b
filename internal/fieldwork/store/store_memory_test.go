package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govdash/internal/fieldwork/models"
	"govdash/pkg/platform/sentinel"
)

func TestExecuteValidationLeavesListUntouched(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	boom := errors.New("no")

	_, _, err := s.Execute(ctx, "u1", 1,
		func(*models.Task) error { return boom },
		func(t *models.Task) { t.Status = models.TaskCompleted },
	)
	require.ErrorIs(t, err, boom)

	tasks, err := s.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskPending, tasks[0].Status)
}

func TestListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	_, _, err := s.Execute(ctx, "u1", 2, func(*models.Task) error { return nil }, func(t *models.Task) { t.Status = models.TaskCompleted })
	require.NoError(t, err)

	tasks, err := s.List(ctx, "u1")
	require.NoError(t, err)
	tasks[1].Status = models.TaskPending

	again, err := s.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, again[1].Status)
}

func TestUnknownTask(t *testing.T) {
	_, _, err := NewInMemoryStore().Execute(context.Background(), "u1", 42,
		func(*models.Task) error { return nil }, func(*models.Task) {})
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
