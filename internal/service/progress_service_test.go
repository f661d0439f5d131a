package service

import (
	"context"
	"testing"

	"learnstudio/internal/model"
	"learnstudio/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressService_Tasks(t *testing.T) {
	store := repository.NewMemoryStore()
	clock := newTestClock()
	svc := NewProgressService(store.Progress()).(*progressService)
	svc.now = clock.Now
	ctx := context.Background()

	p, err := svc.CompleteTask(ctx, "u1", model.CompleteTaskRequest{DayNumber: 3, TaskID: "t1", Completed: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, p.CompletedTasks)

	// completing twice keeps a single entry
	p, err = svc.CompleteTask(ctx, "u1", model.CompleteTaskRequest{DayNumber: 3, TaskID: "t1", Completed: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, p.CompletedTasks)

	require.NoError(t, svc.CompleteDay(ctx, "u1", 3))

	p, err = svc.CompleteTask(ctx, "u1", model.CompleteTaskRequest{DayNumber: 3, TaskID: "t1", Completed: false})
	require.NoError(t, err)
	assert.Empty(t, p.CompletedTasks)
	assert.False(t, p.IsCompleted)
	assert.Nil(t, p.CompletedAt)

	all, err := svc.GetProgress(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 3, all[0].DayNumber)
}

func TestProgressService_InvalidDay(t *testing.T) {
	svc := NewProgressService(repository.NewMemoryStore().Progress())
	ctx := context.Background()

	for _, day := range []int{0, -1, 121} {
		_, err := svc.CompleteTask(ctx, "u1", model.CompleteTaskRequest{DayNumber: day, TaskID: "t"})
		assert.ErrorIs(t, err, ErrInvalidDay)
		assert.ErrorIs(t, svc.CompleteDay(ctx, "u1", day), ErrInvalidDay)
	}
}

func TestProgressService_CompleteDay(t *testing.T) {
	store := repository.NewMemoryStore()
	clock := newTestClock()
	svc := NewProgressService(store.Progress()).(*progressService)
	svc.now = clock.Now
	ctx := context.Background()

	require.NoError(t, svc.CompleteDay(ctx, "u1", 120))

	all, err := svc.GetProgress(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsCompleted)
	require.NotNil(t, all[0].CompletedAt)
	assert.Equal(t, clock.Now(), *all[0].CompletedAt)
	assert.Empty(t, all[0].CompletedTasks)
}
