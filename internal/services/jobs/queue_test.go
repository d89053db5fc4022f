package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/xiaotaozi1127/story-teller-backend/pkg/errors"
)

var storyTypes = []TaskType{TaskTypeStorySynthesis}

func TestQueue_FIFO(t *testing.T) {
	ctx := context.Background()
	q := NewQueue(0)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(ctx, id))
	}
	assert.Equal(t, 3, q.Pending())

	for _, want := range []string{"a", "b", "c"} {
		task, err := q.ClaimNext(ctx, "worker-1", storyTypes)
		require.NoError(t, err)
		assert.Equal(t, want, task.StoryID)
		assert.Equal(t, TaskStatusProcessing, task.Status)
		assert.Equal(t, "worker-1", task.WorkerID)
		require.NotNil(t, task.ClaimedAt)
	}

	_, err := q.ClaimNext(ctx, "worker-1", storyTypes)
	assert.ErrorIs(t, err, ErrNoTasksAvailable)
	assert.Equal(t, 3, q.Running())
}

func TestQueue_TypeFilter(t *testing.T) {
	q := NewQueue(0)
	require.NoError(t, q.Enqueue(context.Background(), "a"))

	_, err := q.ClaimNext(context.Background(), "w", []TaskType{"other"})
	assert.ErrorIs(t, err, ErrNoTasksAvailable)
	assert.Equal(t, 1, q.Pending())
}

func TestQueue_DeduplicatesStories(t *testing.T) {
	ctx := context.Background()
	q := NewQueue(0)

	require.NoError(t, q.Enqueue(ctx, "a"))
	require.NoError(t, q.Enqueue(ctx, "a"))
	assert.Equal(t, 1, q.Pending())

	task, err := q.ClaimNext(ctx, "w", storyTypes)
	require.NoError(t, err)

	// Still running, so not queued again
	require.NoError(t, q.Enqueue(ctx, "a"))
	assert.Equal(t, 0, q.Pending())

	require.NoError(t, q.Complete(ctx, task.ID))
	require.NoError(t, q.Enqueue(ctx, "a"))
	assert.Equal(t, 1, q.Pending())
}

func TestQueue_Capacity(t *testing.T) {
	ctx := context.Background()
	q := NewQueue(2)

	require.NoError(t, q.CheckCapacity())
	require.NoError(t, q.Enqueue(ctx, "a"))
	require.NoError(t, q.Enqueue(ctx, "b"))

	err := q.Enqueue(ctx, "c")
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeQueueFull))
	assert.True(t, apperrors.Is(q.CheckCapacity(), apperrors.ErrCodeQueueFull))

	// Claimed tasks free their pending slot
	_, err = q.ClaimNext(ctx, "w", storyTypes)
	require.NoError(t, err)
	assert.NoError(t, q.CheckCapacity())
	assert.NoError(t, q.Enqueue(ctx, "c"))
}

func TestQueue_ResumeIgnoresCapacity(t *testing.T) {
	ctx := context.Background()
	q := NewQueue(2)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Resume(ctx, id))
	}
	require.NoError(t, q.Resume(ctx, "a"))
	assert.Equal(t, 3, q.Pending())

	assert.True(t, apperrors.Is(q.Enqueue(ctx, "d"), apperrors.ErrCodeQueueFull))

	claimed := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		task, err := q.ClaimNext(ctx, "w", storyTypes)
		require.NoError(t, err)
		claimed = append(claimed, task.StoryID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, claimed)
}

func TestQueue_CompleteFailRelease(t *testing.T) {
	ctx := context.Background()
	q := NewQueue(0)
	require.NoError(t, q.Enqueue(ctx, "a"))
	require.NoError(t, q.Enqueue(ctx, "b"))

	first, err := q.ClaimNext(ctx, "w", storyTypes)
	require.NoError(t, err)
	require.NoError(t, q.Release(ctx, first.ID))
	assert.Equal(t, 0, q.Running())

	// Released tasks go back to the head
	again, err := q.ClaimNext(ctx, "w", storyTypes)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	require.NoError(t, q.Fail(ctx, again.ID, errors.New("boom")))
	assert.Error(t, q.Fail(ctx, again.ID, errors.New("boom")))
	assert.Error(t, q.Complete(ctx, 999))
	assert.Error(t, q.Release(ctx, 999))
}

func TestQueue_Notify(t *testing.T) {
	q := NewQueue(0)
	require.NoError(t, q.Enqueue(context.Background(), "a"))
	require.NoError(t, q.Enqueue(context.Background(), "b"))

	select {
	case <-q.Notify():
	default:
		t.Fatal("expected a notification")
	}
	select {
	case <-q.Notify():
		t.Fatal("notifications should coalesce")
	default:
	}
}

func TestQueue_ConcurrentClaims(t *testing.T) {
	ctx := context.Background()
	q := NewQueue(0)
	for i := 0; i < 50; i++ {
		require.NoError(t, q.Enqueue(ctx, fmt.Sprintf("s%d", i)))
	}

	var mu sync.Mutex
	seen := map[string]bool{}
	var wg sync.WaitGroup
	for w := 0; w < 5; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for {
				task, err := q.ClaimNext(ctx, fmt.Sprintf("worker-%d", w), storyTypes)
				if err != nil {
					return
				}
				mu.Lock()
				assert.False(t, seen[task.StoryID], "claimed twice: %s", task.StoryID)
				seen[task.StoryID] = true
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	assert.Len(t, seen, 50)
}

func TestQueue_CancelledContext(t *testing.T) {
	q := NewQueue(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, q.Enqueue(ctx, "a"), context.Canceled)
	_, err := q.ClaimNext(ctx, "w", storyTypes)
	assert.ErrorIs(t, err, context.Canceled)
}
