package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/xiaotaozi1127/story-teller-backend/pkg/errors"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/logger"
)

// Queue is an in-process FIFO of synthesis tasks.
//
// A story is queued at most once: enqueueing a story that is already pending
// or running is a no-op. maxPending bounds the pending tasks; a running task
// does not count against it.
type Queue struct {
	mu         sync.Mutex
	nextID     uint64
	pending    []*Task
	running    map[uint64]*Task
	maxPending int
	notify     chan struct{}
	now        func() time.Time
}

// Ensure Queue implements Service interface
var _ Service = (*Queue)(nil)

// NewQueue creates a queue holding at most maxPending pending tasks. Zero or
// less means unbounded.
func NewQueue(maxPending int) *Queue {
	return &Queue{
		running:    make(map[uint64]*Task),
		maxPending: maxPending,
		notify:     make(chan struct{}, 1),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (q *Queue) full() bool {
	return q.maxPending > 0 && len(q.pending) >= q.maxPending
}

// CheckCapacity fails with QUEUE_FULL when no pending slot is free
func (q *Queue) CheckCapacity() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.full() {
		return apperrors.QueueFull(q.maxPending)
	}
	return nil
}

func (q *Queue) queued(storyID string) bool {
	for _, t := range q.pending {
		if t.StoryID == storyID {
			return true
		}
	}
	for _, t := range q.running {
		if t.StoryID == storyID {
			return true
		}
	}
	return false
}

// Enqueue adds a story synthesis task
func (q *Queue) Enqueue(ctx context.Context, storyID string) error {
	return q.push(ctx, storyID, true)
}

// Resume adds a task for a story accepted before a restart. The pending
// limit does not apply: the story already holds its place.
func (q *Queue) Resume(ctx context.Context, storyID string) error {
	return q.push(ctx, storyID, false)
}

func (q *Queue) push(ctx context.Context, storyID string, bounded bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.queued(storyID) {
		logger.Debugf(ctx, "Story %s is already queued", storyID)
		return nil
	}
	if bounded && q.full() {
		return apperrors.QueueFull(q.maxPending)
	}

	q.nextID++
	task := &Task{
		ID:         q.nextID,
		Type:       TaskTypeStorySynthesis,
		StoryID:    storyID,
		Status:     TaskStatusPending,
		EnqueuedAt: q.now(),
	}
	q.pending = append(q.pending, task)

	select {
	case q.notify <- struct{}{}:
	default:
	}

	logger.Debugf(ctx, "Enqueued %s task %d for story %s", task.Type, task.ID, storyID)
	return nil
}

// ClaimNext hands the oldest pending task of one of types to workerID
func (q *Queue) ClaimNext(ctx context.Context, workerID string, types []TaskType) (*Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	for i, t := range q.pending {
		if !containsType(types, t.Type) {
			continue
		}
		q.pending = append(q.pending[:i], q.pending[i+1:]...)

		now := q.now()
		t.Status = TaskStatusProcessing
		t.WorkerID = workerID
		t.ClaimedAt = &now
		q.running[t.ID] = t

		claimed := *t
		return &claimed, nil
	}
	return nil, ErrNoTasksAvailable
}

func containsType(types []TaskType, t TaskType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

func (q *Queue) finish(taskID uint64) (*Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	t, ok := q.running[taskID]
	if !ok {
		return nil, fmt.Errorf("task %d is not running", taskID)
	}
	delete(q.running, taskID)
	return t, nil
}

// Complete removes a finished task
func (q *Queue) Complete(ctx context.Context, taskID uint64) error {
	t, err := q.finish(taskID)
	if err != nil {
		return err
	}
	logger.Debugf(ctx, "Task %d for story %s completed", t.ID, t.StoryID)
	return nil
}

// Fail removes a task that could not finish. Tasks are not retried; an
// unfinished story is picked up again at the next start.
func (q *Queue) Fail(ctx context.Context, taskID uint64, cause error) error {
	t, err := q.finish(taskID)
	if err != nil {
		return err
	}
	logger.Errorf(ctx, "Task %d for story %s failed: %v", t.ID, t.StoryID, cause)
	return nil
}

// Release puts a running task back at the head of the queue
func (q *Queue) Release(ctx context.Context, taskID uint64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	t, ok := q.running[taskID]
	if !ok {
		return fmt.Errorf("task %d is not running", taskID)
	}
	delete(q.running, taskID)

	t.Status = TaskStatusPending
	t.WorkerID = ""
	t.ClaimedAt = nil
	q.pending = append([]*Task{t}, q.pending...)

	select {
	case q.notify <- struct{}{}:
	default:
	}

	logger.Debugf(ctx, "Task %d released back to pending", taskID)
	return nil
}

// Notify signals that a task became pending. Workers still poll, so a missed
// signal only delays a claim.
func (q *Queue) Notify() <-chan struct{} {
	return q.notify
}

// Pending returns the number of tasks waiting for a worker
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Running returns the number of claimed tasks
func (q *Queue) Running() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.running)
}
