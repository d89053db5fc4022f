package jobs

import (
	"context"
	"errors"
	"time"
)

// TaskType identifies the processor that handles a task
type TaskType string

const (
	// TaskTypeStorySynthesis synthesizes every chunk of one story
	TaskTypeStorySynthesis TaskType = "story_synthesis"
)

// TaskStatus is the state of a task in the queue
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
)

// ErrNoTasksAvailable is returned by ClaimNext when nothing is pending
var ErrNoTasksAvailable = errors.New("no tasks available")

// Task is one unit of background work
type Task struct {
	ID         uint64
	Type       TaskType
	StoryID    string
	Status     TaskStatus
	WorkerID   string
	EnqueuedAt time.Time
	ClaimedAt  *time.Time
}

// Service defines the queue operations used by the API and the worker pool
type Service interface {
	// Enqueue operations
	Enqueue(ctx context.Context, storyID string) error
	CheckCapacity() error

	// Worker operations (used by worker pool)
	ClaimNext(ctx context.Context, workerID string, types []TaskType) (*Task, error)
	Complete(ctx context.Context, taskID uint64) error
	Fail(ctx context.Context, taskID uint64, err error) error
	Release(ctx context.Context, taskID uint64) error
	Notify() <-chan struct{}

	// Status
	Pending() int
	Running() int
}
