package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/xiaotaozi1127/story-teller-backend/internal/services/jobs"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/logger"
)

// TaskProcessor defines the interface for processing different task types
type TaskProcessor interface {
	ProcessTask(ctx context.Context, task *jobs.Task) error
	CanProcess(taskType jobs.TaskType) bool
}

// Worker represents a background worker that processes tasks
type Worker struct {
	id           string
	queue        jobs.Service
	processors   []TaskProcessor
	stopChan     chan struct{}
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	pollInterval time.Duration
}

// NewWorker creates a new worker instance
func NewWorker(id string, queue jobs.Service, pollInterval time.Duration) *Worker {
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &Worker{
		id:           id,
		queue:        queue,
		processors:   make([]TaskProcessor, 0),
		stopChan:     make(chan struct{}),
		pollInterval: pollInterval,
	}
}

// RegisterProcessor registers a task processor
func (w *Worker) RegisterProcessor(processor TaskProcessor) {
	w.processors = append(w.processors, processor)
}

// Start starts the worker in a goroutine
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop stops the worker and cancels the task it is running, then waits for
// it to return
func (w *Worker) Stop() {
	close(w.stopChan)
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

// run is the main worker loop
func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	logger.Infof(ctx, "Worker %s starting", w.id)
	defer logger.Infof(ctx, "Worker %s stopped", w.id)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-w.queue.Notify():
		case <-ticker.C:
		}

		// Drain everything pending before waiting again
		for {
			processed, err := w.processNextTask(ctx)
			if err != nil {
				logger.Errorf(ctx, "Worker %s: error processing task: %v", w.id, err)
			}
			if !processed || ctx.Err() != nil {
				break
			}
		}
	}
}

func (w *Worker) supportedTypes() []jobs.TaskType {
	var types []jobs.TaskType
	seen := make(map[jobs.TaskType]bool)
	for _, taskType := range []jobs.TaskType{jobs.TaskTypeStorySynthesis} {
		for _, p := range w.processors {
			if p.CanProcess(taskType) && !seen[taskType] {
				types = append(types, taskType)
				seen[taskType] = true
			}
		}
	}
	return types
}

// processNextTask claims and processes the next available task. It reports
// whether a task was claimed.
func (w *Worker) processNextTask(ctx context.Context) (bool, error) {
	types := w.supportedTypes()
	if len(types) == 0 {
		return false, fmt.Errorf("no task processors registered")
	}

	task, err := w.queue.ClaimNext(ctx, w.id, types)
	if errors.Is(err, jobs.ErrNoTasksAvailable) || task == nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	logger.Debugf(ctx, "Worker %s claimed task %d (type: %s, story: %s)", w.id, task.ID, task.Type, task.StoryID)

	var processor TaskProcessor
	for _, p := range w.processors {
		if p.CanProcess(task.Type) {
			processor = p
			break
		}
	}

	if err := processor.ProcessTask(ctx, task); err != nil {
		if failErr := w.queue.Fail(context.WithoutCancel(ctx), task.ID, err); failErr != nil {
			logger.Errorf(ctx, "Worker %s: failed to mark task %d as failed: %v", w.id, task.ID, failErr)
		}
		if ctx.Err() != nil {
			return true, nil
		}
		return true, fmt.Errorf("task processing failed: %w", err)
	}

	if err := w.queue.Complete(ctx, task.ID); err != nil {
		return true, err
	}
	return true, nil
}

// WorkerPool manages multiple workers
type WorkerPool struct {
	workers []*Worker
	queue   jobs.Service
	mu      sync.RWMutex
	started bool
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(queue jobs.Service, workerCount int, pollInterval time.Duration) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	pool := &WorkerPool{
		queue:   queue,
		workers: make([]*Worker, workerCount),
	}

	for i := 0; i < workerCount; i++ {
		workerID := fmt.Sprintf("worker-%d", i+1)
		pool.workers[i] = NewWorker(workerID, queue, pollInterval)
	}

	return pool
}

// RegisterProcessor registers a processor with all workers
func (p *WorkerPool) RegisterProcessor(processor TaskProcessor) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, worker := range p.workers {
		worker.RegisterProcessor(processor)
	}
}

// Start starts all workers
func (p *WorkerPool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("worker pool already started")
	}

	logger.Infof(ctx, "Starting worker pool with %d workers", len(p.workers))

	for _, worker := range p.workers {
		worker.Start(ctx)
	}

	p.started = true
	return nil
}

// Stop stops all workers and waits for running tasks to return
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	logger.StdLogger().Info("Stopping worker pool")

	var wg sync.WaitGroup
	for _, worker := range p.workers {
		wg.Add(1)
		go func(w *Worker) {
			defer wg.Done()
			w.Stop()
		}(worker)
	}
	wg.Wait()

	p.started = false
}

// Size returns the number of workers
func (p *WorkerPool) Size() int {
	return len(p.workers)
}
