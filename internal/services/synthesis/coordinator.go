package synthesis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xiaotaozi1127/story-teller-backend/internal/models"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/audio"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/events"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/stories"
	"github.com/xiaotaozi1127/story-teller-backend/internal/services/tts"
	"github.com/xiaotaozi1127/story-teller-backend/internal/telemetry"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/logger"
)

// InterruptedMessage is recorded on a chunk whose synthesis was cut short
// by shutdown or found unfinished after a restart
const InterruptedMessage = "synthesis interrupted"

// Backend hands out the shared synthesizer
type Backend interface {
	Name() string
	Get() (tts.Synthesizer, error)
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithPublisher sets the event publisher
func WithPublisher(p events.Publisher) Option {
	return func(c *Coordinator) {
		c.events = p
	}
}

// WithMetrics sets the metric instruments
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithChunkTimeout bounds each backend call. Time spent waiting for an
// exclusive backend does not count. Zero means no bound.
func WithChunkTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		c.chunkTimeout = d
	}
}

// WithTracer sets the tracer used for chunk spans
func WithTracer(t trace.Tracer) Option {
	return func(c *Coordinator) {
		c.tracer = t
	}
}

// Coordinator drives every chunk of a story through the backend, one at a
// time in index order, then completes the story
type Coordinator struct {
	repo    stories.Repository
	backend Backend
	store   audio.Store

	events       events.Publisher
	metrics      *telemetry.Metrics
	tracer       trace.Tracer
	chunkTimeout time.Duration
	now          func() time.Time
}

// NewCoordinator creates a coordinator
func NewCoordinator(repo stories.Repository, backend Backend, store audio.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		repo:    repo,
		backend: backend,
		store:   store,
		events:  events.Noop{},
		tracer:  telemetry.Tracer(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProcessStory synthesizes every unfinished chunk of the story and marks it
// ready. Chunk failures are recorded on the chunk and never returned. The
// returned error is a store failure or the context error when ctx ends
// before the story is complete; the story then stays processing.
func (c *Coordinator) ProcessStory(ctx context.Context, storyID string) error {
	story, err := c.repo.Get(ctx, storyID)
	if err != nil {
		return fmt.Errorf("load story %s: %w", storyID, err)
	}
	if story.IsReady() {
		logger.Debugf(ctx, "Story %s is already ready", storyID)
		return nil
	}

	log := logger.WithFields(ctx, logrus.Fields{"story_id": storyID, "backend": c.backend.Name()})
	log.Infof("Synthesizing %d chunks", story.TotalChunks)

	synth, backendErr := c.backend.Get()
	if backendErr != nil {
		log.Errorf("Synthesis backend unavailable: %v", backendErr)
	}

	for i := range story.Chunks {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk := story.Chunks[i]
		switch chunk.Status {
		case models.ChunkStatusReady, models.ChunkStatusFailed:
			continue
		case models.ChunkStatusProcessing:
			log.Warnf("Chunk %d was left processing, marking it failed", chunk.Index)
			if err := c.fail(ctx, storyID, chunk.Index, InterruptedMessage, 0); err != nil {
				return err
			}
			continue
		}

		if err := c.processChunk(ctx, story, chunk, synth, backendErr); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return c.complete(ctx, storyID)
}

func (c *Coordinator) processChunk(ctx context.Context, story *models.Story, chunk models.Chunk, synth tts.Synthesizer, backendErr error) error {
	ctx, span := c.tracer.Start(ctx, "synthesis.chunk", trace.WithAttributes(
		attribute.String("story.id", story.ID),
		attribute.Int("chunk.index", chunk.Index),
		attribute.Int("chunk.length", len([]rune(chunk.Text))),
	))
	defer span.End()

	started := time.Now()
	if _, err := c.repo.UpdateChunk(ctx, story.ID, chunk.Index, func(ch *models.Chunk) error {
		return ch.Start(c.now())
	}); err != nil {
		span.RecordError(err)
		return fmt.Errorf("start chunk %d: %w", chunk.Index, err)
	}
	c.publish(ctx, events.ChunkEvent(story.ID, chunk.Index, string(models.ChunkStatusProcessing), ""))

	path, duration, err := c.synthesize(ctx, story, chunk, synth, backendErr)
	elapsed := time.Since(started).Seconds()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		message := err.Error()
		switch {
		case ctx.Err() != nil:
			message = InterruptedMessage
		case c.chunkTimeout > 0 && errors.Is(err, context.DeadlineExceeded):
			message = fmt.Sprintf("synthesis timed out after %s", c.chunkTimeout)
		}

		logger.Warnf(ctx, "Chunk %d of story %s failed: %v", chunk.Index, story.ID, err)
		return c.fail(ctx, story.ID, chunk.Index, message, elapsed)
	}

	// The audio is saved, so record it even if shutdown started meanwhile
	if _, err := c.repo.UpdateChunk(context.WithoutCancel(ctx), story.ID, chunk.Index, func(ch *models.Chunk) error {
		return ch.Complete(path, duration, c.now())
	}); err != nil {
		span.RecordError(err)
		return fmt.Errorf("complete chunk %d: %w", chunk.Index, err)
	}

	span.SetAttributes(attribute.Float64("chunk.duration_seconds", duration))
	c.metrics.ChunkFinished(ctx, string(models.ChunkStatusReady), elapsed)
	c.publish(ctx, events.ChunkEvent(story.ID, chunk.Index, string(models.ChunkStatusReady), ""))
	logger.Debugf(ctx, "Chunk %d of story %s ready (%.2fs of audio)", chunk.Index, story.ID, duration)
	return nil
}

// synthesize runs the backend call and persists the waveform
func (c *Coordinator) synthesize(ctx context.Context, story *models.Story, chunk models.Chunk, synth tts.Synthesizer, backendErr error) (string, float64, error) {
	if backendErr != nil {
		return "", 0, backendErr
	}

	// The chunk deadline covers the backend call, not the wait for a shared slot
	if ex, ok := synth.(tts.Exclusive); ok {
		next, release, err := ex.Acquire(ctx)
		if err != nil {
			return "", 0, err
		}
		defer release()
		synth = next
	}

	callCtx := ctx
	if c.chunkTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.chunkTimeout)
		defer cancel()
	}

	result, err := synth.Synthesize(callCtx, tts.Request{
		Text:      chunk.Text,
		VoicePath: story.VoicePath,
		Language:  story.Language,
	})
	if err != nil {
		return "", 0, err
	}
	if result == nil || len(result.Samples) == 0 || result.SampleRate <= 0 {
		return "", 0, fmt.Errorf("backend returned no audio")
	}

	path, err := c.store.Save(ctx, result.Samples, result.SampleRate, audio.ChunkFileName(story.ID, chunk.Index))
	if err != nil {
		return "", 0, fmt.Errorf("save audio: %w", err)
	}
	return path, result.Duration(), nil
}

// fail records a failed chunk. It runs even when ctx is cancelled so an
// interrupted chunk never stays processing.
func (c *Coordinator) fail(ctx context.Context, storyID string, index int, message string, elapsed float64) error {
	ctx = context.WithoutCancel(ctx)
	if _, err := c.repo.UpdateChunk(ctx, storyID, index, func(ch *models.Chunk) error {
		return ch.Fail(message, c.now())
	}); err != nil {
		return fmt.Errorf("fail chunk %d: %w", index, err)
	}

	c.metrics.ChunkFinished(ctx, string(models.ChunkStatusFailed), elapsed)
	c.publish(ctx, events.ChunkEvent(storyID, index, string(models.ChunkStatusFailed), message))
	return nil
}

// complete sums the stored durations of ready chunks and marks the story
// ready
func (c *Coordinator) complete(ctx context.Context, storyID string) error {
	story, err := c.repo.Get(ctx, storyID)
	if err != nil {
		return fmt.Errorf("reload story %s: %w", storyID, err)
	}

	var total float64
	for _, chunk := range story.Chunks {
		if chunk.Status != models.ChunkStatusReady || chunk.AudioPath == "" {
			continue
		}
		seconds, err := c.store.Duration(ctx, chunk.AudioPath)
		if err != nil {
			logger.Warnf(ctx, "Skipping duration of chunk %d of story %s: %v", chunk.Index, storyID, err)
			continue
		}
		total += seconds
	}
	total = math.Round(total*100) / 100

	updated, err := c.repo.UpdateStory(ctx, storyID, func(s *models.Story) error {
		return s.MarkReady(total, c.now())
	})
	if errors.Is(err, models.ErrStoryAlreadyReady) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("complete story %s: %w", storyID, err)
	}

	c.metrics.StoryCompleted(ctx)
	c.publish(ctx, events.CompletedEvent(storyID, updated.TotalChunks, total))
	logger.WithFields(ctx, logrus.Fields{
		"story_id": storyID,
		"ready":    updated.CountChunks(models.ChunkStatusReady),
		"failed":   updated.CountChunks(models.ChunkStatusFailed),
		"duration": total,
	}).Info("Story ready")
	return nil
}

func (c *Coordinator) publish(ctx context.Context, event events.Event) {
	if err := c.events.Publish(ctx, event); err != nil {
		logger.Warnf(ctx, "Failed to publish %s event for story %s: %v", event.Type, event.StoryID, err)
	}
}
