package events

import (
	"context"
	"time"
)

// Event types
const (
	TypeChunk     = "story.chunk"
	TypeCompleted = "story.completed"
)

// Event describes one change to a story. Chunk events carry the chunk index
// and its new status; completion events carry the story totals.
type Event struct {
	Type                 string    `json:"type"`
	StoryID              string    `json:"story_id"`
	ChunkIndex           *int      `json:"chunk_index,omitempty"`
	Status               string    `json:"status"`
	Error                string    `json:"error,omitempty"`
	TotalChunks          int       `json:"total_chunks,omitempty"`
	TotalDurationSeconds float64   `json:"total_duration_seconds,omitempty"`
	Timestamp            time.Time `json:"timestamp"`
}

// ChunkEvent builds a story.chunk event
func ChunkEvent(storyID string, index int, status, errMsg string) Event {
	return Event{
		Type:       TypeChunk,
		StoryID:    storyID,
		ChunkIndex: &index,
		Status:     status,
		Error:      errMsg,
		Timestamp:  time.Now().UTC(),
	}
}

// CompletedEvent builds a story.completed event
func CompletedEvent(storyID string, totalChunks int, totalDuration float64) Event {
	return Event{
		Type:                 TypeCompleted,
		StoryID:              storyID,
		Status:               "ready",
		TotalChunks:          totalChunks,
		TotalDurationSeconds: totalDuration,
		Timestamp:            time.Now().UTC(),
	}
}

// Publisher delivers story events. Delivery is best effort: callers log
// failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// Noop drops every event
type Noop struct{}

// Publish does nothing
func (Noop) Publish(context.Context, Event) error { return nil }

// Close does nothing
func (Noop) Close() {}
