package models

import (
	"errors"
	"fmt"
	"time"
)

// ChunkStatus represents the synthesis state of a chunk
type ChunkStatus string

const (
	ChunkStatusPending    ChunkStatus = "pending"
	ChunkStatusProcessing ChunkStatus = "processing"
	ChunkStatusReady      ChunkStatus = "ready"
	ChunkStatusFailed     ChunkStatus = "failed"
)

var (
	// ErrInvalidTransition is returned for a state change the chunk state
	// machine does not allow
	ErrInvalidTransition = errors.New("invalid chunk status transition")
	// ErrStoryAlreadyReady is returned when completing a story twice
	ErrStoryAlreadyReady = errors.New("story is already ready")
	// ErrChunksPending is returned when completing a story with unfinished chunks
	ErrChunksPending = errors.New("story has chunks that are not ready or failed")
)

// validTransitions maps each status to the statuses it may move to
var validTransitions = map[ChunkStatus][]ChunkStatus{
	ChunkStatusPending:    {ChunkStatusProcessing},
	ChunkStatusProcessing: {ChunkStatusReady, ChunkStatusFailed},
}

// Chunk is one bounded-length text segment of a story
type Chunk struct {
	ID              uint        `json:"-" gorm:"primaryKey"`
	StoryID         string      `json:"-" gorm:"size:36;not null;uniqueIndex:idx_chunks_story_index"`
	Index           int         `json:"index" gorm:"column:chunk_index;not null;uniqueIndex:idx_chunks_story_index"`
	Text            string      `json:"text" gorm:"type:text;not null"`
	Status          ChunkStatus `json:"status" gorm:"not null;default:'pending'"`
	Progress        float64     `json:"progress" gorm:"not null;default:0"`
	AudioPath       string      `json:"-"`
	DurationSeconds float64     `json:"duration_seconds" gorm:"not null;default:0"`
	Error           string      `json:"error,omitempty"`
	StartedAt       *time.Time  `json:"started_at,omitempty"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty"`
}

// CanTransition reports whether the chunk may move to status
func (c *Chunk) CanTransition(to ChunkStatus) bool {
	for _, allowed := range validTransitions[c.Status] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (c *Chunk) transition(to ChunkStatus) error {
	if !c.CanTransition(to) {
		return fmt.Errorf("%w: chunk %d %s -> %s", ErrInvalidTransition, c.Index, c.Status, to)
	}
	c.Status = to
	return nil
}

// Start moves a pending chunk to processing
func (c *Chunk) Start(now time.Time) error {
	if err := c.transition(ChunkStatusProcessing); err != nil {
		return err
	}
	c.StartedAt = &now
	return nil
}

// Complete moves a processing chunk to ready with its audio locator
func (c *Chunk) Complete(audioPath string, duration float64, now time.Time) error {
	if err := c.transition(ChunkStatusReady); err != nil {
		return err
	}
	c.AudioPath = audioPath
	c.DurationSeconds = duration
	c.Progress = 1.0
	c.CompletedAt = &now
	return nil
}

// Fail moves a processing chunk to failed. Progress keeps its last value.
func (c *Chunk) Fail(message string, now time.Time) error {
	if err := c.transition(ChunkStatusFailed); err != nil {
		return err
	}
	if message == "" {
		message = "synthesis failed"
	}
	c.Error = message
	c.CompletedAt = &now
	return nil
}

// IsTerminal returns true if the chunk is ready or failed
func (c *Chunk) IsTerminal() bool {
	return c.Status == ChunkStatusReady || c.Status == ChunkStatusFailed
}

func (c Chunk) clone() Chunk {
	if c.StartedAt != nil {
		t := *c.StartedAt
		c.StartedAt = &t
	}
	if c.CompletedAt != nil {
		t := *c.CompletedAt
		c.CompletedAt = &t
	}
	return c
}
