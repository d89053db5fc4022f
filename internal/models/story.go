package models

import (
	"time"
)

// StoryStatus represents the lifecycle state of a story
type StoryStatus string

const (
	// StoryStatusProcessing means at least one chunk has not been attempted yet
	StoryStatusProcessing StoryStatus = "processing"
	// StoryStatusReady means every chunk is ready or failed
	StoryStatusReady StoryStatus = "ready"
)

// Story is one text-to-speech request covering the full input text
type Story struct {
	ID                   string      `json:"id" gorm:"primaryKey;size:36"`
	Status               StoryStatus `json:"status" gorm:"not null;default:'processing';index"`
	Title                string      `json:"title" gorm:"not null"`
	Language             string      `json:"language" gorm:"not null;size:8"`
	VoiceID              string      `json:"voice_id,omitempty" gorm:"size:36"`
	VoicePath            string      `json:"-"`
	MaxChunkLength       int         `json:"max_chunk_length" gorm:"not null"`
	TotalChunks          int         `json:"total_chunks" gorm:"not null"`
	TotalDurationSeconds float64     `json:"total_duration_seconds" gorm:"not null;default:0"`
	CreatedAt            time.Time   `json:"created_at" gorm:"index"`
	UpdatedAt            time.Time   `json:"updated_at"`
	CompletedAt          *time.Time  `json:"completed_at,omitempty"`

	Chunks []Chunk `json:"chunks,omitempty" gorm:"foreignKey:StoryID;constraint:OnDelete:CASCADE"`
}

// NewStory builds a processing story whose chunks are the given texts, all
// pending
func NewStory(id, title, language string, maxChunkLength int, texts []string, now time.Time) *Story {
	story := &Story{
		ID:             id,
		Status:         StoryStatusProcessing,
		Title:          title,
		Language:       language,
		MaxChunkLength: maxChunkLength,
		TotalChunks:    len(texts),
		CreatedAt:      now,
		UpdatedAt:      now,
		Chunks:         make([]Chunk, len(texts)),
	}

	for i, text := range texts {
		story.Chunks[i] = Chunk{
			StoryID: id,
			Index:   i,
			Text:    text,
			Status:  ChunkStatusPending,
		}
	}

	return story
}

// IsReady returns true once the story reached its terminal status
func (s *Story) IsReady() bool {
	return s.Status == StoryStatusReady
}

// AllChunksTerminal returns true if every chunk is ready or failed
func (s *Story) AllChunksTerminal() bool {
	for i := range s.Chunks {
		if !s.Chunks[i].IsTerminal() {
			return false
		}
	}
	return true
}

// CountChunks returns the number of chunks in the given status
func (s *Story) CountChunks(status ChunkStatus) int {
	n := 0
	for i := range s.Chunks {
		if s.Chunks[i].Status == status {
			n++
		}
	}
	return n
}

// Chunk returns the chunk at index, or nil when out of range
func (s *Story) Chunk(index int) *Chunk {
	if index < 0 || index >= len(s.Chunks) {
		return nil
	}
	return &s.Chunks[index]
}

// MarkReady sets the terminal story status and the aggregate duration.
// It fails unless every chunk is terminal.
func (s *Story) MarkReady(totalDuration float64, now time.Time) error {
	if s.IsReady() {
		return ErrStoryAlreadyReady
	}
	if !s.AllChunksTerminal() {
		return ErrChunksPending
	}

	s.Status = StoryStatusReady
	s.TotalDurationSeconds = totalDuration
	s.UpdatedAt = now
	s.CompletedAt = &now
	return nil
}

// Clone returns a deep copy of the story and its chunks
func (s *Story) Clone() *Story {
	if s == nil {
		return nil
	}

	c := *s
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	if s.Chunks != nil {
		c.Chunks = make([]Chunk, len(s.Chunks))
		for i := range s.Chunks {
			c.Chunks[i] = s.Chunks[i].clone()
		}
	}
	return &c
}
