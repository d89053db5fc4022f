package models

import "time"

// Voice is a registered reference voice sample
type Voice struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Name        string    `json:"name" gorm:"not null"`
	Language    string    `json:"language" gorm:"size:8"`
	AudioPath   string    `json:"-" gorm:"not null"`
	DurationSec float64   `json:"duration_sec" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}
