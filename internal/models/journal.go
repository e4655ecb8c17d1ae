package models

import (
	"time"

	"github.com/google/uuid"
)

type JournalEntry struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Text       string    `json:"text"`
	MoodRating int       `json:"mood_rating"` // 1..10
	AIAnalysis *string   `json:"ai_analysis,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateJournalRequest struct {
	Text       string `json:"text"`
	MoodRating int    `json:"mood_rating"`
}
