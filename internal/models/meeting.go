package models

import (
	"time"

	"github.com/google/uuid"
)

// MeetingInfo is the caller-supplied metadata for an engagement session.
type MeetingInfo struct {
	Title        string `json:"title"`
	Type         string `json:"type"` // general, presentation, interview, ...
	Participants int    `json:"participants"`
}

// SessionReading is one timestamped reading inside a meeting session.
type SessionReading struct {
	Timestamp       time.Time `json:"timestamp"`
	DominantEmotion Emotion   `json:"dominant_emotion"`
	StressLevel     float64   `json:"stress_level"`
	WellnessScore   float64   `json:"wellness_score"`
	BlinkRate       float64   `json:"blink_rate"`
}

// EngagementBreakdown holds the weighted components of the engagement score.
type EngagementBreakdown struct {
	AttentionScore          float64 `json:"attention_score"`
	EmotionalEngagement     float64 `json:"emotional_engagement"`
	StressBalance           float64 `json:"stress_balance"`
	ParticipationIndicators float64 `json:"participation_indicators"`
}

// Engagement is the analysis result for a meeting session.
type Engagement struct {
	EngagementScore int                  `json:"engagement_score"`
	Breakdown       *EngagementBreakdown `json:"breakdown,omitempty"`
	Status          string               `json:"status"`
	Recommendations []string             `json:"recommendations,omitempty"`
}

// LiveAlert is an alert raised while a meeting session is running.
type LiveAlert struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

// LiveInsights summarizes the last readings of a running session.
type LiveInsights struct {
	Status      string      `json:"status"`
	CurrentMood Emotion     `json:"current_mood,omitempty"`
	AvgStress   float64     `json:"avg_stress"`
	AvgWellness float64     `json:"avg_wellness"`
	Alerts      []LiveAlert `json:"alerts"`
}

// TimelineBucket aggregates readings into one 5-minute interval.
type TimelineBucket struct {
	Time            string  `json:"time"`
	DominantEmotion Emotion `json:"dominant_emotion"`
	AvgStress       float64 `json:"avg_stress"`
	Count           int     `json:"count"`
}

// MeetingSummary is the human-readable part of the final report.
type MeetingSummary struct {
	Title             string   `json:"title"`
	Duration          string   `json:"duration"`
	OverallEngagement string   `json:"overall_engagement"`
	EngagementScore   int      `json:"engagement_score"`
	KeyInsights       []string `json:"key_insights"`
	Recommendations   []string `json:"recommendations"`
}

// MeetingReport is the only artifact that outlives a session.
type MeetingReport struct {
	SessionID       uuid.UUID        `json:"session_id"`
	OwnerID         uuid.UUID        `json:"owner_id"`
	MeetingInfo     MeetingInfo      `json:"meeting_info"`
	DurationSeconds float64          `json:"duration_seconds"`
	TotalReadings   int              `json:"total_readings"`
	Analytics       Engagement       `json:"analytics"`
	Summary         MeetingSummary   `json:"summary"`
	EmotionTimeline []TimelineBucket `json:"emotion_timeline"`
}
