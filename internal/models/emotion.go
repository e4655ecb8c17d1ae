package models

import (
	"time"

	"github.com/google/uuid"
)

// Emotion is one entry of the fixed detection vocabulary.
type Emotion string

const (
	EmotionHappy     Emotion = "happy"
	EmotionSad       Emotion = "sad"
	EmotionAngry     Emotion = "angry"
	EmotionSurprised Emotion = "surprised"
	EmotionFearful   Emotion = "fearful"
	EmotionDisgusted Emotion = "disgusted"
	EmotionNeutral   Emotion = "neutral"
)

// EmotionVocabulary is the fixed iteration order used for deterministic
// tie-breaking when two emotions carry the same probability.
var EmotionVocabulary = []Emotion{
	EmotionHappy,
	EmotionSad,
	EmotionAngry,
	EmotionSurprised,
	EmotionFearful,
	EmotionDisgusted,
	EmotionNeutral,
}

// EmotionSnapshot maps each emotion to a probability in [0,1]. Values
// need not sum to 1; missing keys are treated as 0.
type EmotionSnapshot map[Emotion]float64

// Point is a 2D landmark position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// EyeLandmarkSample carries the contour points of both eyes for one
// video frame. Six points per eye: p0/p3 are the horizontal corners,
// p1/p5 and p2/p4 the vertical pairs.
type EyeLandmarkSample struct {
	LeftEye  []Point `json:"left_eye"`
	RightEye []Point `json:"right_eye"`
}

// Reading is one analyzed emotion measurement.
type Reading struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	Timestamp       time.Time       `json:"timestamp"`
	Emotions        EmotionSnapshot `json:"emotions"`
	DominantEmotion Emotion         `json:"dominant_emotion"`
	BlinkCount      int             `json:"blink_count"`
	StressLevel     float64         `json:"stress_level"`
	WellnessScore   float64         `json:"wellness_score"`
	SessionID       string          `json:"session_id,omitempty"`
	AIInsight       *string         `json:"ai_insight,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PatternType classifies a short history window.
type PatternType string

const (
	PatternConcerning PatternType = "concerning"
	PatternPositive   PatternType = "positive"
	PatternNeutral    PatternType = "neutral"
)

// Pattern is the result of analyzing the most recent readings.
type Pattern struct {
	Type         PatternType     `json:"type"`
	Pattern      string          `json:"pattern"`
	Emotion      Emotion         `json:"emotion,omitempty"`
	Frequency    int             `json:"frequency,omitempty"`
	Distribution map[Emotion]int `json:"distribution,omitempty"`
}

// Trigger marks a sharp stress increase between two consecutive readings.
type Trigger struct {
	Timestamp      time.Time `json:"timestamp"`
	StressIncrease float64   `json:"stress_increase"`
	FromEmotion    Emotion   `json:"from_emotion"`
	ToEmotion      Emotion   `json:"to_emotion"`
}

// TimePattern reports an hour-of-day bucket with elevated average stress.
type TimePattern struct {
	Hour      int     `json:"hour"`
	Type      string  `json:"type"`
	AvgStress float64 `json:"avg_stress"`
}

// EmotionCluster is a run of consecutive identical dominant emotions.
type EmotionCluster struct {
	Emotion   Emotion    `json:"emotion"`
	Count     int        `json:"count"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}
