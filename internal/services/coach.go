package services

import (
	"strings"

	"moodlens-backend/internal/models"
)

// CoachFeedback is one rule-based live suggestion.
type CoachFeedback struct {
	Type     string          `json:"type"`
	Message  string          `json:"message"`
	Priority models.Priority `json:"priority"`
	Exercise *Exercise       `json:"exercise,omitempty"`
}

// Exercise is a concrete guided activity the coach can suggest.
type Exercise struct {
	Name        string `json:"name"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

// CoachState is the snapshot of a user's current condition the coach
// evaluates its rules against.
type CoachState struct {
	DominantEmotion models.Emotion
	StressLevel     float64
	WellnessScore   float64
	BlinkRate       float64
	EmotionDuration float64 // seconds the dominant emotion has persisted
}

// Coach produces rule-based live feedback and crisis assessments. It
// holds no state; all inputs arrive per call.
type Coach struct{}

func NewCoach() *Coach {
	return &Coach{}
}

// LiveFeedback evaluates the feedback rules in priority order and
// returns every rule that fires.
func (c *Coach) LiveFeedback(state CoachState) []CoachFeedback {
	var feedback []CoachFeedback

	if state.StressLevel > 70 {
		feedback = append(feedback, CoachFeedback{
			Type:     "breathing_exercise",
			Message:  "Your stress level is elevated. Try a quick breathing exercise to reset.",
			Priority: models.PriorityHigh,
			Exercise: exerciseFor(models.EmotionFearful),
		})
	}

	if state.WellnessScore < 40 {
		feedback = append(feedback, CoachFeedback{
			Type:     "wellness_boost",
			Message:  "Your wellness score is low. A short walk or a glass of water can make a difference.",
			Priority: models.PriorityMedium,
		})
	}

	if isNegativeEmotion(state.DominantEmotion) && state.EmotionDuration > 1800 {
		feedback = append(feedback, CoachFeedback{
			Type:     "mood_intervention",
			Message:  "You've been feeling " + string(state.DominantEmotion) + " for a while. Consider taking a break or talking to someone.",
			Priority: models.PriorityHigh,
			Exercise: exerciseFor(state.DominantEmotion),
		})
	}

	if state.WellnessScore > 75 {
		feedback = append(feedback, CoachFeedback{
			Type:     "positive_reinforcement",
			Message:  "You're doing great! Keep up whatever you're doing.",
			Priority: models.PriorityLow,
		})
	}

	if state.BlinkRate > 30 {
		feedback = append(feedback, CoachFeedback{
			Type:     "fatigue_alert",
			Message:  "Your blink rate suggests eye fatigue. Look at something 20 feet away for 20 seconds.",
			Priority: models.PriorityMedium,
		})
	}

	return feedback
}

// SuggestExercise returns the guided exercise matched to an emotion.
func (c *Coach) SuggestExercise(emotion models.Emotion) *Exercise {
	return exerciseFor(emotion)
}

// CrisisAssessment is the result of evaluating crisis risk signals.
type CrisisAssessment struct {
	AtRisk  bool     `json:"at_risk"`
	Reasons []string `json:"reasons,omitempty"`
}

// AssessCrisisRisk checks recent readings and journal text for signals
// that warrant a crisis_support notification. Readings are most-recent
// first; only the last 100 are considered.
func (c *Coach) AssessCrisisRisk(readings []models.Reading, journalText string) CrisisAssessment {
	if len(readings) > 100 {
		readings = readings[:100]
	}

	var assessment CrisisAssessment

	if len(readings) > 0 {
		sadCount := 0
		highStressCount := 0
		for _, r := range readings {
			if r.DominantEmotion == models.EmotionSad {
				sadCount++
			}
			if r.StressLevel > 80 {
				highStressCount++
			}
		}

		if float64(sadCount)/float64(len(readings))*100 > 70 {
			assessment.AtRisk = true
			assessment.Reasons = append(assessment.Reasons, "persistent sadness")
		}
		if highStressCount > 50 {
			assessment.AtRisk = true
			assessment.Reasons = append(assessment.Reasons, "sustained high stress")
		}
	}

	if journalText != "" {
		lower := strings.ToLower(journalText)
		for _, kw := range crisisKeywords {
			if strings.Contains(lower, kw) {
				assessment.AtRisk = true
				assessment.Reasons = append(assessment.Reasons, "concerning journal content")
				break
			}
		}
	}

	return assessment
}

var crisisKeywords = []string{
	"hopeless",
	"worthless",
	"can't go on",
	"give up",
	"no point",
	"end it all",
}

func isNegativeEmotion(e models.Emotion) bool {
	switch e {
	case models.EmotionSad, models.EmotionAngry, models.EmotionFearful, models.EmotionDisgusted:
		return true
	}
	return false
}

var exercises = map[models.Emotion]Exercise{
	models.EmotionSad: {
		Name:        "Gratitude Reflection",
		Duration:    "5 minutes",
		Description: "Write down three things you're grateful for today, however small.",
	},
	models.EmotionAngry: {
		Name:        "Progressive Muscle Relaxation",
		Duration:    "10 minutes",
		Description: "Tense and release each muscle group from your toes to your head.",
	},
	models.EmotionFearful: {
		Name:        "Box Breathing",
		Duration:    "3 minutes",
		Description: "Breathe in for 4 counts, hold for 4, out for 4, hold for 4. Repeat.",
	},
	models.EmotionDisgusted: {
		Name:        "Sensory Grounding",
		Duration:    "5 minutes",
		Description: "Name 5 things you see, 4 you hear, 3 you can touch, 2 you smell, 1 you taste.",
	},
	models.EmotionNeutral: {
		Name:        "Mindful Check-In",
		Duration:    "2 minutes",
		Description: "Close your eyes and notice how your body feels right now, without judgment.",
	},
	models.EmotionHappy: {
		Name:        "Savoring",
		Duration:    "2 minutes",
		Description: "Pause and fully absorb this positive moment. What exactly feels good?",
	},
	models.EmotionSurprised: {
		Name:        "Curiosity Journal",
		Duration:    "5 minutes",
		Description: "Write down what surprised you and one thing you want to learn from it.",
	},
}

func exerciseFor(emotion models.Emotion) *Exercise {
	ex, ok := exercises[emotion]
	if !ok {
		ex = exercises[models.EmotionNeutral]
	}
	return &ex
}
