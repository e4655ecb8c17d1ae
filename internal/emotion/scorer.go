package emotion

import (
	"math"

	"moodlens-backend/internal/models"
)

// baselineBlinkRate is the physiologic baseline in blinks per minute.
// Both much faster and much slower blinking read as stress.
const baselineBlinkRate = 17.5

// StressWeights maps negative-affect emotions to their contribution to
// the stress score. These are hand-tuned constants, adjustable via
// ScorerConfig rather than hardcoded truths.
type StressWeights map[models.Emotion]float64

// ScorerConfig carries the tunable weighting constants of the scorer.
type ScorerConfig struct {
	StressWeights   StressWeights
	BlinkWeight     float64 // cap of the blink-rate-deviation term
	BalanceWeight   float64 // share of emotional balance in wellness
	StressFactorWgt float64 // share of inverted stress in wellness
}

// DefaultScorerConfig matches the tuning of the original system.
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		StressWeights: StressWeights{
			models.EmotionAngry:     0.3,
			models.EmotionFearful:   0.4,
			models.EmotionSad:       0.2,
			models.EmotionDisgusted: 0.1,
		},
		BlinkWeight:     0.3,
		BalanceWeight:   0.6,
		StressFactorWgt: 0.4,
	}
}

// Scorer derives bounded stress and wellness metrics from an emotion
// snapshot. It is stateless; every method is safe for concurrent use.
type Scorer struct {
	cfg ScorerConfig
}

func NewScorer(cfg ScorerConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// DominantEmotion returns the highest-probability emotion. Ties break
// toward the earlier entry in the fixed vocabulary order, so the result
// is deterministic regardless of map iteration.
func DominantEmotion(s models.EmotionSnapshot) models.Emotion {
	best := models.EmotionVocabulary[0]
	bestVal := s[best]
	for _, e := range models.EmotionVocabulary[1:] {
		if s[e] > bestVal {
			best = e
			bestVal = s[e]
		}
	}
	return best
}

// StressLevel combines weighted negative-affect probabilities with the
// deviation of the blink rate from the physiologic baseline. Result is
// clamped to [0,100].
func (sc *Scorer) StressLevel(s models.EmotionSnapshot, blinkRate float64) float64 {
	var score float64
	for emotion, weight := range sc.cfg.StressWeights {
		score += s[emotion] * weight
	}

	deviation := math.Abs(blinkRate-baselineBlinkRate) / baselineBlinkRate
	score += math.Min(deviation*sc.cfg.BlinkWeight, sc.cfg.BlinkWeight)

	return clamp(score*100, 0, 100)
}

// WellnessScore blends emotional balance with the inverse of the stress
// level. Result is clamped to [0,100].
func (sc *Scorer) WellnessScore(s models.EmotionSnapshot, stressLevel float64) float64 {
	positive := s[models.EmotionHappy] + s[models.EmotionSurprised]*0.5
	negative := s[models.EmotionSad] + s[models.EmotionAngry] + s[models.EmotionFearful]

	balance := (positive - negative + 1) / 2
	stressFactor := (100 - stressLevel) / 100

	score := math.Round((balance*sc.cfg.BalanceWeight + stressFactor*sc.cfg.StressFactorWgt) * 100)
	return clamp(score, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
