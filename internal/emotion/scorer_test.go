package emotion

import (
	"testing"

	"moodlens-backend/internal/models"
)

func TestDominantEmotion(t *testing.T) {
	tests := []struct {
		name     string
		snapshot models.EmotionSnapshot
		expected models.Emotion
	}{
		{
			"clear winner",
			models.EmotionSnapshot{models.EmotionSad: 0.8, models.EmotionHappy: 0.1},
			models.EmotionSad,
		},
		{
			"tie breaks toward earlier vocabulary entry",
			models.EmotionSnapshot{models.EmotionHappy: 0.5, models.EmotionSad: 0.5},
			models.EmotionHappy,
		},
		{
			"neutral tie with sad favors sad",
			models.EmotionSnapshot{models.EmotionNeutral: 0.5, models.EmotionSad: 0.5},
			models.EmotionSad,
		},
		{
			"empty snapshot yields first vocabulary entry",
			models.EmotionSnapshot{},
			models.EmotionHappy,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DominantEmotion(tc.snapshot); got != tc.expected {
				t.Errorf("DominantEmotion = %s, want %s", got, tc.expected)
			}
		})
	}
}

func TestStressLevelBounds(t *testing.T) {
	sc := NewScorer(DefaultScorerConfig())

	snapshots := []models.EmotionSnapshot{
		{},
		{models.EmotionHappy: 1},
		{models.EmotionAngry: 1, models.EmotionFearful: 1, models.EmotionSad: 1, models.EmotionDisgusted: 1},
		{models.EmotionNeutral: 0.5, models.EmotionSad: 0.5},
	}
	rates := []float64{0, 5, 17.5, 30, 100}

	for _, s := range snapshots {
		for _, rate := range rates {
			got := sc.StressLevel(s, rate)
			if got < 0 || got > 100 {
				t.Errorf("StressLevel(%v, %v) = %v, out of [0,100]", s, rate, got)
			}
		}
	}
}

func TestStressLevelBaseline(t *testing.T) {
	sc := NewScorer(DefaultScorerConfig())

	// No negative affect, blink rate at baseline: zero stress.
	if got := sc.StressLevel(models.EmotionSnapshot{models.EmotionHappy: 1}, 17.5); got != 0 {
		t.Errorf("StressLevel at baseline = %v, want 0", got)
	}

	// Full negative affect with extreme blink deviation caps at 100.
	all := models.EmotionSnapshot{
		models.EmotionAngry:     1,
		models.EmotionFearful:   1,
		models.EmotionSad:       1,
		models.EmotionDisgusted: 1,
	}
	if got := sc.StressLevel(all, 100); got != 100 {
		t.Errorf("StressLevel saturated = %v, want 100", got)
	}

	// Blink deviation alone contributes at most the configured cap.
	if got := sc.StressLevel(models.EmotionSnapshot{}, 100); got != 30 {
		t.Errorf("StressLevel from blink deviation alone = %v, want 30", got)
	}
}

func TestWellnessScore(t *testing.T) {
	sc := NewScorer(DefaultScorerConfig())

	tests := []struct {
		name     string
		snapshot models.EmotionSnapshot
		stress   float64
		expected float64
	}{
		{"fully happy and relaxed", models.EmotionSnapshot{models.EmotionHappy: 1}, 0, 100},
		{"neutral baseline", models.EmotionSnapshot{models.EmotionNeutral: 1}, 0, 70},
		{"fully negative and stressed clamps to zero",
			models.EmotionSnapshot{models.EmotionSad: 1, models.EmotionAngry: 1, models.EmotionFearful: 1}, 100, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := sc.WellnessScore(tc.snapshot, tc.stress); got != tc.expected {
				t.Errorf("WellnessScore = %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestWellnessScoreBounds(t *testing.T) {
	sc := NewScorer(DefaultScorerConfig())

	snapshots := []models.EmotionSnapshot{
		{},
		{models.EmotionHappy: 1, models.EmotionSurprised: 1},
		{models.EmotionSad: 1, models.EmotionAngry: 1, models.EmotionFearful: 1},
	}
	for _, s := range snapshots {
		for _, stress := range []float64{0, 50, 100} {
			got := sc.WellnessScore(s, stress)
			if got < 0 || got > 100 {
				t.Errorf("WellnessScore(%v, %v) = %v, out of [0,100]", s, stress, got)
			}
		}
	}
}
