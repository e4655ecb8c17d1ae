package services

import (
	"context"
	"strings"
	"testing"

	"moodlens-backend/internal/models"
)

func TestGenerateInsightFallback(t *testing.T) {
	svc, err := NewInsightService("", 5)
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close()

	t.Run("per emotion", func(t *testing.T) {
		got := svc.GenerateInsight(context.Background(), InsightContext{
			DominantEmotion: models.EmotionSad,
			StressLevel:     50,
			WellnessScore:   60,
		})
		if !strings.Contains(got, "okay to feel sad") {
			t.Errorf("insight = %q, want the sadness fallback", got)
		}
	})

	t.Run("unknown emotion uses neutral", func(t *testing.T) {
		got := svc.GenerateInsight(context.Background(), InsightContext{
			DominantEmotion: models.Emotion("confused"),
			WellnessScore:   60,
		})
		if !strings.Contains(got, "balanced state") {
			t.Errorf("insight = %q, want the neutral fallback", got)
		}
	})

	t.Run("low wellness adds support note", func(t *testing.T) {
		got := svc.GenerateInsight(context.Background(), InsightContext{
			DominantEmotion: models.EmotionHappy,
			WellnessScore:   30,
		})
		if !strings.Contains(got, "additional support") {
			t.Errorf("insight = %q, want the low-wellness suffix", got)
		}
	})
}

func TestGenerateDailyReportFallback(t *testing.T) {
	svc, err := NewInsightService("", 5)
	if err != nil {
		t.Fatal(err)
	}
	defer svc.Close()

	t.Run("no data", func(t *testing.T) {
		got := svc.GenerateDailyReport(context.Background(), models.TimeframeStats{}, 0)
		if got.Summary != "No emotion data available for today." {
			t.Errorf("summary = %q", got.Summary)
		}
	})

	t.Run("reports top emotion", func(t *testing.T) {
		stats := models.TimeframeStats{
			TotalReadings: 12,
			DominantEmotions: map[models.Emotion]int{
				models.EmotionHappy:   7,
				models.EmotionNeutral: 5,
			},
		}
		got := svc.GenerateDailyReport(context.Background(), stats, 1)
		if !strings.Contains(got.Summary, "12 emotion readings") || !strings.Contains(got.Summary, "happy") {
			t.Errorf("summary = %q", got.Summary)
		}
		if got.Stats.TotalReadings != 12 {
			t.Errorf("stats not carried through: %+v", got.Stats)
		}
	})
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"preamble", `Here you go: {"a":1}`, `{"a":1}`},
		{"trailing prose", `{"a":1} hope that helps`, `{"a":1}`},
		{"no object", "nothing here", "nothing here"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractJSON(tc.in); got != tc.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
