package meeting

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"moodlens-backend/internal/models"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestStartDefaults(t *testing.T) {
	m := NewMode()
	owner := uuid.New()

	s := m.Start(owner, models.MeetingInfo{})
	if s.MeetingInfo.Title != "Untitled Meeting" {
		t.Errorf("title = %q, want Untitled Meeting", s.MeetingInfo.Title)
	}
	if s.MeetingInfo.Type != "general" {
		t.Errorf("type = %q, want general", s.MeetingInfo.Type)
	}
	if s.MeetingInfo.Participants != 1 {
		t.Errorf("participants = %d, want 1", s.MeetingInfo.Participants)
	}
	if s.OwnerID != owner {
		t.Errorf("owner = %s, want %s", s.OwnerID, owner)
	}
	if m.ActiveCount() != 1 {
		t.Errorf("active count = %d, want 1", m.ActiveCount())
	}

	s2 := m.Start(owner, models.MeetingInfo{Title: "Standup", Type: "team", Participants: 6})
	if s2.MeetingInfo.Title != "Standup" || s2.MeetingInfo.Participants != 6 {
		t.Errorf("explicit info was overridden: %+v", s2.MeetingInfo)
	}
}

func TestUnknownSession(t *testing.T) {
	m := NewMode()
	owner := uuid.New()
	id := uuid.New()

	if err := m.AddReading(owner, id, models.SessionReading{}); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("AddReading err = %v, want ErrSessionNotFound", err)
	}
	if _, err := m.AnalyzeEngagement(owner, id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("AnalyzeEngagement err = %v, want ErrSessionNotFound", err)
	}
	if _, err := m.GetLiveInsights(owner, id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("GetLiveInsights err = %v, want ErrSessionNotFound", err)
	}
	if _, err := m.End(owner, id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("End err = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionOwnership(t *testing.T) {
	m := NewMode()
	owner := uuid.New()
	intruder := uuid.New()
	s := m.Start(owner, models.MeetingInfo{Title: "1:1"})

	if err := m.AddReading(intruder, s.ID, models.SessionReading{}); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("AddReading by non-owner err = %v, want ErrSessionNotFound", err)
	}
	if _, err := m.AnalyzeEngagement(intruder, s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("AnalyzeEngagement by non-owner err = %v, want ErrSessionNotFound", err)
	}
	if _, err := m.GetLiveInsights(intruder, s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("GetLiveInsights by non-owner err = %v, want ErrSessionNotFound", err)
	}
	if _, err := m.End(intruder, s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("End by non-owner err = %v, want ErrSessionNotFound", err)
	}

	// The failed End must not have torn the session down.
	if m.ActiveCount() != 1 {
		t.Fatalf("active count = %d, want 1 after non-owner End", m.ActiveCount())
	}
	if err := m.AddReading(owner, s.ID, models.SessionReading{DominantEmotion: models.EmotionNeutral}); err != nil {
		t.Errorf("owner AddReading err = %v", err)
	}
	if _, err := m.End(owner, s.ID); err != nil {
		t.Errorf("owner End err = %v", err)
	}
}

func TestAnalyzeEngagement(t *testing.T) {
	t.Run("no data", func(t *testing.T) {
		m := NewMode()
		owner := uuid.New()
		s := m.Start(owner, models.MeetingInfo{})

		got, err := m.AnalyzeEngagement(owner, s.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.EngagementScore != 0 || got.Status != "no_data" {
			t.Errorf("got %d/%s, want 0/no_data", got.EngagementScore, got.Status)
		}
	})

	t.Run("single reading at baseline", func(t *testing.T) {
		m := NewMode()
		owner := uuid.New()
		s := m.Start(owner, models.MeetingInfo{})

		err := m.AddReading(owner, s.ID, models.SessionReading{
			DominantEmotion: models.EmotionHappy,
			StressLevel:     45,
			BlinkRate:       17.5,
		})
		if err != nil {
			t.Fatal(err)
		}

		got, err := m.AnalyzeEngagement(owner, s.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Breakdown == nil {
			t.Fatal("expected breakdown")
		}
		// blink 100*0.6 + variety 15*0.4 = 66
		if got.Breakdown.AttentionScore != 66 {
			t.Errorf("attention = %v, want 66", got.Breakdown.AttentionScore)
		}
		if got.Breakdown.EmotionalEngagement != 80 {
			t.Errorf("emotional engagement = %v, want 80", got.Breakdown.EmotionalEngagement)
		}
		if got.Breakdown.StressBalance != 100 {
			t.Errorf("stress balance = %v, want 100", got.Breakdown.StressBalance)
		}
		if got.Breakdown.ParticipationIndicators != 0 {
			t.Errorf("participation = %v, want 0", got.Breakdown.ParticipationIndicators)
		}
		// 66*0.3 + 80*0.3 + 100*0.2 + 0*0.2 = 63.8
		if got.EngagementScore != 64 || got.Status != "good" {
			t.Errorf("score = %d/%s, want 64/good", got.EngagementScore, got.Status)
		}
	})

	t.Run("moderate stress keeps full balance", func(t *testing.T) {
		m := NewMode()
		owner := uuid.New()
		s := m.Start(owner, models.MeetingInfo{})

		for _, stress := range []float64{40, 45, 50} {
			if err := m.AddReading(owner, s.ID, models.SessionReading{
				DominantEmotion: models.EmotionNeutral,
				StressLevel:     stress,
				BlinkRate:       17.5,
			}); err != nil {
				t.Fatal(err)
			}
		}

		got, err := m.AnalyzeEngagement(owner, s.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Breakdown.StressBalance != 100 {
			t.Errorf("stress balance = %v, want 100 for avg 45", got.Breakdown.StressBalance)
		}
	})

	t.Run("score stays within bounds", func(t *testing.T) {
		m := NewMode()
		owner := uuid.New()
		s := m.Start(owner, models.MeetingInfo{})

		for i := 0; i < 20; i++ {
			if err := m.AddReading(owner, s.ID, models.SessionReading{
				DominantEmotion: models.EmotionAngry,
				StressLevel:     100,
				BlinkRate:       60,
			}); err != nil {
				t.Fatal(err)
			}
		}

		got, err := m.AnalyzeEngagement(owner, s.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.EngagementScore < 0 || got.EngagementScore > 100 {
			t.Errorf("score %d out of range", got.EngagementScore)
		}
	})
}

func TestGetLiveInsights(t *testing.T) {
	m := NewMode()
	owner := uuid.New()
	s := m.Start(owner, models.MeetingInfo{})

	t.Run("waiting for data", func(t *testing.T) {
		got, err := m.GetLiveInsights(owner, s.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != "waiting_for_data" {
			t.Errorf("status = %q, want waiting_for_data", got.Status)
		}
	})

	t.Run("high stress alert", func(t *testing.T) {
		for i := 0; i < 4; i++ {
			if err := m.AddReading(owner, s.ID, models.SessionReading{
				DominantEmotion: models.EmotionAngry,
				StressLevel:     85,
				WellnessScore:   30,
				BlinkRate:       20,
			}); err != nil {
				t.Fatal(err)
			}
		}

		got, err := m.GetLiveInsights(owner, s.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != "ok" {
			t.Errorf("status = %q, want ok", got.Status)
		}
		if got.AvgStress != 85 || got.AvgWellness != 30 {
			t.Errorf("averages = %v/%v, want 85/30", got.AvgStress, got.AvgWellness)
		}
		if got.CurrentMood != models.EmotionAngry {
			t.Errorf("mood = %s, want angry", got.CurrentMood)
		}
		if len(got.Alerts) != 1 || got.Alerts[0].Type != "high_stress" {
			t.Errorf("alerts = %+v, want one high_stress alert", got.Alerts)
		}
	})
}

func TestEndSession(t *testing.T) {
	start := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	m := NewMode()
	m.SetClock(fixedClock(start))
	owner := uuid.New()
	s := m.Start(owner, models.MeetingInfo{Title: "Planning"})

	readings := []models.SessionReading{
		{DominantEmotion: models.EmotionHappy, StressLevel: 40, BlinkRate: 17, Timestamp: start.Add(1 * time.Minute)},
		{DominantEmotion: models.EmotionHappy, StressLevel: 45, BlinkRate: 18, Timestamp: start.Add(2 * time.Minute)},
		{DominantEmotion: models.EmotionNeutral, StressLevel: 50, BlinkRate: 16, Timestamp: start.Add(6 * time.Minute)},
	}
	for _, r := range readings {
		if err := m.AddReading(owner, s.ID, r); err != nil {
			t.Fatal(err)
		}
	}

	m.SetClock(fixedClock(start.Add(10 * time.Minute)))
	report, err := m.End(owner, s.ID)
	if err != nil {
		t.Fatal(err)
	}

	if report.SessionID != s.ID || report.OwnerID != owner {
		t.Errorf("report ids = %s/%s, want %s/%s", report.SessionID, report.OwnerID, s.ID, owner)
	}
	if report.DurationSeconds != 600 {
		t.Errorf("duration = %v, want 600", report.DurationSeconds)
	}
	if report.TotalReadings != 3 {
		t.Errorf("total readings = %d, want 3", report.TotalReadings)
	}
	if report.Summary.Title != "Planning" || report.Summary.Duration != "10 minutes" {
		t.Errorf("summary = %+v", report.Summary)
	}
	if len(report.EmotionTimeline) != 2 {
		t.Fatalf("timeline buckets = %d, want 2", len(report.EmotionTimeline))
	}
	if report.EmotionTimeline[0].Time != "0-5 min" || report.EmotionTimeline[0].DominantEmotion != models.EmotionHappy {
		t.Errorf("first bucket = %+v", report.EmotionTimeline[0])
	}
	if report.EmotionTimeline[1].Time != "5-10 min" || report.EmotionTimeline[1].Count != 1 {
		t.Errorf("second bucket = %+v", report.EmotionTimeline[1])
	}

	if m.ActiveCount() != 0 {
		t.Errorf("active count after end = %d, want 0", m.ActiveCount())
	}
	if _, err := m.End(owner, s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second End err = %v, want ErrSessionNotFound", err)
	}
	if err := m.AddReading(owner, s.ID, models.SessionReading{}); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("AddReading after End err = %v, want ErrSessionNotFound", err)
	}
}
