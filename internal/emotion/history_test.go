package emotion

import (
	"testing"

	"github.com/google/uuid"

	"moodlens-backend/internal/models"
)

func TestHistory(t *testing.T) {
	h := NewHistory(3)
	user := uuid.New()

	if got := h.Recent(user, 10); len(got) != 0 {
		t.Errorf("fresh history returned %d readings", len(got))
	}

	for _, e := range []models.Emotion{models.EmotionHappy, models.EmotionSad, models.EmotionAngry} {
		h.Add(user, models.Reading{DominantEmotion: e})
	}

	got := h.Recent(user, 10)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].DominantEmotion != models.EmotionAngry {
		t.Errorf("newest = %s, want angry", got[0].DominantEmotion)
	}

	// The cap evicts the oldest entry.
	h.Add(user, models.Reading{DominantEmotion: models.EmotionNeutral})
	got = h.Recent(user, 10)
	if len(got) != 3 {
		t.Fatalf("len after eviction = %d, want 3", len(got))
	}
	if got[0].DominantEmotion != models.EmotionNeutral || got[2].DominantEmotion != models.EmotionSad {
		t.Errorf("order after eviction = %v", got)
	}

	// Each subject keeps their own history.
	other := uuid.New()
	if got := h.Recent(other, 5); len(got) != 0 {
		t.Errorf("cross-subject leak: %v", got)
	}

	h.Forget(user)
	if got := h.Recent(user, 5); len(got) != 0 {
		t.Errorf("history survives Forget: %v", got)
	}
}
