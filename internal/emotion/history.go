package emotion

import (
	"sync"

	"github.com/google/uuid"

	"moodlens-backend/internal/models"
)

// DefaultHistoryCap bounds the number of readings retained per subject.
const DefaultHistoryCap = 1000

// History is a bounded, per-subject in-memory store of recent readings
// ordered most-recent-first. It backs pattern detection without a
// round trip to persistent storage.
type History struct {
	mu       sync.RWMutex
	cap      int
	readings map[uuid.UUID][]models.Reading
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCap
	}
	return &History{
		cap:      capacity,
		readings: make(map[uuid.UUID][]models.Reading),
	}
}

// Add prepends a reading to the subject's history, evicting the oldest
// entry once the cap is reached.
func (h *History) Add(userID uuid.UUID, r models.Reading) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list := h.readings[userID]
	list = append([]models.Reading{r}, list...)
	if len(list) > h.cap {
		list = list[:h.cap]
	}
	h.readings[userID] = list
}

// Recent returns up to n readings for the subject, newest first.
func (h *History) Recent(userID uuid.UUID, n int) []models.Reading {
	h.mu.RLock()
	defer h.mu.RUnlock()

	list := h.readings[userID]
	if n > len(list) {
		n = len(list)
	}
	out := make([]models.Reading, n)
	copy(out, list[:n])
	return out
}

// Forget releases all retained readings for the subject.
func (h *History) Forget(userID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.readings, userID)
}
