package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"moodlens-backend/internal/emotion"
	"moodlens-backend/internal/middleware"
	"moodlens-backend/internal/models"
	"moodlens-backend/internal/repository"
	"moodlens-backend/internal/services"
	"moodlens-backend/internal/websocket"
)

type EmotionHandler struct {
	scorer      *emotion.Scorer
	history     *emotion.History
	readingRepo *repository.ReadingRepo
	insight     *services.InsightService
	coach       *services.Coach
	gate        *services.NotificationGate
	analytics   *services.AnalyticsService
	hub         *websocket.Hub

	earThreshold      float64
	consecutiveFrames int

	mu        sync.Mutex
	detectors map[uuid.UUID]*emotion.BlinkDetector
}

func NewEmotionHandler(
	scorer *emotion.Scorer,
	history *emotion.History,
	readingRepo *repository.ReadingRepo,
	insight *services.InsightService,
	coach *services.Coach,
	gate *services.NotificationGate,
	analytics *services.AnalyticsService,
	hub *websocket.Hub,
	earThreshold float64,
	consecutiveFrames int,
) *EmotionHandler {
	return &EmotionHandler{
		scorer:            scorer,
		history:           history,
		readingRepo:       readingRepo,
		insight:           insight,
		coach:             coach,
		gate:              gate,
		analytics:         analytics,
		hub:               hub,
		earThreshold:      earThreshold,
		consecutiveFrames: consecutiveFrames,
		detectors:         make(map[uuid.UUID]*emotion.BlinkDetector),
	}
}

type recordRequest struct {
	Emotions  models.EmotionSnapshot    `json:"emotions"`
	Landmarks *models.EyeLandmarkSample `json:"landmarks,omitempty"`
	BlinkRate float64                   `json:"blink_rate,omitempty"`
	SessionID string                    `json:"session_id,omitempty"`
}

// Record ingests one emotion frame: scoring, pattern detection, insight
// generation, persistence and alerting in a single pass.
func (h *EmotionHandler) Record(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if len(req.Emotions) == 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"emotions": "At least one emotion probability is required"}, r))
		return
	}

	detector := h.detectorFor(userID)
	blinkRate := req.BlinkRate
	var blinkCount int
	if req.Landmarks != nil {
		result := detector.Detect(*req.Landmarks)
		blinkCount = result.BlinkCount
		if blinkRate == 0 {
			// Landmark-only clients get the rate observed server-side
			// instead of a phantom zero.
			blinkRate = detector.ObservedRate()
		}
	} else {
		blinkCount = detector.BlinkCount()
	}

	dominant := emotion.DominantEmotion(req.Emotions)
	stress := h.scorer.StressLevel(req.Emotions, blinkRate)
	wellness := h.scorer.WellnessScore(req.Emotions, stress)

	reading := models.Reading{
		UserID:          userID,
		Timestamp:       time.Now(),
		Emotions:        req.Emotions,
		DominantEmotion: dominant,
		BlinkCount:      blinkCount,
		StressLevel:     stress,
		WellnessScore:   wellness,
		SessionID:       req.SessionID,
	}

	h.history.Add(userID, reading)
	recent := h.history.Recent(userID, 20)
	pattern := emotion.DetectPattern(recent)

	patternLabel := ""
	if pattern != nil {
		patternLabel = pattern.Pattern
	}
	insight := h.insight.GenerateInsight(r.Context(), services.InsightContext{
		Emotions:        req.Emotions,
		DominantEmotion: dominant,
		StressLevel:     stress,
		WellnessScore:   wellness,
		RecentPattern:   patternLabel,
	})
	reading.AIInsight = &insight

	if err := h.readingRepo.Create(r.Context(), &reading); err != nil {
		log.Printf("failed to persist reading for user %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save reading", r))
		return
	}

	feedback := h.coach.LiveFeedback(services.CoachState{
		DominantEmotion: dominant,
		StressLevel:     stress,
		WellnessScore:   wellness,
		BlinkRate:       blinkRate,
	})

	go h.notify(userID, reading, pattern)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"reading":  reading,
		"pattern":  pattern,
		"feedback": feedback,
	})
}

// notify pushes alert candidates through the gate. Delivery decisions
// are the gate's business; the handler only nominates.
func (h *EmotionHandler) notify(userID uuid.UUID, reading models.Reading, pattern *models.Pattern) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if data, err := json.Marshal(reading); err == nil {
		h.hub.PublishToUser(ctx, userID, models.Envelope{
			Type:      models.EnvelopeEmotionUpdate,
			Data:      data,
			Timestamp: reading.Timestamp.Format(time.RFC3339),
		})
	}

	if reading.StressLevel > 75 {
		h.gate.Deliver(ctx, userID, models.Notification{
			Category: models.CategoryStressAlert,
			Title:    "High Stress Detected",
			Message:  "Your stress level is elevated. Taking a short break could help.",
			Data:     map[string]float64{"stress_level": reading.StressLevel},
			Priority: models.PriorityHigh,
		})
	}

	if pattern != nil && pattern.Type == models.PatternConcerning {
		h.gate.Deliver(ctx, userID, models.Notification{
			Category: models.CategoryPatternAlert,
			Title:    "Emotional Pattern Noticed",
			Message:  "We noticed a recurring pattern in your recent readings. Checking in with yourself might help.",
			Data:     pattern,
			Priority: models.PriorityMedium,
		})
	}
}

// History returns recent readings, newest first, optionally filtered to
// one meeting session.
func (h *EmotionHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var readings []models.Reading
	var err error
	if sessionID := r.URL.Query().Get("session_id"); sessionID != "" {
		readings, err = h.readingRepo.GetBySession(r.Context(), userID, sessionID)
	} else {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		readings, err = h.readingRepo.GetRecent(r.Context(), userID, limit)
	}
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"readings": readings})
}

// ClearHistory drops all stored and in-memory readings for the user.
func (h *EmotionHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.readingRepo.DeleteByUser(r.Context(), userID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	h.history.Forget(userID)

	h.mu.Lock()
	delete(h.detectors, userID)
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"message": "Emotion history cleared"})
}

// Patterns runs the full pattern suite over the recent in-memory
// history.
func (h *EmotionHandler) Patterns(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	recent := h.history.Recent(userID, 100)
	if len(recent) == 0 {
		// Cold start after restart: rebuild from storage.
		stored, err := h.readingRepo.GetRecent(r.Context(), userID, 100)
		if err == nil {
			recent = stored
		}
	}

	chronological := make([]models.Reading, len(recent))
	for i, reading := range recent {
		chronological[len(recent)-1-i] = reading
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pattern":       emotion.DetectPattern(recent),
		"triggers":      emotion.DetectTriggers(chronological),
		"time_patterns": emotion.DetectTimePatterns(chronological),
		"clusters":      emotion.ClusterEmotions(chronological),
	})
}

// Stats serves aggregates for a named timeframe.
func (h *EmotionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	now := time.Now()
	var from time.Time
	switch r.URL.Query().Get("timeframe") {
	case "week":
		from = now.AddDate(0, 0, -7)
	case "month":
		from = now.AddDate(0, -1, 0)
	default: // today
		from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}

	stats, err := h.analytics.ComputeStats(r.Context(), userID, from, now)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Exercise suggests a guided activity for an emotion.
func (h *EmotionHandler) Exercise(w http.ResponseWriter, r *http.Request) {
	e := models.Emotion(r.URL.Query().Get("emotion"))
	writeJSON(w, http.StatusOK, h.coach.SuggestExercise(e))
}

func (h *EmotionHandler) detectorFor(userID uuid.UUID) *emotion.BlinkDetector {
	h.mu.Lock()
	defer h.mu.Unlock()
	d, ok := h.detectors[userID]
	if !ok {
		d = emotion.NewBlinkDetectorWithOptions(h.earThreshold, h.consecutiveFrames)
		h.detectors[userID] = d
	}
	return d
}
