package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"moodlens-backend/internal/emotion"
	"moodlens-backend/internal/meeting"
	"moodlens-backend/internal/middleware"
	"moodlens-backend/internal/models"
	"moodlens-backend/internal/repository"
)

type MeetingHandler struct {
	mode        *meeting.Mode
	meetingRepo *repository.MeetingRepo
}

func NewMeetingHandler(mode *meeting.Mode, meetingRepo *repository.MeetingRepo) *MeetingHandler {
	return &MeetingHandler{mode: mode, meetingRepo: meetingRepo}
}

func (h *MeetingHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var info models.MeetingInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	session := h.mode.Start(userID, info)
	writeJSON(w, http.StatusCreated, session)
}

type sessionReadingRequest struct {
	Emotions  models.EmotionSnapshot `json:"emotions"`
	Stress    float64                `json:"stress_level"`
	Wellness  float64                `json:"wellness_score"`
	BlinkRate float64                `json:"blink_rate"`
}

func (h *MeetingHandler) AddReading(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	var req sessionReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	reading := models.SessionReading{
		DominantEmotion: emotion.DominantEmotion(req.Emotions),
		StressLevel:     req.Stress,
		WellnessScore:   req.Wellness,
		BlinkRate:       req.BlinkRate,
	}

	if err := h.mode.AddReading(userID, sessionID, reading); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (h *MeetingHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	engagement, err := h.mode.AnalyzeEngagement(userID, sessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, engagement)
}

func (h *MeetingHandler) Insights(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	insights, err := h.mode.GetLiveInsights(userID, sessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, insights)
}

// End finalizes a session; the report is the only artifact that
// survives.
func (h *MeetingHandler) End(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	report, err := h.mode.End(userID, sessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if err := h.meetingRepo.SaveReport(r.Context(), report); err != nil {
		log.Printf("failed to persist meeting report %s: %v", report.SessionID, err)
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *MeetingHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	reports, err := h.meetingRepo.ListReports(r.Context(), userID, 20)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reports": reports})
}

func (h *MeetingHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	report, err := h.meetingRepo.GetReport(r.Context(), sessionID, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
