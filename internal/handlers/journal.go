package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"moodlens-backend/internal/middleware"
	"moodlens-backend/internal/models"
	"moodlens-backend/internal/repository"
	"moodlens-backend/internal/worker"
)

type JournalHandler struct {
	journalRepo *repository.JournalRepo
	pool        *worker.Pool
}

func NewJournalHandler(journalRepo *repository.JournalRepo, pool *worker.Pool) *JournalHandler {
	return &JournalHandler{journalRepo: journalRepo, pool: pool}
}

// Create stores an entry and queues the analysis job. The AI feedback
// arrives asynchronously over the websocket.
func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.CreateJournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	fieldErrors := make(map[string]string)
	if strings.TrimSpace(req.Text) == "" {
		fieldErrors["text"] = "Entry text is required"
	}
	if req.MoodRating < 1 || req.MoodRating > 10 {
		fieldErrors["mood_rating"] = "Mood rating must be between 1 and 10"
	}
	if len(fieldErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fieldErrors, r))
		return
	}

	entry := &models.JournalEntry{
		UserID:     userID,
		Text:       req.Text,
		MoodRating: req.MoodRating,
	}
	if err := h.journalRepo.Create(r.Context(), entry); err != nil {
		handleServiceError(w, r, err)
		return
	}

	job := &models.Job{UserID: userID, Type: "journal-analysis", ReferenceID: entry.ID}
	if err := h.pool.Enqueue(r.Context(), job); err != nil {
		log.Printf("failed to enqueue journal analysis for entry %s: %v", entry.ID, err)
	}

	writeJSON(w, http.StatusCreated, entry)
}

func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.journalRepo.List(r.Context(), userID, limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

func (h *JournalHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid entry ID", r))
		return
	}

	entry, err := h.journalRepo.GetByID(r.Context(), id, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *JournalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid entry ID", r))
		return
	}

	if err := h.journalRepo.Delete(r.Context(), id, userID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Entry deleted"})
}
