package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"moodlens-backend/internal/middleware"
	"moodlens-backend/internal/models"
	"moodlens-backend/internal/repository"
	"moodlens-backend/internal/services"
	"moodlens-backend/internal/worker"
)

type DashboardHandler struct {
	analytics *services.AnalyticsService
	pool      *worker.Pool
	jobRepo   *repository.JobRepo
}

func NewDashboardHandler(analytics *services.AnalyticsService, pool *worker.Pool, jobRepo *repository.JobRepo) *DashboardHandler {
	return &DashboardHandler{analytics: analytics, pool: pool, jobRepo: jobRepo}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	data, err := h.analytics.Dashboard(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// RequestDailyReport queues report generation; the result is delivered
// as a daily_summary notification.
func (h *DashboardHandler) RequestDailyReport(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	job := &models.Job{UserID: userID, Type: "daily-report", ReferenceID: userID}
	if err := h.pool.Enqueue(r.Context(), job); err != nil {
		log.Printf("failed to enqueue daily report for user %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to queue report", r))
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id":  job.ID,
		"message": "Daily report queued",
	})
}

// JobStatus reports the state of a previously queued job.
func (h *DashboardHandler) JobStatus(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid job ID", r))
		return
	}

	job, err := h.jobRepo.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if job.UserID != userID {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Resource not found", r))
		return
	}
	writeJSON(w, http.StatusOK, job)
}
