package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"moodlens-backend/internal/handlers"
	"moodlens-backend/internal/middleware"
	"moodlens-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	emotionHandler *handlers.EmotionHandler,
	meetingHandler *handlers.MeetingHandler,
	journalHandler *handlers.JournalHandler,
	dashboardHandler *handlers.DashboardHandler,
	userHandler *handlers.UserHandler,
	wsHub *websocket.Hub,
	frontendURL string,
	authRateLimit int,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (per-IP, per minute)
	authLimiter := middleware.NewRateLimiter(authRateLimit, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// ──── Emotion Routes ────
		r.Route("/emotions", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", emotionHandler.Record)
			r.Get("/history", emotionHandler.History)
			r.Delete("/history", emotionHandler.ClearHistory)
			r.Get("/patterns", emotionHandler.Patterns)
			r.Get("/stats", emotionHandler.Stats)
			r.Get("/exercise", emotionHandler.Exercise)
		})

		// ──── Meeting Routes ────
		r.Route("/meetings", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/start", meetingHandler.Start)
			r.Post("/{id}/readings", meetingHandler.AddReading)
			r.Get("/{id}/analyze", meetingHandler.Analyze)
			r.Get("/{id}/insights", meetingHandler.Insights)
			r.Post("/{id}/end", meetingHandler.End)
			r.Get("/reports", meetingHandler.ListReports)
			r.Get("/reports/{id}", meetingHandler.GetReport)
		})

		// ──── Journal Routes ────
		r.Route("/journal", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", journalHandler.Create)
			r.Get("/", journalHandler.List)
			r.Get("/{id}", journalHandler.Get)
			r.Delete("/{id}", journalHandler.Delete)
		})

		// ──── Dashboard Routes ────
		r.Route("/dashboard", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/stats", dashboardHandler.Stats)
			r.Post("/daily-report", dashboardHandler.RequestDailyReport)
			r.Get("/jobs/{id}", dashboardHandler.JobStatus)
		})

		// ──── User Routes ────
		r.Route("/user", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/me", userHandler.GetMe)
			r.Put("/password", userHandler.ChangePassword)
			r.Delete("/me", userHandler.DeleteMe)
			r.Get("/notifications", userHandler.GetNotificationPreferences)
			r.Put("/notifications", userHandler.UpdateNotificationPreferences)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
