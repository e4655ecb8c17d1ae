package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moodlens-backend/internal/config"
	"moodlens-backend/internal/database"
	"moodlens-backend/internal/emotion"
	"moodlens-backend/internal/handlers"
	"moodlens-backend/internal/meeting"
	"moodlens-backend/internal/middleware"
	"moodlens-backend/internal/models"
	"moodlens-backend/internal/repository"
	"moodlens-backend/internal/router"
	"moodlens-backend/internal/services"
	"moodlens-backend/internal/websocket"
	"moodlens-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting MoodLens Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL, cfg.RedisPoolSize)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	readingRepo := repository.NewReadingRepo(pool)
	journalRepo := repository.NewJournalRepo(pool)
	meetingRepo := repository.NewMeetingRepo(pool)
	jobRepo := repository.NewJobRepo(pool)

	// ──── Step 5: Initialize Insight Client ────
	insightService, err := services.NewInsightService(cfg.GeminiAPIKey, cfg.GeminiConcurrentReqs)
	if err != nil {
		log.Fatalf("✗ Insight client initialization failed: %v", err)
	}
	defer insightService.Close()
	log.Println("✓ Insight client initialized")

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.FrontendURL)
	authService := services.NewAuthService(userRepo, redisClients.Queue, jwtAuth, emailService)
	coach := services.NewCoach()
	analytics := services.NewAnalyticsService(readingRepo)

	scorer := emotion.NewScorer(emotion.DefaultScorerConfig())
	history := emotion.NewHistory(cfg.HistoryCap)
	meetingMode := meeting.NewMode()

	// ──── Step 6: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub)
	log.Println("✓ WebSocket hub started")

	// ──── Step 7: Start Notification Gate ────
	senders := map[models.Channel]services.Sender{
		models.ChannelInApp:   services.NewInAppSender(wsHub),
		models.ChannelWebhook: services.NewWebhookSender(cfg.WebhookURL),
		models.ChannelEmail:   services.NewEmailSender(userRepo, emailService),
	}
	gate := services.NewNotificationGate(userRepo, senders)
	gate.Start()
	log.Println("✓ Notification gate started")

	// ──── Step 8: Start Job Worker Pool ────
	workerPool := worker.NewPool(
		redisClients.Queue,
		insightService,
		coach,
		gate,
		wsHub,
		jobRepo,
		readingRepo,
		journalRepo,
		cfg.WorkerCount,
	)
	workerPool.Start()
	log.Printf("✓ Worker pool started (%d goroutines)", cfg.WorkerCount)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	emotionHandler := handlers.NewEmotionHandler(
		scorer, history, readingRepo, insightService, coach, gate, analytics, wsHub,
		cfg.EARThreshold, cfg.ConsecutiveFrames,
	)
	meetingHandler := handlers.NewMeetingHandler(meetingMode, meetingRepo)
	journalHandler := handlers.NewJournalHandler(journalRepo, workerPool)
	dashboardHandler := handlers.NewDashboardHandler(analytics, workerPool, jobRepo)
	userHandler := handlers.NewUserHandler(userRepo)

	// ──── Step 9: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		emotionHandler,
		meetingHandler,
		journalHandler,
		dashboardHandler,
		userHandler,
		wsHub,
		cfg.FrontendURL,
		cfg.AuthRateLimit,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()
		gate.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ MoodLens Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
