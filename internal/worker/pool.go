package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"moodlens-backend/internal/models"
	"moodlens-backend/internal/repository"
	"moodlens-backend/internal/services"
	"moodlens-backend/internal/websocket"
)

// Queue names consumed by the pool.
const (
	QueueDailyReport     = "queue:daily-report"
	QueueJournalAnalysis = "queue:journal-analysis"
	QueueCrisisCheck     = "queue:crisis-check"
)

type Pool struct {
	redis       *redis.Client
	insight     *services.InsightService
	coach       *services.Coach
	gate        *services.NotificationGate
	hub         *websocket.Hub
	jobRepo     *repository.JobRepo
	readingRepo *repository.ReadingRepo
	journalRepo *repository.JournalRepo
	workerCount int
	stopChan    chan struct{}
}

func NewPool(
	redisClient *redis.Client,
	insight *services.InsightService,
	coach *services.Coach,
	gate *services.NotificationGate,
	hub *websocket.Hub,
	jobRepo *repository.JobRepo,
	readingRepo *repository.ReadingRepo,
	journalRepo *repository.JournalRepo,
	workerCount int,
) *Pool {
	return &Pool{
		redis:       redisClient,
		insight:     insight,
		coach:       coach,
		gate:        gate,
		hub:         hub,
		jobRepo:     jobRepo,
		readingRepo: readingRepo,
		journalRepo: journalRepo,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

// Enqueue persists a job and pushes it onto its queue.
func (p *Pool) Enqueue(ctx context.Context, job *models.Job) error {
	if err := p.jobRepo.Create(ctx, job); err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	jobBytes, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return p.redis.LPush(ctx, jobQueueName(job.Type), string(jobBytes)).Err()
}

func (p *Pool) Start() {
	queues := []string{
		QueueDailyReport,
		QueueJournalAnalysis,
		QueueCrisisCheck,
	}

	for i := 0; i < p.workerCount; i++ {
		go p.worker(i, queues)
	}

	log.Printf("Started %d worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int, queues []string) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, queues...).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		// Parse job
		var job models.Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse job: %v", id, err)
			continue
		}

		// Try to acquire lock
		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue // Another worker has this job
		}

		log.Printf("Worker %d: processing job %s (type: %s)", id, job.ID, job.Type)

		p.jobRepo.UpdateStatus(ctx, job.ID, "processing")

		var processErr error
		switch job.Type {
		case "daily-report":
			processErr = p.processDailyReport(ctx, &job)
		case "journal-analysis":
			processErr = p.processJournalAnalysis(ctx, &job)
		case "crisis-check":
			processErr = p.processCrisisCheck(ctx, &job)
		default:
			processErr = fmt.Errorf("unknown job type: %s", job.Type)
		}

		if processErr != nil {
			p.handleFailure(ctx, &job, processErr)
		} else {
			p.handleSuccess(ctx, &job)
		}

		// Release lock
		p.redis.Del(ctx, lockKey)
	}
}

func (p *Pool) processDailyReport(ctx context.Context, job *models.Job) error {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	readings, err := p.readingRepo.GetByTimeRange(ctx, job.UserID, startOfDay, now)
	if err != nil {
		return fmt.Errorf("failed to load readings: %w", err)
	}

	journalCount, err := p.journalRepo.CountSince(ctx, job.UserID, startOfDay)
	if err != nil {
		log.Printf("failed to count journal entries for user %s: %v", job.UserID, err)
	}

	stats := services.AggregateReadings(readings)
	report := p.insight.GenerateDailyReport(ctx, stats, journalCount)

	decision := p.gate.Deliver(ctx, job.UserID, models.Notification{
		Category: models.CategoryDailySummary,
		Title:    "Your Daily Wellness Report",
		Message:  report.Summary,
		Data:     report,
		Priority: models.PriorityLow,
	})
	log.Printf("Daily report for user %s: %s", job.UserID, decision.Reason)
	return nil
}

func (p *Pool) processJournalAnalysis(ctx context.Context, job *models.Job) error {
	entry, err := p.journalRepo.GetByID(ctx, job.ReferenceID, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to get journal entry: %w", err)
	}

	analysis := p.insight.AnalyzeJournalEntry(ctx, entry.Text, entry.MoodRating)
	if err := p.journalRepo.UpdateAnalysis(ctx, entry.ID, analysis); err != nil {
		return fmt.Errorf("failed to save journal analysis: %w", err)
	}

	p.hub.PublishToUser(ctx, job.UserID, models.Envelope{
		Type:      models.EnvelopeNotification,
		Data:      mustJSON(map[string]string{"journal_id": entry.ID.String(), "analysis": analysis}),
		Timestamp: time.Now().Format(time.RFC3339),
	})

	// Journal text is also a crisis signal.
	return p.assessCrisis(ctx, job, entry.Text)
}

func (p *Pool) processCrisisCheck(ctx context.Context, job *models.Job) error {
	return p.assessCrisis(ctx, job, "")
}

func (p *Pool) assessCrisis(ctx context.Context, job *models.Job, journalText string) error {
	readings, err := p.readingRepo.GetRecent(ctx, job.UserID, 100)
	if err != nil {
		return fmt.Errorf("failed to load readings: %w", err)
	}

	assessment := p.coach.AssessCrisisRisk(readings, journalText)
	if !assessment.AtRisk {
		return nil
	}

	decision := p.gate.Deliver(ctx, job.UserID, models.Notification{
		Category: models.CategoryCrisisSupport,
		Title:    "We're Here For You",
		Message:  "Your recent readings suggest you may be going through a difficult time. Support resources are available, and reaching out is a sign of strength.",
		Data:     assessment,
		Priority: models.PriorityCritical,
	})
	log.Printf("Crisis assessment for user %s fired (%v): %s", job.UserID, assessment.Reasons, decision.Reason)
	return nil
}

func (p *Pool) handleSuccess(ctx context.Context, job *models.Job) {
	p.jobRepo.UpdateStatus(ctx, job.ID, "completed")
	log.Printf("Job %s completed successfully", job.ID)
}

func (p *Pool) handleFailure(ctx context.Context, job *models.Job, err error) {
	job.RetryCount++
	errMsg := err.Error()

	if job.RetryCount < 3 {
		// Re-queue with backoff
		log.Printf("Job %s failed (attempt %d): %s, retrying", job.ID, job.RetryCount, errMsg)
		p.jobRepo.UpdateStatus(ctx, job.ID, "pending")
		p.jobRepo.UpdateError(ctx, job.ID, errMsg, job.RetryCount)

		jobBytes, _ := json.Marshal(job)
		backoff := time.Duration(1<<uint(job.RetryCount)) * time.Second
		time.AfterFunc(backoff, func() {
			p.redis.LPush(context.Background(), jobQueueName(job.Type), string(jobBytes))
		})
	} else {
		// Max retries reached
		log.Printf("Job %s failed permanently: %s", job.ID, errMsg)
		p.jobRepo.UpdateStatus(ctx, job.ID, "failed")
		p.jobRepo.UpdateError(ctx, job.ID, errMsg, job.RetryCount)

		p.hub.PublishToUser(ctx, job.UserID, models.Envelope{
			Type:      models.EnvelopeError,
			Message:   "Background job failed: " + job.Type,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}
}

func jobQueueName(jobType string) string {
	switch jobType {
	case "daily-report":
		return QueueDailyReport
	case "journal-analysis":
		return QueueJournalAnalysis
	case "crisis-check":
		return QueueCrisisCheck
	default:
		return "queue:" + jobType
	}
}

func mustJSON(v interface{}) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
