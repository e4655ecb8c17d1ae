package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"moodlens-backend/internal/models"
)

// ReadingSource is the persistence surface the analytics service reads
// from.
type ReadingSource interface {
	GetByTimeRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.Reading, error)
}

// AnalyticsService computes aggregate statistics and trends over stored
// readings.
type AnalyticsService struct {
	readings ReadingSource
	now      func() time.Time
}

func NewAnalyticsService(readings ReadingSource) *AnalyticsService {
	return &AnalyticsService{
		readings: readings,
		now:      time.Now,
	}
}

// SetClock overrides the time source. Tests only.
func (s *AnalyticsService) SetClock(now func() time.Time) {
	s.now = now
}

// ComputeStats aggregates all readings of a user in [from, to).
func (s *AnalyticsService) ComputeStats(ctx context.Context, userID uuid.UUID, from, to time.Time) (models.TimeframeStats, error) {
	readings, err := s.readings.GetByTimeRange(ctx, userID, from, to)
	if err != nil {
		return models.TimeframeStats{}, fmt.Errorf("failed to load readings: %w", err)
	}
	return AggregateReadings(readings), nil
}

// AggregateReadings folds a slice of readings into timeframe statistics.
func AggregateReadings(readings []models.Reading) models.TimeframeStats {
	stats := models.TimeframeStats{
		DominantEmotions:    map[models.Emotion]int{},
		EmotionDistribution: map[models.Emotion]float64{},
		TotalReadings:       len(readings),
	}
	if len(readings) == 0 {
		return stats
	}

	var stressSum, wellnessSum float64
	for _, r := range readings {
		stressSum += r.StressLevel
		wellnessSum += r.WellnessScore
		stats.DominantEmotions[r.DominantEmotion]++
	}

	n := float64(len(readings))
	stats.AverageStress = round1(stressSum / n)
	stats.AverageWellness = round1(wellnessSum / n)
	for emotion, count := range stats.DominantEmotions {
		stats.EmotionDistribution[emotion] = round1(float64(count) / n * 100)
	}
	return stats
}

// ComputeTrends splits the window readings into an older and a newer
// half and reports the direction of change. Returns nil when there is
// not enough data for a meaningful comparison.
func (s *AnalyticsService) ComputeTrends(ctx context.Context, userID uuid.UUID, from, to time.Time) (*models.Trends, error) {
	readings, err := s.readings.GetByTimeRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load readings: %w", err)
	}
	return TrendsFromReadings(readings), nil
}

// TrendsFromReadings compares the first and second half of a
// chronologically ordered reading slice.
func TrendsFromReadings(readings []models.Reading) *models.Trends {
	if len(readings) < 4 {
		return nil
	}

	mid := len(readings) / 2
	older, newer := readings[:mid], readings[mid:]

	olderStress, olderWellness := averages(older)
	newerStress, newerWellness := averages(newer)

	trends := &models.Trends{
		StressTrend:   round1(newerStress - olderStress),
		WellnessTrend: round1(newerWellness - olderWellness),
	}
	if trends.WellnessTrend >= 0 && trends.StressTrend <= 0 {
		trends.Direction = "improving"
	} else {
		trends.Direction = "declining"
	}
	return trends
}

// Dashboard assembles today/week/month statistics plus the weekly trend.
func (s *AnalyticsService) Dashboard(ctx context.Context, userID uuid.UUID) (models.DashboardData, error) {
	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	today, err := s.ComputeStats(ctx, userID, startOfDay, now)
	if err != nil {
		return models.DashboardData{}, err
	}
	week, err := s.ComputeStats(ctx, userID, now.AddDate(0, 0, -7), now)
	if err != nil {
		return models.DashboardData{}, err
	}
	month, err := s.ComputeStats(ctx, userID, now.AddDate(0, -1, 0), now)
	if err != nil {
		return models.DashboardData{}, err
	}
	trends, err := s.ComputeTrends(ctx, userID, now.AddDate(0, 0, -7), now)
	if err != nil {
		return models.DashboardData{}, err
	}

	return models.DashboardData{
		Today:  today,
		Week:   week,
		Month:  month,
		Trends: trends,
	}, nil
}

func averages(readings []models.Reading) (stress, wellness float64) {
	if len(readings) == 0 {
		return 0, 0
	}
	for _, r := range readings {
		stress += r.StressLevel
		wellness += r.WellnessScore
	}
	n := float64(len(readings))
	return stress / n, wellness / n
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
