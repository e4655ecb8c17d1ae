// Package meeting maintains the registry of live engagement sessions
// and computes engagement analytics over their reading streams.
package meeting

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"moodlens-backend/internal/models"
)

// ErrSessionNotFound is returned for any operation on an unknown or
// already-ended session id. Sessions are never created implicitly.
var ErrSessionNotFound = errors.New("meeting session not found")

const (
	baselineBlinkRate = 17.5
	liveWindow        = 10
	timelineBucket    = 5 * time.Minute
)

// emotionEngagement is the fixed per-emotion desirability table used
// for the emotional-engagement component.
var emotionEngagement = map[models.Emotion]float64{
	models.EmotionHappy:     80,
	models.EmotionSurprised: 75,
	models.EmotionNeutral:   50,
	models.EmotionSad:       30,
	models.EmotionAngry:     40,
	models.EmotionFearful:   35,
}

type session struct {
	mu sync.Mutex

	id        uuid.UUID
	ownerID   uuid.UUID
	startTime time.Time
	endTime   *time.Time
	info      models.MeetingInfo
	stream    []models.SessionReading

	// running snapshot, refreshed on every reading
	runningScore float64
}

// Mode owns all live engagement sessions. Operations on different
// sessions proceed without contention; operations on the same session
// are serialized by its own lock.
type Mode struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*session

	now func() time.Time
}

func NewMode() *Mode {
	return &Mode{
		sessions: make(map[uuid.UUID]*session),
		now:      time.Now,
	}
}

// SetClock overrides the time source for deterministic tests.
func (m *Mode) SetClock(now func() time.Time) {
	m.now = now
}

// Session is the public view of a live session.
type Session struct {
	ID          uuid.UUID          `json:"id"`
	OwnerID     uuid.UUID          `json:"owner_id"`
	StartTime   time.Time          `json:"start_time"`
	MeetingInfo models.MeetingInfo `json:"meeting_info"`
	Readings    int                `json:"readings"`
}

// Start creates a fresh session. It always succeeds.
func (m *Mode) Start(ownerID uuid.UUID, info models.MeetingInfo) Session {
	if info.Title == "" {
		info.Title = "Untitled Meeting"
	}
	if info.Type == "" {
		info.Type = "general"
	}
	if info.Participants <= 0 {
		info.Participants = 1
	}

	s := &session{
		id:        uuid.New(),
		ownerID:   ownerID,
		startTime: m.now(),
		info:      info,
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	return Session{
		ID:          s.id,
		OwnerID:     s.ownerID,
		StartTime:   s.startTime,
		MeetingInfo: s.info,
	}
}

// get resolves a session for a caller. A session owned by someone else
// is indistinguishable from a missing one.
func (m *Mode) get(ownerID, id uuid.UUID) (*session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || s.ownerID != ownerID {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// AddReading appends a reading to an active session. The reading is
// stamped with the local arrival time; the running analytics snapshot
// is refreshed.
func (m *Mode) AddReading(ownerID, id uuid.UUID, r models.SessionReading) error {
	s, err := m.get(ownerID, id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.endTime != nil {
		return ErrSessionNotFound
	}

	if r.Timestamp.IsZero() {
		r.Timestamp = m.now()
	}
	s.stream = append(s.stream, r)
	s.runningScore = attentionScore(s.stream)

	return nil
}

// AnalyzeEngagement computes the weighted engagement score over the
// full reading stream.
func (m *Mode) AnalyzeEngagement(ownerID, id uuid.UUID) (models.Engagement, error) {
	s, err := m.get(ownerID, id)
	if err != nil {
		return models.Engagement{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return analyze(s.stream), nil
}

func analyze(stream []models.SessionReading) models.Engagement {
	if len(stream) == 0 {
		return models.Engagement{EngagementScore: 0, Status: "no_data"}
	}

	breakdown := models.EngagementBreakdown{
		AttentionScore:          attentionScore(stream),
		EmotionalEngagement:     emotionalEngagement(stream),
		StressBalance:           stressBalance(stream),
		ParticipationIndicators: participation(stream),
	}

	score := int(math.Round(
		breakdown.AttentionScore*0.3 +
			breakdown.EmotionalEngagement*0.3 +
			breakdown.StressBalance*0.2 +
			breakdown.ParticipationIndicators*0.2))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return models.Engagement{
		EngagementScore: score,
		Breakdown:       &breakdown,
		Status:          engagementStatus(score),
		Recommendations: recommendations(breakdown),
	}
}

// GetLiveInsights summarizes the most recent readings of a running
// session and raises alerts for elevated stress or flat engagement.
func (m *Mode) GetLiveInsights(ownerID, id uuid.UUID) (models.LiveInsights, error) {
	s, err := m.get(ownerID, id)
	if err != nil {
		return models.LiveInsights{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recent := s.stream
	if len(recent) > liveWindow {
		recent = recent[len(recent)-liveWindow:]
	}
	if len(recent) == 0 {
		return models.LiveInsights{Status: "waiting_for_data"}, nil
	}

	var totalStress, totalWellness float64
	for _, r := range recent {
		totalStress += r.StressLevel
		totalWellness += r.WellnessScore
	}
	avgStress := totalStress / float64(len(recent))
	avgWellness := totalWellness / float64(len(recent))

	insights := models.LiveInsights{
		Status:      "ok",
		CurrentMood: mostFrequentEmotion(recent),
		AvgStress:   math.Round(avgStress*10) / 10,
		AvgWellness: math.Round(avgWellness*10) / 10,
		Alerts:      []models.LiveAlert{},
	}

	if avgStress > 70 {
		insights.Alerts = append(insights.Alerts, models.LiveAlert{
			Type:     "high_stress",
			Message:  "Stress level is elevated. Consider a short break.",
			Priority: "high",
		})
	}

	if insights.CurrentMood == models.EmotionNeutral && len(recent) > 5 {
		insights.Alerts = append(insights.Alerts, models.LiveAlert{
			Type:     "low_engagement",
			Message:  "Engagement may be dropping. Try interactive elements.",
			Priority: "medium",
		})
	}

	return insights, nil
}

// End finalizes the session, builds the report, and removes the session
// from the registry atomically. A second End on the same id, or an End
// by anyone but the owner, fails with ErrSessionNotFound.
func (m *Mode) End(ownerID, id uuid.UUID) (*models.MeetingReport, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok && s.ownerID != ownerID {
		ok = false
	} else if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return nil, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	endTime := m.now()
	s.endTime = &endTime
	duration := endTime.Sub(s.startTime).Seconds()

	analytics := analyze(s.stream)

	report := &models.MeetingReport{
		SessionID:       s.id,
		OwnerID:         s.ownerID,
		MeetingInfo:     s.info,
		DurationSeconds: duration,
		TotalReadings:   len(s.stream),
		Analytics:       analytics,
		Summary:         buildSummary(s, duration, analytics),
		EmotionTimeline: buildTimeline(s.startTime, s.stream),
	}

	return report, nil
}

// ActiveCount reports how many sessions are currently live.
func (m *Mode) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ===== scoring components =====

func attentionScore(stream []models.SessionReading) float64 {
	var totalRate float64
	seen := make(map[models.Emotion]struct{})
	for _, r := range stream {
		totalRate += r.BlinkRate
		seen[r.DominantEmotion] = struct{}{}
	}
	avgRate := totalRate / float64(len(stream))

	blinkScore := math.Max(0, 100-math.Abs(avgRate-baselineBlinkRate)*5)
	varietyScore := math.Min(float64(len(seen))*15, 100)

	return blinkScore*0.6 + varietyScore*0.4
}

func emotionalEngagement(stream []models.SessionReading) float64 {
	var total float64
	for _, r := range stream {
		score, ok := emotionEngagement[r.DominantEmotion]
		if !ok {
			score = 50
		}
		total += score
	}
	return total / float64(len(stream))
}

func stressBalance(stream []models.SessionReading) float64 {
	var total float64
	for _, r := range stream {
		total += r.StressLevel
	}
	avg := total / float64(len(stream))

	var balance float64
	switch {
	case avg >= 30 && avg <= 60:
		balance = 100
	case avg < 30:
		balance = 100 - (30-avg)*2
	default:
		balance = 100 - (avg-60)*2
	}
	return math.Max(0, balance)
}

func participation(stream []models.SessionReading) float64 {
	var changes int
	for i := 1; i < len(stream); i++ {
		if stream[i].DominantEmotion != stream[i-1].DominantEmotion {
			changes++
		}
	}
	rate := float64(changes) / float64(len(stream))
	return math.Min(rate*200, 100)
}

func engagementStatus(score int) string {
	switch {
	case score >= 80:
		return "excellent"
	case score >= 60:
		return "good"
	case score >= 40:
		return "moderate"
	default:
		return "low"
	}
}

func recommendations(b models.EngagementBreakdown) []string {
	var recs []string

	if b.AttentionScore < 60 {
		recs = append(recs, "Consider making content more interactive or taking a break")
	}
	if b.EmotionalEngagement < 50 {
		recs = append(recs, "Try incorporating engaging elements like Q&A or discussions")
	}
	if b.StressBalance < 50 {
		recs = append(recs, "Stress levels may be affecting engagement. Check pacing and complexity")
	}

	return recs
}

func mostFrequentEmotion(readings []models.SessionReading) models.Emotion {
	counts := make(map[models.Emotion]int)
	for _, r := range readings {
		counts[r.DominantEmotion]++
	}

	best := readings[0].DominantEmotion
	for _, e := range models.EmotionVocabulary {
		if counts[e] > counts[best] {
			best = e
		}
	}
	return best
}

func buildSummary(s *session, duration float64, analytics models.Engagement) models.MeetingSummary {
	summary := models.MeetingSummary{
		Title:             s.info.Title,
		Duration:          fmt.Sprintf("%d minutes", int(math.Round(duration/60))),
		OverallEngagement: analytics.Status,
		EngagementScore:   analytics.EngagementScore,
		Recommendations:   analytics.Recommendations,
	}
	if analytics.Breakdown != nil {
		summary.KeyInsights = []string{
			fmt.Sprintf("Attention score: %.1f", analytics.Breakdown.AttentionScore),
			fmt.Sprintf("Emotional engagement: %.1f", analytics.Breakdown.EmotionalEngagement),
		}
	}
	return summary
}

func buildTimeline(start time.Time, stream []models.SessionReading) []models.TimelineBucket {
	if len(stream) == 0 {
		return nil
	}

	type agg struct {
		emotions map[models.Emotion]int
		stress   float64
		count    int
	}
	buckets := make(map[int]*agg)
	maxBucket := 0

	for _, r := range stream {
		idx := int(r.Timestamp.Sub(start) / timelineBucket)
		if idx < 0 {
			idx = 0
		}
		a := buckets[idx]
		if a == nil {
			a = &agg{emotions: make(map[models.Emotion]int)}
			buckets[idx] = a
		}
		a.emotions[r.DominantEmotion]++
		a.stress += r.StressLevel
		a.count++
		if idx > maxBucket {
			maxBucket = idx
		}
	}

	var timeline []models.TimelineBucket
	for i := 0; i <= maxBucket; i++ {
		a := buckets[i]
		if a == nil {
			continue
		}

		dominant := models.EmotionNeutral
		bestCount := -1
		for _, e := range models.EmotionVocabulary {
			if a.emotions[e] > bestCount {
				dominant = e
				bestCount = a.emotions[e]
			}
		}

		timeline = append(timeline, models.TimelineBucket{
			Time:            fmt.Sprintf("%d-%d min", i*5, (i+1)*5),
			DominantEmotion: dominant,
			AvgStress:       a.stress / float64(a.count),
			Count:           a.count,
		})
	}
	return timeline
}
