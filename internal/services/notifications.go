package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"moodlens-backend/internal/models"
)

const (
	sentRecordTTL       = 24 * time.Hour
	gateCleanupInterval = 1 * time.Hour
	dailyCapDateLayout  = "2006-01-02"
)

// minInterval per frequency tier for non-critical notifications of the
// same (user, category).
var minInterval = map[models.Frequency]time.Duration{
	models.FrequencyLow:    time.Hour,
	models.FrequencyNormal: 30 * time.Minute,
	models.FrequencyHigh:   15 * time.Minute,
}

// wellnessTipDailyCap limits wellness tips per calendar day.
var wellnessTipDailyCap = map[models.Frequency]int{
	models.FrequencyLow:    1,
	models.FrequencyNormal: 3,
	models.FrequencyHigh:   6,
}

// PreferenceStore loads per-user notification preferences. A missing
// user yields the defaults.
type PreferenceStore interface {
	GetNotificationPreferences(ctx context.Context, userID uuid.UUID) (models.NotificationPreferences, error)
}

// Sender delivers a notification over one concrete channel.
type Sender interface {
	Send(ctx context.Context, userID uuid.UUID, n models.Notification) error
}

// Decision is the outcome of running a candidate notification through
// the gate. A suppressed notification is a normal outcome, not an
// error.
type Decision struct {
	Delivered bool             `json:"delivered"`
	Reason    string           `json:"reason"`
	Channels  []models.Channel `json:"channels,omitempty"`
}

// NotificationGate decides whether a candidate notification is actually
// delivered, and through which channels, given user preferences and
// delivery history.
type NotificationGate struct {
	prefs   PreferenceStore
	senders map[models.Channel]Sender

	mu         sync.Mutex
	lastSent   map[string]time.Time
	dailyCount map[string]int

	now      func() time.Time
	stopChan chan struct{}
}

func NewNotificationGate(prefs PreferenceStore, senders map[models.Channel]Sender) *NotificationGate {
	return &NotificationGate{
		prefs:      prefs,
		senders:    senders,
		lastSent:   make(map[string]time.Time),
		dailyCount: make(map[string]int),
		now:        time.Now,
		stopChan:   make(chan struct{}),
	}
}

// SetClock overrides the time source for deterministic tests.
func (g *NotificationGate) SetClock(now func() time.Time) {
	g.now = now
}

// Start launches the periodic cleanup of stale rate-limit records.
func (g *NotificationGate) Start() {
	go func() {
		ticker := time.NewTicker(gateCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-g.stopChan:
				return
			case <-ticker.C:
				g.cleanup()
			}
		}
	}()
}

// Stop halts the cleanup loop. Safe to call more than once.
func (g *NotificationGate) Stop() {
	select {
	case <-g.stopChan:
		return
	default:
		close(g.stopChan)
	}
}

// Deliver evaluates the suppression rules in order and, if the
// notification survives, records the delivery and sends it over every
// configured channel. Channel failures are logged and never roll back
// the rate-limit bookkeeping.
func (g *NotificationGate) Deliver(ctx context.Context, userID uuid.UUID, n models.Notification) Decision {
	if !n.Category.Valid() {
		return Decision{Delivered: false, Reason: "unknown_category"}
	}

	prefs := g.preferences(ctx, userID)

	// Crisis support bypasses every suppression rule.
	if n.Category != models.CategoryCrisisSupport {
		if !prefs.Enabled {
			return Decision{Delivered: false, Reason: "disabled"}
		}
		if g.inQuietHours(prefs.QuietHours) {
			return Decision{Delivered: false, Reason: "quiet_hours"}
		}
		if enabled, ok := prefs.Categories[n.Category]; ok && !enabled {
			return Decision{Delivered: false, Reason: "category_disabled"}
		}

		// High and critical priorities skip the rate checks.
		if n.Priority != models.PriorityHigh && n.Priority != models.PriorityCritical {
			if !g.checkRateLimit(userID, n.Category, prefs.Frequency) {
				return Decision{Delivered: false, Reason: "rate_limited"}
			}
			if n.Category == models.CategoryWellnessTip && !g.checkDailyCap(userID, prefs.Frequency) {
				return Decision{Delivered: false, Reason: "daily_cap"}
			}
		}
	}

	g.record(userID, n.Category)

	if n.Timestamp.IsZero() {
		n.Timestamp = g.now()
	}

	for _, channel := range prefs.Channels {
		sender, ok := g.senders[channel]
		if !ok {
			continue
		}
		if err := sender.Send(ctx, userID, n); err != nil {
			log.Printf("notification: %s delivery via %s failed for user %s: %v", n.Category, channel, userID, err)
		}
	}

	return Decision{Delivered: true, Reason: "delivered", Channels: prefs.Channels}
}

func (g *NotificationGate) preferences(ctx context.Context, userID uuid.UUID) models.NotificationPreferences {
	if g.prefs == nil {
		return models.DefaultNotificationPreferences()
	}
	prefs, err := g.prefs.GetNotificationPreferences(ctx, userID)
	if err != nil {
		return models.DefaultNotificationPreferences()
	}
	return prefs
}

// inQuietHours checks the local hour against a [start,end) window,
// supporting windows that wrap past midnight (e.g. 22 -> 7).
func (g *NotificationGate) inQuietHours(q models.QuietHours) bool {
	if q.Start == q.End {
		return false
	}

	hour := g.now().Hour()
	if q.Start < q.End {
		return hour >= q.Start && hour < q.End
	}
	return hour >= q.Start || hour < q.End
}

func (g *NotificationGate) checkRateLimit(userID uuid.UUID, category models.Category, freq models.Frequency) bool {
	interval, ok := minInterval[freq]
	if !ok {
		interval = minInterval[models.FrequencyNormal]
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	last, ok := g.lastSent[rateKey(userID, category)]
	if !ok {
		return true
	}
	return g.now().Sub(last) >= interval
}

func (g *NotificationGate) checkDailyCap(userID uuid.UUID, freq models.Frequency) bool {
	limit, ok := wellnessTipDailyCap[freq]
	if !ok {
		limit = wellnessTipDailyCap[models.FrequencyNormal]
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dailyCount[dailyKey(userID, models.CategoryWellnessTip, g.now())] < limit
}

func (g *NotificationGate) record(userID uuid.UUID, category models.Category) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.lastSent[rateKey(userID, category)] = now
	if category == models.CategoryWellnessTip {
		g.dailyCount[dailyKey(userID, category, now)]++
	}
}

// cleanup discards rate-limit records older than 24 hours and daily
// counters from previous days.
func (g *NotificationGate) cleanup() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for key, sentAt := range g.lastSent {
		if now.Sub(sentAt) > sentRecordTTL {
			delete(g.lastSent, key)
		}
	}

	today := now.Format(dailyCapDateLayout)
	for key := range g.dailyCount {
		if len(key) < len(dailyCapDateLayout) || key[len(key)-len(today):] != today {
			delete(g.dailyCount, key)
		}
	}
}

func rateKey(userID uuid.UUID, category models.Category) string {
	return fmt.Sprintf("%s-%s", userID, category)
}

func dailyKey(userID uuid.UUID, category models.Category, day time.Time) string {
	return fmt.Sprintf("%s-%s-%s", userID, category, day.Format(dailyCapDateLayout))
}
