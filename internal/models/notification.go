package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is the closed set of notification categories. New categories
// are added here deliberately, not via ad hoc strings.
type Category string

const (
	CategoryStressAlert   Category = "stress_alert"
	CategoryWellnessTip   Category = "wellness_tip"
	CategoryAchievement   Category = "achievement"
	CategoryDailySummary  Category = "daily_summary"
	CategoryPatternAlert  Category = "pattern_alert"
	CategoryCrisisSupport Category = "crisis_support"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryStressAlert, CategoryWellnessTip, CategoryAchievement,
		CategoryDailySummary, CategoryPatternAlert, CategoryCrisisSupport:
		return true
	}
	return false
}

// Priority of a candidate notification.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Channel is a delivery mechanism for notifications.
type Channel string

const (
	ChannelInApp   Channel = "in_app"
	ChannelWebhook Channel = "webhook"
	ChannelEmail   Channel = "email"
)

// Frequency tier controlling how often low-priority notifications go out.
type Frequency string

const (
	FrequencyLow    Frequency = "low"
	FrequencyNormal Frequency = "normal"
	FrequencyHigh   Frequency = "high"
)

// QuietHours is a local-time window [Start,End) during which only
// critical notifications are delivered. Start > End means the window
// wraps past midnight (e.g. 22 -> 7).
type QuietHours struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NotificationPreferences is the per-user delivery configuration.
type NotificationPreferences struct {
	Enabled    bool              `json:"enabled"`
	Channels   []Channel         `json:"channels"`
	QuietHours QuietHours        `json:"quiet_hours"`
	Frequency  Frequency         `json:"frequency"`
	Categories map[Category]bool `json:"categories"`
}

// DefaultNotificationPreferences is applied when a user has none stored.
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{
		Enabled:    true,
		Channels:   []Channel{ChannelInApp},
		QuietHours: QuietHours{Start: 22, End: 7},
		Frequency:  FrequencyNormal,
		Categories: map[Category]bool{
			CategoryStressAlert:   true,
			CategoryWellnessTip:   true,
			CategoryAchievement:   true,
			CategoryDailySummary:  true,
			CategoryPatternAlert:  true,
			CategoryCrisisSupport: true,
		},
	}
}

// Notification is a candidate (and, once delivered, actual) alert.
type Notification struct {
	Category  Category    `json:"category"`
	Title     string      `json:"title"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Priority  Priority    `json:"priority"`
	Timestamp time.Time   `json:"timestamp"`
}

// WebhookPayload is the envelope posted to the outbound webhook channel.
type WebhookPayload struct {
	UserID       uuid.UUID    `json:"user_id"`
	Notification Notification `json:"notification"`
	Timestamp    string       `json:"timestamp"`
}
