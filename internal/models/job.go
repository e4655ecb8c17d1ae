package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Job is one unit of asynchronous background work picked up by the
// worker pool.
type Job struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	Type         string          `json:"type"` // daily-report, journal-analysis, crisis-check
	ReferenceID  uuid.UUID       `json:"reference_id"`
	ConfigJSON   json.RawMessage `json:"config_json,omitempty"`
	Status       string          `json:"status"` // pending, processing, completed, failed
	RetryCount   int             `json:"retry_count"`
	MaxRetries   int             `json:"max_retries"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}
