package models

import "encoding/json"

// Envelope is the tagged wire format carried over every websocket
// connection. Type selects which of the optional fields is meaningful.
type Envelope struct {
	Type string `json:"type"`

	// auth (inbound)
	UserID string `json:"userId,omitempty"`

	// emotion_update (inbound)
	Emotion json.RawMessage `json:"emotion,omitempty"`

	// outbound
	SessionID string          `json:"sessionId,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
	Message   string          `json:"message,omitempty"`
}

// Recognized envelope types.
const (
	EnvelopeAuth          = "auth"
	EnvelopeAuthSuccess   = "auth_success"
	EnvelopeEmotionUpdate = "emotion_update"
	EnvelopeNotification  = "notification"
	EnvelopeError         = "error"
)

// API Error response

type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
