package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"moodlens-backend/internal/models"
)

// Broadcaster pushes a message to every live connection of a user. The
// websocket hub satisfies this.
type Broadcaster interface {
	BroadcastToUser(userID uuid.UUID, msg interface{})
}

// InAppSender delivers notifications over the websocket hub.
type InAppSender struct {
	hub Broadcaster
}

func NewInAppSender(hub Broadcaster) *InAppSender {
	return &InAppSender{hub: hub}
}

func (s *InAppSender) Send(ctx context.Context, userID uuid.UUID, n models.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}

	s.hub.BroadcastToUser(userID, models.Envelope{
		Type:      models.EnvelopeNotification,
		Data:      data,
		Timestamp: n.Timestamp.UTC().Format(time.RFC3339),
	})
	return nil
}

// WebhookSender posts notifications to an external automation endpoint.
type WebhookSender struct {
	url    string
	client *http.Client
}

func NewWebhookSender(url string) *WebhookSender {
	return &WebhookSender{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (s *WebhookSender) Send(ctx context.Context, userID uuid.UUID, n models.Notification) error {
	if s.url == "" {
		log.Printf("webhook sender: no URL configured, dropping %s notification", n.Category)
		return nil
	}

	payload, err := json.Marshal(models.WebhookPayload{
		UserID:       userID,
		Notification: n,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// EmailLookup resolves a user id to a deliverable address and name.
type EmailLookup interface {
	GetEmailByID(ctx context.Context, userID uuid.UUID) (email, fullName string, err error)
}

// EmailSender delivers notifications through the SMTP email service.
type EmailSender struct {
	users EmailLookup
	email *EmailService
}

func NewEmailSender(users EmailLookup, email *EmailService) *EmailSender {
	return &EmailSender{users: users, email: email}
}

func (s *EmailSender) Send(ctx context.Context, userID uuid.UUID, n models.Notification) error {
	email, fullName, err := s.users.GetEmailByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve email for user %s: %w", userID, err)
	}
	return s.email.SendNotificationEmail(email, fullName, n)
}
