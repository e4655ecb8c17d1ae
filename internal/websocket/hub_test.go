package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"moodlens-backend/internal/models"
)

func newTestServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readEnvelope(t *testing.T, ws *websocket.Conn) models.Envelope {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env models.Envelope
	if err := ws.ReadJSON(&env); err != nil {
		t.Fatalf("read envelope: %v", err)
	}
	return env
}

func authenticate(t *testing.T, ws *websocket.Conn, userID uuid.UUID) {
	t.Helper()
	if err := ws.WriteJSON(models.Envelope{Type: models.EnvelopeAuth, UserID: userID.String()}); err != nil {
		t.Fatalf("write auth: %v", err)
	}
	env := readEnvelope(t, ws)
	if env.Type != models.EnvelopeAuthSuccess {
		t.Fatalf("auth reply = %+v, want auth_success", env)
	}
	if env.SessionID == "" {
		t.Fatal("auth_success carries no session id")
	}
}

func TestAuthHandshake(t *testing.T) {
	_, srv := newTestServer(t)
	ws := dial(t, srv)
	authenticate(t, ws, uuid.New())
}

func TestAuthRejectsBadUserID(t *testing.T) {
	_, srv := newTestServer(t)
	ws := dial(t, srv)

	if err := ws.WriteJSON(models.Envelope{Type: models.EnvelopeAuth, UserID: "not-a-uuid"}); err != nil {
		t.Fatal(err)
	}
	env := readEnvelope(t, ws)
	if env.Type != models.EnvelopeError || env.Message != "Invalid user id" {
		t.Errorf("got %+v, want invalid user id error", env)
	}
}

func TestMalformedMessage(t *testing.T) {
	_, srv := newTestServer(t)
	ws := dial(t, srv)

	if err := ws.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	env := readEnvelope(t, ws)
	if env.Type != models.EnvelopeError || env.Message != "Invalid message format" {
		t.Errorf("got %+v, want invalid format error", env)
	}

	// The connection survives the bad payload.
	authenticate(t, ws, uuid.New())
}

func TestEmotionUpdateRequiresAuth(t *testing.T) {
	_, srv := newTestServer(t)
	ws := dial(t, srv)

	if err := ws.WriteJSON(models.Envelope{
		Type:    models.EnvelopeEmotionUpdate,
		Emotion: json.RawMessage(`{"happy":0.9}`),
	}); err != nil {
		t.Fatal(err)
	}
	env := readEnvelope(t, ws)
	if env.Type != models.EnvelopeError || env.Message != "Not authenticated" {
		t.Errorf("got %+v, want not authenticated error", env)
	}
}

func TestEmotionUpdateFanOut(t *testing.T) {
	_, srv := newTestServer(t)
	userID := uuid.New()

	sender := dial(t, srv)
	authenticate(t, sender, userID)
	sibling := dial(t, srv)
	authenticate(t, sibling, userID)
	stranger := dial(t, srv)
	authenticate(t, stranger, uuid.New())

	if err := sender.WriteJSON(models.Envelope{
		Type:    models.EnvelopeEmotionUpdate,
		Emotion: json.RawMessage(`{"happy":0.8,"neutral":0.2}`),
	}); err != nil {
		t.Fatal(err)
	}

	env := readEnvelope(t, sibling)
	if env.Type != models.EnvelopeEmotionUpdate {
		t.Fatalf("sibling got %+v, want emotion_update", env)
	}
	if string(env.Data) != `{"happy":0.8,"neutral":0.2}` {
		t.Errorf("sibling payload = %s", env.Data)
	}
	if env.Timestamp == "" {
		t.Error("fanned-out update carries no timestamp")
	}

	// Neither the sender nor an unrelated user receives the echo.
	for name, ws := range map[string]*websocket.Conn{"sender": sender, "stranger": stranger} {
		ws.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		var env models.Envelope
		if err := ws.ReadJSON(&env); err == nil {
			t.Errorf("%s unexpectedly received %+v", name, env)
		}
	}
}

func TestBroadcastToUser(t *testing.T) {
	hub, srv := newTestServer(t)
	userID := uuid.New()

	first := dial(t, srv)
	authenticate(t, first, userID)
	second := dial(t, srv)
	authenticate(t, second, userID)

	hub.BroadcastToUser(userID, models.Envelope{
		Type:    models.EnvelopeNotification,
		Message: "Take a break",
	})

	for _, ws := range []*websocket.Conn{first, second} {
		env := readEnvelope(t, ws)
		if env.Type != models.EnvelopeNotification || env.Message != "Take a break" {
			t.Errorf("got %+v, want notification envelope", env)
		}
	}
}

func TestPublishToUserFallsBackLocally(t *testing.T) {
	hub, srv := newTestServer(t)
	userID := uuid.New()

	ws := dial(t, srv)
	authenticate(t, ws, userID)

	hub.PublishToUser(context.Background(), userID, models.Envelope{
		Type:    models.EnvelopeNotification,
		Message: "Daily report ready",
	})

	env := readEnvelope(t, ws)
	if env.Type != models.EnvelopeNotification || env.Message != "Daily report ready" {
		t.Errorf("got %+v, want notification envelope", env)
	}
}
