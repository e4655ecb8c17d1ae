package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"moodlens-backend/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const writeTimeout = 5 * time.Second

// connection is the registry record for one live websocket. The user
// binding is nil until the client sends an auth envelope.
type connection struct {
	id        uuid.UUID
	sessionID uuid.UUID
	userID    *uuid.UUID
	ws        *websocket.Conn

	writeMu sync.Mutex
}

// send marshals and writes one envelope. Failed or slow transports
// error out without affecting other recipients.
func (c *connection) send(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Hub maintains the set of live connections and fans emotion updates
// out to sibling connections of the same user. An optional redis client
// bridges server-initiated broadcasts across processes; with a nil
// client the hub is purely local.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID]*connection
	redisClient *redis.Client
	cancelFuncs map[uuid.UUID]context.CancelFunc
}

func NewHub(redisClient *redis.Client) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID]*connection),
		redisClient: redisClient,
		cancelFuncs: make(map[uuid.UUID]context.CancelFunc),
	}
}

// HandleWebSocket upgrades the request and runs the connection's read
// loop. Connecting always succeeds; the user binding arrives later via
// an auth envelope.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn := &connection{
		id:        uuid.New(),
		sessionID: uuid.New(),
		ws:        ws,
	}
	h.register(conn)

	go h.readLoop(conn)
}

func (h *Hub) register(conn *connection) {
	h.mu.Lock()
	h.connections[conn.id] = conn
	h.mu.Unlock()

	log.Printf("WebSocket connected: %s", conn.id)
}

func (h *Hub) unregister(conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.ws.Close()
	delete(h.connections, conn.id)

	// Cancel the pub/sub bridge when the departing connection was the
	// user's last one.
	if conn.userID != nil && h.userConnCountLocked(*conn.userID) == 0 {
		if cancel, ok := h.cancelFuncs[*conn.userID]; ok {
			cancel()
			delete(h.cancelFuncs, *conn.userID)
		}
	}

	log.Printf("WebSocket disconnected: %s", conn.id)
}

func (h *Hub) userConnCountLocked(userID uuid.UUID) int {
	n := 0
	for _, c := range h.connections {
		if c.userID != nil && *c.userID == userID {
			n++
		}
	}
	return n
}

func (h *Hub) readLoop(conn *connection) {
	defer h.unregister(conn)

	for {
		_, raw, err := conn.ws.ReadMessage()
		if err != nil {
			return
		}
		h.handleMessage(conn, raw)
	}
}

// handleMessage dispatches one inbound envelope. Malformed or
// unrecognized payloads produce an error envelope to the sender only;
// the connection stays open.
func (h *Hub) handleMessage(conn *connection, raw []byte) {
	var env models.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		conn.send(models.Envelope{Type: models.EnvelopeError, Message: "Invalid message format"})
		return
	}

	switch env.Type {
	case models.EnvelopeAuth:
		userID, err := uuid.Parse(env.UserID)
		if err != nil {
			conn.send(models.Envelope{Type: models.EnvelopeError, Message: "Invalid user id"})
			return
		}
		h.bindUser(conn, userID)
		conn.send(models.Envelope{
			Type:      models.EnvelopeAuthSuccess,
			SessionID: conn.sessionID.String(),
		})

	case models.EnvelopeEmotionUpdate:
		h.mu.RLock()
		userID := conn.userID
		h.mu.RUnlock()
		if userID == nil {
			conn.send(models.Envelope{Type: models.EnvelopeError, Message: "Not authenticated"})
			return
		}
		h.fanOut(conn.id, *userID, models.Envelope{
			Type:      models.EnvelopeEmotionUpdate,
			Data:      env.Emotion,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})

	default:
		conn.send(models.Envelope{Type: models.EnvelopeError, Message: "Invalid message format"})
	}
}

func (h *Hub) bindUser(conn *connection, userID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	first := h.userConnCountLocked(userID) == 0
	conn.userID = &userID

	// Start the cross-process bridge on the user's first connection.
	if first && h.redisClient != nil {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[userID] = cancel
		go h.subscribeToPubSub(ctx, userID)
	}
}

// fanOut delivers to every *other* connection bound to the same user.
// Delivery is per-recipient best effort; a dead transport never blocks
// the rest.
func (h *Hub) fanOut(senderID, userID uuid.UUID, env models.Envelope) {
	h.mu.RLock()
	var targets []*connection
	for id, c := range h.connections {
		if id == senderID {
			continue
		}
		if c.userID != nil && *c.userID == userID {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.send(env); err != nil {
			log.Printf("WebSocket fanout to %s failed: %v", c.id, err)
		}
	}
}

// BroadcastToUser is the server-initiated path used by the notification
// gate and session reports. It delivers to every connection bound to
// the user.
func (h *Hub) BroadcastToUser(userID uuid.UUID, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.broadcast(userID, data)
}

func (h *Hub) broadcast(userID uuid.UUID, data []byte) {
	h.mu.RLock()
	var targets []*connection
	for _, c := range h.connections {
		if c.userID != nil && *c.userID == userID {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.writeMu.Lock()
		c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("WebSocket broadcast to %s failed: %v", c.id, err)
		}
		c.writeMu.Unlock()
	}
}

// PublishToUser routes a message through redis pub/sub so every process
// holding connections for the user delivers it. Falls back to local
// broadcast when no redis client is configured.
func (h *Hub) PublishToUser(ctx context.Context, userID uuid.UUID, msg interface{}) {
	if h.redisClient == nil {
		h.BroadcastToUser(userID, msg)
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.redisClient.Publish(ctx, "user_updates:"+userID.String(), string(data))
}

func (h *Hub) subscribeToPubSub(ctx context.Context, userID uuid.UUID) {
	channel := "user_updates:" + userID.String()
	pubsub := h.redisClient.Subscribe(ctx, channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(userID, []byte(msg.Payload))
		}
	}
}
