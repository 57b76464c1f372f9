// Package websocket provides the real-time side channel. It implements a
// hub-and-spoke pattern where each authenticated client is subscribed to a
// topic for its own user id and one for its role; controllers publish named
// events to those topics. Delivery is best-effort: a slow or disconnected
// client is skipped, and reconnecting clients re-fetch state over REST.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medicore/hms/internal/platform/auth"
	"github.com/medicore/hms/internal/platform/metrics"
)

// Event names emitted by the server.
const (
	EventNewNotification = "new_notification"
	EventReceiveMessage  = "receive_message"
	EventLeaveUpdated    = "leave_updated"
	EventNotification    = "notification" // broadcast to all clients
)

// Event is a real-time message pushed to WebSocket clients.
type Event struct {
	Event     string          `json:"event"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewEvent builds an Event, marshalling data. Marshal failures yield an
// event with no payload rather than an error; the channel is advisory.
func NewEvent(name string, data interface{}) Event {
	evt := Event{Event: name, Timestamp: time.Now().UTC()}
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			evt.Data = raw
		}
	}
	return evt
}

// Publisher is the interface controllers use to push events.
type Publisher interface {
	EmitToUser(ctx context.Context, userID uuid.UUID, event Event)
	EmitToRole(ctx context.Context, role auth.Role, event Event)
	BroadcastAll(ctx context.Context, event Event)
}

// UserTopic returns the topic name for a user's private room.
func UserTopic(userID uuid.UUID) string { return "user:" + userID.String() }

// RoleTopic returns the topic name for a role-wide room.
func RoleTopic(role auth.Role) string { return "role:" + string(role) }

// Client represents a single WebSocket connection.
type Client struct {
	UserID uuid.UUID
	Role   auth.Role
	Send   chan []byte
	topics []string
}

// Hub is the central connection registry. All operations are thread-safe.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{} // topic -> set of clients
	all     map[*Client]struct{}
	logger  zerolog.Logger
}

// NewHub creates a Hub ready to manage WebSocket clients.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		all:     make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client and subscribes it to its user and role topics.
func (h *Hub) Register(client *Client) {
	client.topics = []string{UserTopic(client.UserID), RoleTopic(client.Role)}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.all[client] = struct{}{}
	for _, topic := range client.topics {
		if h.clients[topic] == nil {
			h.clients[topic] = make(map[*Client]struct{})
		}
		h.clients[topic][client] = struct{}{}
	}
	metrics.SetWebSocketClients(len(h.all))
}

// Unregister removes a client from the hub and closes its Send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.all[client]; !ok {
		return
	}

	for _, topic := range client.topics {
		if subscribers, ok := h.clients[topic]; ok {
			delete(subscribers, client)
			if len(subscribers) == 0 {
				delete(h.clients, topic)
			}
		}
	}

	delete(h.all, client)
	close(client.Send)
	metrics.SetWebSocketClients(len(h.all))
}

func (h *Hub) broadcast(topic string, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event.Event).Msg("websocket: marshal event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[topic] {
		select {
		case client.Send <- data:
		default:
			// Client buffer full; skip to avoid blocking.
		}
	}
}

// EmitToUser sends an event to every connection of the given user.
func (h *Hub) EmitToUser(_ context.Context, userID uuid.UUID, event Event) {
	h.broadcast(UserTopic(userID), event)
}

// EmitToRole sends an event to every connection held by users of the role.
func (h *Hub) EmitToRole(_ context.Context, role auth.Role, event Event) {
	h.broadcast(RoleTopic(role), event)
}

// BroadcastAll sends an event to every connected client.
func (h *Hub) BroadcastAll(_ context.Context, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event.Event).Msg("websocket: marshal event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.all {
		select {
		case client.Send <- data:
		default:
		}
	}
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.all)
}

// TopicCount returns the number of clients subscribed to a topic.
func (h *Hub) TopicCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}

// ---------------------------------------------------------------------------
// Handler: Echo HTTP handler for WebSocket connections
// ---------------------------------------------------------------------------

// Handler handles HTTP-to-WebSocket upgrades. The session cookie is verified
// during the handshake; unauthenticated upgrades are rejected.
type Handler struct {
	hub      *Hub
	sessions *auth.SessionManager
	upgrader gorillawebsocket.Upgrader
}

// NewHandler creates a handler bound to the given hub and session manager.
func NewHandler(hub *Hub, sessions *auth.SessionManager, allowedOrigins []string) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Handler{
		hub:      hub,
		sessions: sessions,
		upgrader: gorillawebsocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
	}
}

// RegisterRoutes registers the WebSocket endpoint on the provided Echo group.
func (wsh *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/ws", wsh.HandleConnect)
}

// HandleConnect authenticates the caller, upgrades the connection, registers
// the client with the hub, and starts read/write pumps.
func (wsh *Handler) HandleConnect(c echo.Context) error {
	cookie, err := c.Cookie(auth.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	claims, err := wsh.sessions.Verify(cookie.Value)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid session subject")
	}

	ws, err := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		UserID: userID,
		Role:   claims.Role,
		Send:   make(chan []byte, 256),
	}

	wsh.hub.Register(client)

	go wsh.writePump(client, ws)
	go wsh.readPump(client, ws)

	return nil
}

// readPump drains inbound frames so pings and close frames are processed;
// clients have nothing to say to the server on this channel.
func (wsh *Handler) readPump(client *Client, ws *gorillawebsocket.Conn) {
	defer func() {
		wsh.hub.Unregister(client)
		ws.Close()
	}()

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}

// writePump writes messages from the Send channel to the connection.
func (wsh *Handler) writePump(client *Client, ws *gorillawebsocket.Conn) {
	defer ws.Close()

	for message := range client.Send {
		if err := ws.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
			break
		}
	}
}
