// Package live streams booking, session and slot events to websocket
// clients, and periodic dashboard snapshots to connected owners.
package live

import (
	"context"
	"encoding/json"
	"expvar"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/parkspot/parkspot-api/internal/domain/analytics"
	"github.com/parkspot/parkspot-api/internal/middleware"
	"github.com/parkspot/parkspot-api/internal/pkg/events"
)

// MessageType of a frame sent to clients
type MessageType string

const (
	MessageEvent     MessageType = "event"
	MessageDashboard MessageType = "dashboard"
)

var (
	wsConnectionsGauge   = expvar.NewInt("live_connections")
	wsEventsSentTotal    = expvar.NewInt("live_events_sent_total")
	wsEventsDroppedTotal = expvar.NewInt("live_events_dropped_total")
)

// Message is the frame written to the socket.
type Message struct {
	Type      MessageType          `json:"type"`
	Event     *events.Event        `json:"event,omitempty"`
	Dashboard *analytics.Dashboard `json:"dashboard,omitempty"`
}

// Client is one websocket connection
type Client struct {
	UserID uuid.UUID
	Role   string
	Send   chan []byte
}

func NewClient(userID uuid.UUID, role string) *Client {
	return &Client{UserID: userID, Role: role, Send: make(chan []byte, 64)}
}

// Hub tracks the clients connected to this instance. With Redis configured
// every instance receives every event and delivers to its own clients.
type Hub struct {
	clients map[*Client]bool
	users   map[uuid.UUID]map[*Client]bool
	spots   map[uuid.UUID]map[*Client]bool

	mu sync.RWMutex

	register   chan *Client
	unregister chan *Client

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a hub; call Run in a goroutine
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[*Client]bool),
		users:      make(map[uuid.UUID]map[*Client]bool),
		spots:      make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run processes registrations until Shutdown
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			if h.users[c.UserID] == nil {
				h.users[c.UserID] = make(map[*Client]bool)
			}
			h.users[c.UserID][c] = true
			h.mu.Unlock()
			wsConnectionsGauge.Add(1)
			log.Debug().Str("user_id", c.UserID.String()).Msg("Live client connected")

		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				delete(h.clients, c)
				close(c.Send)
				wsConnectionsGauge.Add(-1)
			}
			if conns := h.users[c.UserID]; conns != nil {
				delete(conns, c)
				if len(conns) == 0 {
					delete(h.users, c.UserID)
				}
			}
			for spotID, subs := range h.spots {
				delete(subs, c)
				if len(subs) == 0 {
					delete(h.spots, spotID)
				}
			}
			h.mu.Unlock()
			log.Debug().Str("user_id", c.UserID.String()).Msg("Live client disconnected")
		}
	}
}

// FanoutFrom delivers events received on the Redis channel. Blocks until Shutdown.
func (h *Hub) FanoutFrom(client *redis.Client) {
	events.Subscribe(h.ctx, client, h.Dispatch)
}

// Register hands the client to the hub loop. It reports false once the hub is shut down.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.ctx.Done():
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.ctx.Done():
	}
}

// Subscribe adds the client to a spot's feed.
func (h *Hub) Subscribe(c *Client, spotID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.spots[spotID] == nil {
		h.spots[spotID] = make(map[*Client]bool)
	}
	h.spots[spotID][c] = true
}

func (h *Hub) Unsubscribe(c *Client, spotID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.spots[spotID]; subs != nil {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.spots, spotID)
		}
	}
}

// Publish lets the hub stand in for Redis when running a single instance.
func (h *Hub) Publish(_ context.Context, e events.Event) error {
	h.Dispatch(e)
	return nil
}

// Dispatch sends e to spot subscribers, the spot's owner and the booking's
// driver. Each client gets the frame at most once.
func (h *Hub) Dispatch(e events.Event) {
	data, err := json.Marshal(Message{Type: MessageEvent, Event: &e})
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal live event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	targets := make(map[*Client]bool)
	for c := range h.spots[e.SpotID] {
		targets[c] = true
	}
	for _, id := range []uuid.UUID{e.OwnerID, e.DriverID} {
		if id == uuid.Nil {
			continue
		}
		for c := range h.users[id] {
			targets[c] = true
		}
	}

	for c := range targets {
		h.deliver(c, data)
	}
}

// SendDashboard pushes a snapshot to every connection of the owner.
func (h *Hub) SendDashboard(ownerID uuid.UUID, d *analytics.Dashboard) {
	data, err := json.Marshal(Message{Type: MessageDashboard, Dashboard: d})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.users[ownerID] {
		h.deliver(c, data)
	}
}

// caller holds h.mu
func (h *Hub) deliver(c *Client, data []byte) {
	select {
	case c.Send <- data:
		wsEventsSentTotal.Add(1)
	default:
		wsEventsDroppedTotal.Add(1)
		log.Warn().Str("user_id", c.UserID.String()).Msg("Live send buffer full")
	}
}

// ConnectedOwners lists owners with at least one open connection.
func (h *Hub) ConnectedOwners() []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for c := range h.clients {
		if c.Role == middleware.RoleOwner && !seen[c.UserID] {
			seen[c.UserID] = true
			out = append(out, c.UserID)
		}
	}
	return out
}

// ConnectionCount returns number of local connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown stops Run and the Redis fan-out
func (h *Hub) Shutdown() {
	h.cancel()
}
