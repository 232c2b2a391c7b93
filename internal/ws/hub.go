package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/statecast/statecast/internal/bus"
	"github.com/statecast/statecast/internal/document"
	"github.com/statecast/statecast/internal/metrics"
	"github.com/statecast/statecast/internal/state"
	"github.com/statecast/statecast/internal/topic"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often the server sends WebSocket ping frames.
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds inbound client messages; subscribe requests are
	// tiny.
	maxMessageSize = 512

	// sendBufSize is the per-client outgoing message buffer depth. Several
	// topics can fire on the same tick, each an independent send.
	sendBufSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Allow all origins — callers should apply CORS at the reverse-proxy level.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// errSendBufferFull marks a delivery dropped because the client cannot keep
// up; the hub disconnects such clients.
var errSendBufferFull = errors.New("ws: client send buffer full")

// subscribeRequest is the only inbound message clients are expected to send.
type subscribeRequest struct {
	Type  string `json:"type"`
	Event string `json:"event"`
}

// dataUpdate is the envelope of the connect-time full-state push.
type dataUpdate struct {
	Type string            `json:"type"`
	Data document.Document `json:"data"`
}

// Hub manages WebSocket client connections, their topic subscriptions, and
// the connect-time snapshot push.
type Hub struct {
	state    *state.Store
	registry *topic.Registry
	bus      *bus.Bus

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// client represents one connected WebSocket client and its subscriptions.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu   sync.Mutex
	subs map[string]*bus.Subscription // topic name → bus handle
}

// New creates a Hub reading snapshots from st and binding subscriptions on b.
func New(st *state.Store, reg *topic.Registry, b *bus.Bus) *Hub {
	return &Hub{
		state:    st,
		registry: reg,
		bus:      b,
		clients:  make(map[*client]struct{}),
	}
}

// Run blocks until ctx is cancelled, then closes all active connections.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// ServeHTTP upgrades the HTTP connection to WebSocket and serves the client.
// The full-state snapshot is queued before the write loop starts, so it is
// always the first message the client receives. Blocks until the connection
// closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufSize),
		subs: make(map[string]*bus.Subscription),
	}
	h.register(c)
	defer h.unregister(c)

	if data, err := h.snapshotMessage(); err == nil {
		c.send <- data
	} else {
		slog.Error("ws: encode snapshot failed", "err", err)
	}

	go c.writePump()
	c.readPump() // blocks until connection closes
}

// Count returns the number of currently connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// --- internal ---------------------------------------------------------------

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	metrics.ConnectedClients.Inc()
}

// unregister removes the client, closes its send channel, and detaches every
// bus subscription it holds. Safe to call more than once per client.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, live := h.clients[c]
	if live {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	if live {
		metrics.ConnectedClients.Dec()
		c.unbindAll()
	}
}

// snapshotMessage builds the connect-time dataUpdate push. Before the first
// successful poll the snapshot is an empty object, not null.
func (h *Hub) snapshotMessage() ([]byte, error) {
	doc, ok := h.state.Snapshot()
	if !ok {
		doc = document.Document{}
	}
	return json.Marshal(dataUpdate{Type: "dataUpdate", Data: doc})
}

func (h *Hub) closeAll() {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.unregister(c)
	}
}

// subscribe handles one subscribe request for c. "all" binds every topic in
// the registry at request time; unknown topics are logged and ignored.
func (h *Hub) subscribe(c *client, event string) {
	if event == "all" {
		for _, name := range h.registry.Names() {
			c.bind(name)
		}
		slog.Debug("ws: client subscribed to all topics", "topics", h.registry.Len())
		return
	}
	if _, ok := h.registry.Get(event); !ok {
		slog.Warn("ws: subscribe to unknown topic ignored", "topic", event)
		return
	}
	c.bind(event)
	slog.Debug("ws: client subscribed", "topic", event)
}

// bind creates the bus subscription delivering topic events to this client.
// Subscribing twice to the same topic is a no-op — a topic firing reaches
// each client at most once.
func (c *client) bind(topicName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.subs[topicName]; ok {
		return
	}
	c.subs[topicName] = c.hub.bus.Subscribe(topicName, c.deliver)
}

// unbindAll removes every bus subscription held by the client.
func (c *client) unbindAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, sub := range c.subs {
		c.hub.bus.Unsubscribe(sub)
		delete(c.subs, name)
	}
}

// deliver queues one published event for the client. It runs on the
// publisher's goroutine. The hub's read lock excludes unregister's channel
// close, so the send never races it. A full buffer drops the client rather
// than blocking the fan-out.
func (c *client) deliver(event []byte) error {
	c.hub.mu.RLock()
	if _, live := c.hub.clients[c]; !live {
		c.hub.mu.RUnlock()
		return nil // already closed; subscriptions are being torn down
	}
	select {
	case c.send <- event:
		c.hub.mu.RUnlock()
		return nil
	default:
		c.hub.mu.RUnlock()
		c.hub.unregister(c)
		return errSendBufferFull
	}
}

// writePump drains the client's send channel and forwards messages to the
// WebSocket connection. It also sends periodic ping frames. Runs in its own
// goroutine per client.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// Channel was closed (hub is shutting down or client removed).
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads frames from the connection and dispatches subscribe
// requests. Malformed messages and unknown types are logged and skipped —
// they never close the connection. Blocks until the connection closes.
func (c *client) readPump() {
	defer c.conn.Close()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var req subscribeRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			slog.Warn("ws: malformed client message ignored", "err", err)
			continue
		}
		switch req.Type {
		case "subscribe":
			c.hub.subscribe(c, req.Event)
		default:
			slog.Warn("ws: unknown message type ignored", "type", req.Type)
		}
	}
}
