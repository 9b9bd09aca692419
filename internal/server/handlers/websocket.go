// internal/server/handlers/websocket.go

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"mixee/internal/domain/activity"
)

// StreamMessage is the envelope pushed to stream clients
type StreamMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	Time    time.Time   `json:"time"`
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 64 * 1024,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is enforced by the router for the REST surface
		return true
	},
}

// StreamClient is one connected stream consumer
type StreamClient struct {
	hub  *StreamHub
	conn *websocket.Conn
	send chan []byte
}

// StreamHub pushes every pulse and badge change to connected clients.
// Messages from one source reach each client in the order they were produced.
type StreamHub struct {
	pulse  activity.Pulse
	badges activity.Badges
	shell  *activity.Shell
	config WebSocketConfig
	logger *zap.Logger

	clients    map[*StreamClient]bool
	register   chan *StreamClient
	unregister chan *StreamClient
	broadcast  chan []byte
	done       chan struct{}
}

// NewStreamHub creates a hub; call Run to start it
func NewStreamHub(pulse activity.Pulse, badges activity.Badges, shell *activity.Shell, logger *zap.Logger) *StreamHub {
	return &StreamHub{
		pulse:      pulse,
		badges:     badges,
		shell:      shell,
		config:     DefaultWebSocketConfig(),
		logger:     logger,
		clients:    make(map[*StreamClient]bool),
		register:   make(chan *StreamClient),
		unregister: make(chan *StreamClient),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
	}
}

// Attach subscribes the hub to pulse and badge notifications
func (h *StreamHub) Attach() {
	h.pulse.RegisterTickHandler(func(s activity.Stats) {
		h.Broadcast("stats", s)
	})
	h.pulse.RegisterEventHandler(func(e activity.Event) {
		h.Broadcast("event", e)
	})
	h.pulse.RegisterClearHandler(func() {
		h.Broadcast("cleared", nil)
	})
	h.shell.RegisterChangeHandler(func(v activity.ViewState) {
		h.Broadcast("view", v)
	})
	if h.badges != nil {
		h.badges.RegisterChangeHandler(func(b []activity.Badge) {
			h.Broadcast("badges", b)
		})
	}
}

// Run starts the hub loop until ctx is cancelled
func (h *StreamHub) Run(ctx context.Context) {
	defer func() {
		for client := range h.clients {
			delete(h.clients, client)
			close(client.send)
		}
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			// The snapshot is taken on the hub loop so no broadcast falls between it and registration
			data, err := json.Marshal(h.snapshot())
			if err != nil {
				h.logger.Error("error marshaling snapshot", zap.Error(err))
				close(client.send)
				continue
			}
			client.send <- data
			h.clients[client] = true
			h.logger.Debug("stream client registered", zap.Int("clients", len(h.clients)))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Broadcast queues a message for every client; it returns immediately once the hub stopped
func (h *StreamHub) Broadcast(kind string, payload interface{}) {
	data, err := json.Marshal(StreamMessage{Type: kind, Payload: payload, Time: time.Now()})
	if err != nil {
		h.logger.Error("error marshaling stream message", zap.String("type", kind), zap.Error(err))
		return
	}

	select {
	case h.broadcast <- data:
	case <-h.done:
	}
}

// ServeHTTP upgrades the request and streams to the new client
func (h *StreamHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade to WebSocket", zap.Error(err))
		return
	}

	client := &StreamClient{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (h *StreamHub) snapshot() StreamMessage {
	payload := map[string]interface{}{
		"active": h.pulse.Active(),
		"view":   h.shell.State(),
		"stats":  h.pulse.Stats(),
		"events": h.pulse.RecentEvents(),
	}
	if h.badges != nil {
		payload["badges"] = h.badges.Badges()
	}
	return StreamMessage{Type: "snapshot", Payload: payload, Time: time.Now()}
}

func (h *StreamHub) leave(c *StreamClient) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// readPump handles user intents sent by the presentation shell
func (c *StreamClient) readPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	cfg := c.hub.config
	c.conn.SetReadLimit(cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("WebSocket error", zap.Error(err))
			}
			return
		}

		c.processIncomingMessage(message)
	}
}

func (c *StreamClient) processIncomingMessage(message []byte) {
	var msg struct {
		Type   string `json:"type"`
		Active *bool  `json:"active"`
	}
	if err := json.Unmarshal(message, &msg); err != nil {
		c.hub.logger.Debug("failed to parse stream message", zap.Error(err))
		return
	}

	switch msg.Type {
	case "set_active":
		if msg.Active != nil {
			c.hub.pulse.SetActive(*msg.Active)
		}
	case "toggle_view":
		c.hub.shell.Toggle()
	default:
		c.hub.logger.Debug("unknown stream message type", zap.String("type", msg.Type))
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *StreamClient) writePump() {
	cfg := c.hub.config
	ticker := time.NewTicker(cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
