package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/conneroisu/livedocs/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed for the peer to answer a ping
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	sendBuffer = 64
)

// MessageType names a hot-reload message.
type MessageType string

const (
	MessageReload          MessageType = "reload"
	MessageUpdateComponent MessageType = "update_component"
	MessageUpdateContent   MessageType = "update_content"
	MessageConnected       MessageType = "connected"
)

// Message is sent to every connected browser as JSON.
type Message struct {
	Type         MessageType `json:"type"`
	TagName      string      `json:"tag_name,omitempty"`
	WebComponent string      `json:"web_component,omitempty"`
	Path         string      `json:"path,omitempty"`
	HTML         string      `json:"html,omitempty"`
}

// ReloadMessage asks clients for a full page reload.
func ReloadMessage() Message {
	return Message{Type: MessageReload}
}

// UpdateComponentMessage carries a regenerated custom element definition.
func UpdateComponentMessage(tag, code string) Message {
	return Message{Type: MessageUpdateComponent, TagName: tag, WebComponent: code}
}

// UpdateContentMessage replaces the article body of the page at path. An
// empty path targets whatever page the client has open.
func UpdateContentMessage(path, html string) Message {
	return Message{Type: MessageUpdateContent, Path: path, HTML: html}
}

// Client is one connected browser.
type Client struct {
	id          string
	conn        *websocket.Conn
	send        chan []byte
	connectedAt time.Time
}

// ID returns the client's connection id.
func (c *Client) ID() string { return c.id }

// Hub fans hot-reload messages out to every connected browser.
//
// A single goroutine owns the client set: registration, removal and
// broadcast all go through channels so that a client's send channel is
// only ever written or closed from that goroutine.
type Hub struct {
	clients map[string]*Client
	mutex   sync.RWMutex

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	originPatterns []string
	logger         logging.Logger

	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once
}

// NewHub creates a hub and starts its event loop. originPatterns are host
// patterns accepted in addition to same-origin requests.
func NewHub(logger logging.Logger, originPatterns ...string) *Hub {
	if logger == nil {
		logger = logging.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		clients:        make(map[string]*Client),
		broadcast:      make(chan []byte, 256),
		register:       make(chan *Client, 32),
		unregister:     make(chan *Client, 32),
		originPatterns: originPatterns,
		logger:         logger.WithComponent("hmr"),
		ctx:            ctx,
		cancel:         cancel,
	}
	go h.run()

	return h
}

// ServeHTTP upgrades the request to a websocket and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  h.originPatterns,
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		h.logger.Warn(r.Context(), err, "WebSocket upgrade failed", "remote", r.RemoteAddr)
		return
	}

	client := &Client{
		id:          uuid.NewString(),
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		connectedAt: time.Now(),
	}

	select {
	case h.register <- client:
	case <-h.ctx.Done():
		_ = conn.Close(websocket.StatusServiceRestart, "server shutting down")
		return
	}

	go h.writePump(client)
	h.readPump(client)
}

// Broadcast queues msg for every connected client. Messages are dropped
// when the hub is saturated or shut down.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error(h.ctx, err, "Failed to marshal hot-reload message", "type", msg.Type)
		return
	}

	select {
	case h.broadcast <- data:
	case <-h.ctx.Done():
	default:
		h.logger.Warn(h.ctx, nil, "Broadcast channel full, dropping message", "type", msg.Type)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Shutdown closes every connection and stops the event loop.
func (h *Hub) Shutdown() {
	h.shutdownOnce.Do(func() {
		h.cancel()

		h.mutex.Lock()
		for _, client := range h.clients {
			_ = client.conn.Close(websocket.StatusGoingAway, "server shutting down")
		}
		h.mutex.Unlock()
	})
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastToClients(message)

		case <-h.ctx.Done():
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	h.clients[client.id] = client
	count := len(h.clients)
	h.mutex.Unlock()

	if data, err := json.Marshal(Message{Type: MessageConnected}); err == nil {
		client.send <- data
	}
	h.logger.Debug(h.ctx, "Hot-reload client connected", "client", client.id, "clients", count)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	_, ok := h.clients[client.id]
	if ok {
		delete(h.clients, client.id)
		close(client.send)
	}
	count := len(h.clients)
	h.mutex.Unlock()

	if ok {
		h.logger.Debug(h.ctx, "Hot-reload client disconnected", "client", client.id, "clients", count,
			"connected_for", time.Since(client.connectedAt).String())
	}
}

func (h *Hub) broadcastToClients(message []byte) {
	h.mutex.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.RUnlock()

	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			// Slow client; drop it rather than block the loop.
			h.unregisterClient(client)
			_ = client.conn.Close(websocket.StatusPolicyViolation, "client too slow")
		}
	}
}

// readPump discards client messages; reading is still required so that
// pings, pongs and close frames are processed.
func (h *Hub) readPump(client *Client) {
	defer func() {
		select {
		case h.unregister <- client:
		case <-h.ctx.Done():
		}
		_ = client.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		_, _, err := client.conn.Read(h.ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure &&
				websocket.CloseStatus(err) != websocket.StatusGoingAway {
				h.logger.Debug(h.ctx, "WebSocket read ended", "client", client.id, "error", err.Error())
			}
			return
		}
	}
}

func (h *Hub) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = client.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(h.ctx, writeWait)
			err := client.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(h.ctx, pongWait)
			err := client.conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}

		case <-h.ctx.Done():
			return
		}
	}
}
