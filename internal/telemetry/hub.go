package telemetry

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	maxClients   = 32
	writeTimeout = time.Second
)

type message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub fans broadcast messages out to websocket clients. Broadcast never blocks the frame
// loop: when the queue is full the message is dropped.
type Hub struct {
	upgrader websocket.Upgrader
	metrics  *Metrics

	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}

	queue chan []byte
}

// NewHub builds a hub that accepts browser clients from allowedOrigins.
func NewHub(metrics *Metrics, allowedOrigins []string) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		metrics: metrics,
		clients: make(map[*websocket.Conn]struct{}),
		queue:   make(chan []byte, 64),
	}
}

// Run writes queued messages until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case msg := <-h.queue:
			h.send(msg)
		}
	}
}

func (h *Hub) Broadcast(eventName string, data any) bool {
	payload, err := json.Marshal(message{Event: eventName, Data: data})
	if err != nil {
		slog.Warn("Websocket message encode failed", "event", eventName, "error", err)
		return false
	}
	select {
	case h.queue <- payload:
		return true
	default:
		return false
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.ClientCount() >= maxClients {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("Websocket upgrade failed", "error", err)
		return
	}
	h.add(conn)

	// Clients only listen; reading detects the close.
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	slog.Info("Websocket client connected", "remote", conn.RemoteAddr().String(), "clients", n)
	if h.metrics != nil {
		h.metrics.wsClients.Set(float64(n))
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	n := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}
	_ = conn.Close()
	slog.Info("Websocket client disconnected", "clients", n)
	if h.metrics != nil {
		h.metrics.wsClients.Set(float64(n))
	}
}

func (h *Hub) send(msg []byte) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		_ = c.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.remove(c)
			continue
		}
		if h.metrics != nil {
			h.metrics.wsMessages.Inc()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.clients = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()

	for _, c := range conns {
		_ = c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeTimeout))
		_ = c.Close()
	}
	if h.metrics != nil {
		h.metrics.wsClients.Set(0)
	}
}
