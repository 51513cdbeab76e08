package gps

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kaireichart/track-replay/metrics"
)

const (
	viewerBuffer = 64
	writeWait    = 5 * time.Second
	maxMessage   = 4096
)

// Viewer is a passive socket fed from its own send queue
type Viewer struct {
	conn *websocket.Conn
	Send chan []byte
}

// Hub fans published positions out to passive viewer sockets. Broadcast never
// blocks: a viewer whose queue is full is dropped.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]*Viewer
	log     *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{clients: make(map[*websocket.Conn]*Viewer), log: log}
}

// Add registers conn and starts its writer
func (h *Hub) Add(conn *websocket.Conn) *Viewer {
	v := &Viewer{conn: conn, Send: make(chan []byte, viewerBuffer)}

	h.mu.Lock()
	h.clients[conn] = v
	h.mu.Unlock()
	metrics.ViewersActive.Inc()

	go h.writePump(v)
	return v
}

func (h *Hub) writePump(v *Viewer) {
	defer v.conn.Close()
	for msg := range v.Send {
		v.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := v.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Warn("viewer_write_failed", "err", err)
			h.Remove(v.conn)
			return
		}
	}
}

func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(conn)
}

// remove closes the viewer's queue; its writer then closes the socket
func (h *Hub) remove(conn *websocket.Conn) {
	v, ok := h.clients[conn]
	if !ok {
		return
	}
	delete(h.clients, conn)
	close(v.Send)
	metrics.ViewersActive.Dec()
}

// Broadcast queues v for every viewer
func (h *Hub) Broadcast(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		h.log.Error("broadcast_encode_failed", "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, client := range h.clients {
		select {
		case client.Send <- payload:
		default:
			h.log.Warn("viewer_too_slow", "remote", conn.RemoteAddr().String())
			h.remove(conn)
		}
	}
}

// Len returns the number of connected viewers
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every viewer
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		h.remove(conn)
	}
}
