package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/onnwee/chat-celebrator/celebrate"
)

const writeWait = 2 * time.Second

// Overlay pages connect from OBS browser sources and file:// origins, so
// origin checks are disabled.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans celebrations out to connected websocket clients. Broadcast is
// called from a single goroutine, so each connection has one writer.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]struct{})}
}

// HandleWS upgrades the request and keeps the connection registered until
// the client goes away. Clients are listeners only; inbound messages are
// read and discarded to service pings and detect disconnects.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", slog.Any("err", err), slog.String("component", "server"))
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	n := len(h.conns)
	h.mu.Unlock()
	slog.Info("websocket client connected", slog.Int("clients", n), slog.String("component", "server"))

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(conn)
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	n := len(h.conns)
	h.mu.Unlock()
	conn.Close()
	slog.Info("websocket client disconnected", slog.Int("clients", n), slog.String("component", "server"))
}

// Broadcast sends the celebration to every connected client. Clients that
// fail a write are dropped.
func (h *Hub) Broadcast(ctx context.Context, c celebrate.Celebration) {
	payload, err := json.Marshal(c)
	if err != nil {
		slog.Error("marshal celebration", slog.Any("err", err), slog.String("component", "server"))
		return
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			slog.Warn("websocket write failed, dropping client", slog.Any("err", err), slog.String("component", "server"))
			h.remove(conn)
		}
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
