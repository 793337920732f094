package ws

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Registry maps a user id to its live connection so already-committed
// workflow events can be pushed to connected clients. It is process-wide
// ephemeral state: no durability, no ordering across reconnects, and never
// a source of truth for delivery.
type Registry struct {
	mu       sync.RWMutex
	conns    map[string]*websocket.Conn
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		conns: make(map[string]*websocket.Conn),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The gateway authenticates upstream; same-origin checks are its
			// concern, not this service's.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// HandleWS upgrades the connection and registers it under the caller's id.
// A reconnect replaces the previous connection (last-write-wins).
func (g *Registry) HandleWS(w http.ResponseWriter, r *http.Request) {
	uid := r.URL.Query().Get("userId")
	if uid == "" {
		uid = r.Header.Get("X-User-Id")
	}
	if uid == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	g.register(uid, conn)

	// Drain reads only to detect disconnects; clients don't send anything
	// meaningful on this socket.
	go func() {
		defer g.unregister(uid, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (g *Registry) register(uid string, conn *websocket.Conn) {
	g.mu.Lock()
	if old, ok := g.conns[uid]; ok {
		_ = old.Close()
	}
	g.conns[uid] = conn
	g.mu.Unlock()

	g.logger.Debug("websocket client registered", zap.String("user_id", uid))
}

func (g *Registry) unregister(uid string, conn *websocket.Conn) {
	g.mu.Lock()
	if current, ok := g.conns[uid]; ok && current == conn {
		delete(g.conns, uid)
	}
	g.mu.Unlock()
	_ = conn.Close()
}

// Push sends an event to the user's live connection, if any. Failures drop
// the connection; delivery is best-effort.
func (g *Registry) Push(uid string, event any) {
	g.mu.RLock()
	conn, ok := g.conns[uid]
	g.mu.RUnlock()
	if !ok {
		return
	}

	if err := conn.WriteJSON(event); err != nil {
		g.logger.Debug("websocket push failed, dropping connection",
			zap.String("user_id", uid),
			zap.Error(err),
		)
		g.unregister(uid, conn)
	}
}

// Connected reports whether the user currently holds a live connection.
func (g *Registry) Connected(uid string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.conns[uid]
	return ok
}
