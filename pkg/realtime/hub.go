package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/promolink/promolink-backend/pkg/logger"
)

// Event names pushed to connected clients.
const (
	EventNotification = "notification"
	EventUnreadCount  = "unread_count"
)

// Message is the frame shape written to clients.
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub keeps the per-user registry of live websocket connections for
// this API instance. A user may hold several connections (tabs).
type Hub struct {
	mtx   sync.Mutex
	conns map[uuid.UUID]map[*websocket.Conn]func(Message)
	logg  *logger.Logger
}

func NewHub(logg *logger.Logger) *Hub {
	return &Hub{
		conns: make(map[uuid.UUID]map[*websocket.Conn]func(Message)),
		logg:  logg,
	}
}

// Register adds a connection for the user. Registering the same
// connection twice is a no-op. An optional hook runs after each
// successful delivery to the connection; it must not call back into
// the hub.
func (h *Hub) Register(userID uuid.UUID, conn *websocket.Conn, hooks ...func(Message)) {
	if conn == nil {
		return
	}
	var hook func(Message)
	if len(hooks) > 0 {
		hook = hooks[0]
	}
	h.mtx.Lock()
	defer h.mtx.Unlock()
	set, ok := h.conns[userID]
	if !ok {
		set = make(map[*websocket.Conn]func(Message))
		h.conns[userID] = set
	}
	set[conn] = hook
}

// Unregister removes and closes the connection. Safe to call twice.
func (h *Hub) Unregister(userID uuid.UUID, conn *websocket.Conn) {
	if conn == nil {
		return
	}
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if set, ok := h.conns[userID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.conns, userID)
		}
	}
	_ = conn.Close()
}

// Send writes the message to every live connection of the user.
// A connection that fails the write is evicted; delivery is
// at-most-once and disconnected clients simply miss the push.
func (h *Hub) Send(ctx context.Context, userID uuid.UUID, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		if h.logg != nil {
			h.logg.Error(ctx, "realtime message marshal failed", err)
		}
		return
	}

	h.mtx.Lock()
	defer h.mtx.Unlock()
	set, ok := h.conns[userID]
	if !ok {
		return
	}
	for conn, hook := range set {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			delete(set, conn)
			_ = conn.Close()
			if h.logg != nil {
				logCtx := h.logg.WithUserID(ctx, userID.String())
				h.logg.Warn(h.logg.WithField(logCtx, "error", err.Error()), "evicting websocket after write failure")
			}
			continue
		}
		if hook != nil {
			hook(msg)
		}
	}
	if len(set) == 0 {
		delete(h.conns, userID)
	}
}

// ConnCount reports the number of live connections for the user.
func (h *Hub) ConnCount(userID uuid.UUID) int {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return len(h.conns[userID])
}
