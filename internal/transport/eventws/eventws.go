// Package eventws bridges the in-process Event Bus (C8) to WebSocket
// clients — operator dashboards or agent-side tooling that wants a live
// feed instead of polling `ping`/`get_task_context`. It is a read-only
// sink: no client message is ever interpreted, matching the teacher's own
// broadcast-only hub.
package eventws

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/marcus-ai/marcus/internal/domain/event"
	"github.com/marcus-ai/marcus/internal/port/eventbus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// broadcastChannels are the event channels forwarded to WebSocket clients.
var broadcastChannels = []event.Channel{
	event.ChannelAssignment,
	event.ChannelLease,
	event.ChannelTask,
	event.ChannelDependency,
	event.ChannelMonitor,
}

type Hub struct {
	log *slog.Logger

	mu      sync.RWMutex
	clients map[*websocket.Conn]bool
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{log: log, clients: make(map[*websocket.Conn]bool)}
}

// Subscribe registers the hub on every broadcast channel of bus. Called
// once at startup; subscriptions live for the lifetime of ctx.
func (h *Hub) Subscribe(ctx context.Context, bus eventbus.EventBus) error {
	for _, ch := range broadcastChannels {
		if _, err := bus.Subscribe(ctx, ch, func(_ context.Context, e event.Event) {
			h.Broadcast(e)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (h *Hub) Register(rg *gin.RouterGroup) {
	rg.GET("", h.handleWS)
}

func (h *Hub) handleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Error("websocket upgrade failed", "error", err)
		}
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	// Clients never send anything meaningful; ReadMessage just detects
	// disconnect (close frame or error).
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) Broadcast(e event.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		if h.log != nil {
			h.log.Error("websocket broadcast marshal failed", "error", err)
		}
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			if h.log != nil {
				h.log.Error("websocket write failed", "error", err)
			}
		}
	}
}
