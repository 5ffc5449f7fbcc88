package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/ananyev/adkchat/internal/domain"
)

// Hub pushes appended chat turns to connected browsers so multiple tabs see
// the same conversation. The HTTP response is the primary delivery path; a
// slow or dead socket never blocks a query cycle.
type Hub struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	logger *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		conns:  make(map[*websocket.Conn]struct{}),
		logger: logger,
	}
}

// Run consumes the events channel and broadcasts each turn until ctx is
// cancelled. Call it in its own goroutine.
func (h *Hub) Run(ctx context.Context, events <-chan domain.ChatTurn) {
	for {
		select {
		case <-ctx.Done():
			return
		case turn, ok := <-events:
			if !ok {
				return
			}
			h.broadcast(turn)
		}
	}
}

func (h *Hub) broadcast(turn domain.ChatTurn) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := wsjson.Write(ctx, conn, turn); err != nil {
			h.logger.Debug("websocket write failed, dropping connection", "error", err)
			h.remove(conn)
		}
		cancel()
	}
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}

// ServeHTTP upgrades the request and keeps the connection registered until
// the client goes away. Clients only listen; inbound messages are drained
// and ignored.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Error("failed to accept websocket", "error", err)
		return
	}
	defer func() {
		if closeErr := conn.Close(websocket.StatusNormalClosure, "bye"); closeErr != nil {
			h.logger.Debug("failed to close websocket", "error", closeErr)
		}
	}()

	h.add(conn)
	defer h.remove(conn)

	ctx := r.Context()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			return
		}
	}
}
