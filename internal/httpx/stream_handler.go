package httpx

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ariefcatur/restaurant-orders/internal/authz"
	"github.com/ariefcatur/restaurant-orders/internal/catalog"
	"github.com/ariefcatur/restaurant-orders/internal/notify"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type BranchLookup interface {
	GetBranch(ctx context.Context, id int64) (*catalog.Branch, error)
}

// StreamHandler pushes branch events to dashboards over websockets. Every
// connection gets its own subscription, closed with the connection.
type StreamHandler struct {
	Redis    *redis.Client
	Branches BranchLookup
	Upgrader websocket.Upgrader
}

func (h *StreamHandler) Register(r chi.Router) {
	r.With(RequireAuth).Get("/ws/branches/{id}/orders", h.branchOrders)
}

func (h *StreamHandler) branchOrders(w http.ResponseWriter, r *http.Request) {
	branchID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	b, err := h.Branches.GetBranch(r.Context(), branchID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !authz.CanActOnBranch(authz.FromContext(r.Context()), b.ID, b.BusinessID) {
		writeError(w, r, authz.ErrForbidden)
		return
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()
	sess, err := notify.Subscribe(ctx, h.Redis, notify.BranchChannel(branchID))
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer sess.Close()

	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the client
		return
	}
	defer conn.Close()

	go readPump(conn, cancel)
	go pingLoop(ctx, conn, cancel)

	err = sess.Run(ctx, &wsSink{conn: conn})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("ws branch %d: %v", branchID, err)
	}
}

// readPump drains client frames so control messages are handled, and
// cancels the session once the client goes away.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func pingLoop(ctx context.Context, conn *websocket.Conn, cancel context.CancelFunc) {
	t := time.NewTicker(pingPeriod)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				cancel()
				return
			}
		}
	}
}

type wsSink struct{ conn *websocket.Conn }

func (s *wsSink) Send(ev notify.Event) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(ev)
}
