package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/greenloop/recycle-be/internal/middleware"
	"github.com/greenloop/recycle-be/internal/realtime"
)

const wsWriteTimeout = 10 * time.Second

// WSHandler streams broker events over websockets: the caller's own balance
// changes on /ws/points, catalog additions on /ws/products. Each connection
// holds exactly one subscription, released when the socket goes away.
type WSHandler struct {
	broker   *realtime.Broker
	upgrader websocket.Upgrader
}

func NewWSHandler(broker *realtime.Broker) *WSHandler {
	return &WSHandler{
		broker: broker,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 10 * time.Second,
			// Cross-origin is already handled by the CORS layer for the REST
			// surface; the socket carries no state-changing operations.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Register attaches websocket routes. Balance streaming requires auth; the
// catalog stream is as public as the catalog itself.
func (h *WSHandler) Register(mux *http.ServeMux, authed func(http.Handler) http.Handler) {
	mux.Handle("GET /ws/points", authed(http.HandlerFunc(h.handlePoints)))
	mux.HandleFunc("GET /ws/products", h.handleProducts)
}

func (h *WSHandler) handlePoints(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	h.stream(w, r, realtime.PointsTopic(identity))
}

func (h *WSHandler) handleProducts(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, realtime.ProductsTopic)
}

func (h *WSHandler) stream(w http.ResponseWriter, r *http.Request, topic string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	sub := h.broker.Subscribe(topic)
	defer sub.Close()

	// Reader goroutine: we never expect client messages, but reading is what
	// surfaces the close frame.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-sub.C:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
