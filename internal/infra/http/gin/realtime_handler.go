package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"pnjpremium/internal/infra/realtime"
)

const (
	writeWait      = 10 * time.Second
	updateBacklog  = 16
	pingInterval   = 30 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 512
)

// RealtimeHandler upgrades watchers to a websocket and streams booking
// updates from the hub until the client disconnects.
type RealtimeHandler struct {
	Hub    *realtime.Hub
	Logger *slog.Logger

	upgrader websocket.Upgrader
}

func NewRealtimeHandler(hub *realtime.Hub, logger *slog.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		Hub:    hub,
		Logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *RealtimeHandler) Watch(c *gin.Context) {
	if _, ok := requirePrincipal(c); !ok {
		return
	}
	bookingID := c.Param("id")
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Debug("websocket upgrade failed", "error", err)
		}
		return
	}

	updates := make(chan realtime.Update, updateBacklog)
	cancel := h.Hub.Subscribe(bookingID, func(u realtime.Update) {
		select {
		case updates <- u:
		default:
			// slow consumer: drop rather than block the publisher
		}
	})
	defer cancel()
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(maxMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case u := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(u); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var _ RealtimeHTTP = (*RealtimeHandler)(nil)
