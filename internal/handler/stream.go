package handler

import (
	"log"
	"net/http"
	"sync"
	"time"

	"stock-pulse/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const streamWriteTimeout = 5 * time.Second

// StreamHub fans completed analyses out to connected websocket clients.
// It implements service.AnalysisNotifier; only actionable analyses are
// broadcast.
type StreamHub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewStreamHub() *StreamHub {
	return &StreamHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// AnalysisCompleted broadcasts an actionable analysis to every client.
// Clients whose writes fail are dropped.
func (hub *StreamHub) AnalysisCompleted(a *domain.Analysis) {
	if a == nil || a.Assessment == nil || !a.Assessment.IsActionable {
		return
	}

	hub.mu.Lock()
	defer hub.mu.Unlock()

	for conn := range hub.clients {
		conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if err := conn.WriteJSON(a); err != nil {
			log.Printf("analysis stream write error, dropping client: %v", err)
			conn.Close()
			delete(hub.clients, conn)
		}
	}
}

// ClientCount reports the number of connected clients.
func (hub *StreamHub) ClientCount() int {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	return len(hub.clients)
}

func (hub *StreamHub) add(conn *websocket.Conn) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	hub.clients[conn] = struct{}{}
}

func (hub *StreamHub) remove(conn *websocket.Conn) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	if _, ok := hub.clients[conn]; ok {
		conn.Close()
		delete(hub.clients, conn)
	}
}

// StreamAnalyses godoc
// @Summary      Stream actionable analyses over websocket
// @Description  Upgrades the connection and pushes every actionable analysis as JSON
// @Tags         analyses
// @Router       /ws/analyses [get]
func (h *Handler) StreamAnalyses(c *gin.Context) {
	if h.stream == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis stream unavailable"})
		return
	}

	conn, err := h.stream.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	h.stream.add(conn)

	// Reader loop only drains control frames; the hub owns all writes.
	go func() {
		defer h.stream.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
