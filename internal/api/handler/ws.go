package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"weddinggo/backend/internal/feed"
	"weddinggo/backend/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The feed endpoint sits behind AdminAuth; origin checks are handled by
	// the deployment's reverse proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeFeed upgrades the connection and attaches it to the enforcement
// event feed. Runs behind AdminAuth.
func (h *Handler) ServeFeed(c *gin.Context) {
	adminID := c.GetString("admin_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	client := &feed.WebSocketClient{
		AdminID: adminID,
		Conn:    conn,
		Hub:     h.Hub,
		Send:    make(chan models.EnforcementEvent, 256),
	}

	h.Hub.RegisterCh <- client
	client.Run()
}
