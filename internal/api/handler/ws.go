package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"tipsy/backend/internal/chathub"
	"tipsy/backend/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket joins the caller to a report's chat session over a
// websocket. The identity is pinned from the validated token; the
// session is created on first join.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	reportID := c.Query("report")
	if reportID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"err": "missing report query param"})
		return
	}

	if _, err := h.Store.InitiateChatSession(reportID); err != nil {
		storeError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"err": "failed to upgrade connection"})
		return
	}

	client := &chathub.WebSocketClient{
		Identity:  h.identity(c),
		SessionID: reportID,
		Conn:      conn,
		Hub:       h.Hub,
		Send:      make(chan models.ChatMessage, 256),
	}

	h.Hub.RegisterCh <- client
	client.Run()
}
