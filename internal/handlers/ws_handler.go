package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is already handled in front of gin; allow upgrade from any origin here
		return true
	},
}

// WebSocket upgrades the connection and registers the client to the hub.
// It requires JWT middleware to have set "user_id" in context.
func (h *Handler) WebSocket(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", userID).Msg("websocket upgrade failed")
		return
	}
	h.hub.Serve(userID, conn)
}
