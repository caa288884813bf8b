package handler

import (
	"net/http"

	"grievancedesk/backend/internal/livefeed"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Any origin may connect; requests are authenticated by token.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the connection and subscribes it to the caller's report state.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("websocket upgrade failed")
		return
	}

	client := livefeed.NewWebSocketClient(user.ID, conn, h.Hub)
	if !h.Hub.Register(client) {
		conn.Close()
	}
}
