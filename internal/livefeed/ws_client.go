package livefeed

import (
	"encoding/json"
	"sync"
	"time"

	"grievancedesk/backend/internal/config"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// sendBuffer bounds frames queued for one connection before the hub drops it.
const sendBuffer = 16

// WebSocketClient implements Client over a gorilla websocket connection.
type WebSocketClient struct {
	UserID string
	Conn   *websocket.Conn
	Hub    *ManagerService
	Send   chan Frame

	closeOnce sync.Once
}

func NewWebSocketClient(userID string, conn *websocket.Conn, hub *ManagerService) *WebSocketClient {
	return &WebSocketClient{
		UserID: userID,
		Conn:   conn,
		Hub:    hub,
		Send:   make(chan Frame, sendBuffer),
	}
}

func (c *WebSocketClient) GetUserID() string            { return c.UserID }
func (c *WebSocketClient) GetSendChannel() chan<- Frame { return c.Send }

// Run starts the pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes Send, which makes writePump send a close message and exit.
func (c *WebSocketClient) Close() {
	c.closeOnce.Do(func() { close(c.Send) })
}

// readPump only watches the connection for liveness; the feed is one-way.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(config.WSMaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(config.WSPongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(config.WSPongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("user_id", c.UserID).Msg("websocket read error")
			}
			return
		}
	}
}

// writePump writes frames from Send. Every frame is a full state, so when
// several are queued only the newest is written.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(config.WSPingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WSWriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			for n := len(c.Send); n > 0; n-- {
				next, ok := <-c.Send
				if !ok {
					break
				}
				frame = next
			}

			data, err := json.Marshal(frame)
			if err != nil {
				log.Error().Err(err).Str("user_id", c.UserID).Msg("failed to encode frame")
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WSWriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
