package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Seat tokens authenticate the connection; origins are not restricted.
		return true
	},
}

// Client is a middleman between one seat's websocket connection and the hub.
type Client struct {
	hub *Hub

	conn *websocket.Conn

	// Buffered channel of outbound envelopes
	send chan *ServerEnvelope

	GameID string

	// PlayerID is the seat this connection plays. Visibility filtering uses it.
	PlayerID string

	// RateLimitKey is set at connection time (e.g. client IP) for rate limiting decisions.
	RateLimitKey string

	ctx context.Context
}

func newClient(hub *Hub, conn *websocket.Conn, gameID, playerID, rateLimitKey string) *Client {
	return &Client{
		hub:          hub,
		conn:         conn,
		send:         make(chan *ServerEnvelope, 256),
		GameID:       gameID,
		PlayerID:     playerID,
		RateLimitKey: rateLimitKey,
		ctx:          context.Background(),
	}
}

// readPump pumps messages from the websocket connection to the event handler.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn().Err(err).Str("game_id", c.GameID).Msg("websocket read error")
			}
			break
		}

		var msg ClientInMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.hub.SendToClient(c, errorEnvelope("invalid message"))
			continue
		}
		if h := c.hub.handler(); h != nil {
			h.HandleMessage(c.ctx, c, &msg)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case out, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(out); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func errorEnvelope(message string) *ServerEnvelope {
	return &ServerEnvelope{Type: ServerTypeError, Payload: map[string]interface{}{"message": message}}
}
