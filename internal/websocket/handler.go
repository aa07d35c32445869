package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs registers the connection and blocks until the peer goes away.
// initial, when set, is queued as the first snapshot frame.
func ServeWs(hub *Hub, c *websocket.Conn, sessionID string, initial interface{}) {
	client := NewClient(hub, c, sessionID)
	if initial != nil {
		if message, err := encodeFrame(FrameSnapshot, initial); err == nil {
			client.Send <- message
		}
	}
	if !hub.join(client) {
		c.Close()
		return
	}

	go client.writePump()
	client.readPump()
}
