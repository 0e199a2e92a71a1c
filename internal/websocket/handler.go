package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs attaches a websocket peer to a board feed.
func ServeWs(hub *Hub, c *websocket.Conn, boardID uuid.UUID) {
	client := &Client{Hub: hub, Conn: c, BoardID: boardID, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // keep the fiber handler goroutine alive for the connection
}
