package websocket

import (
	"log/slog"

	"github.com/gorilla/websocket"
)

// sendBufferSize bounds the per-connection outbound queue; a client that
// cannot drain it loses messages rather than stalling a room broadcast.
const sendBufferSize = 32

// client is one upgraded connection with its opaque identity. All writes
// go through the send channel so room transitions never block on socket
// I/O. The send channel is never closed; the done channel stops the
// write pump, which keeps concurrent broadcasts safe during disconnect.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

func newClient(id string, conn *websocket.Conn) *client {
	return &client{
		id:   id,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

// writePump - drains the send channel onto the socket until the client
// is stopped on disconnect.
func (that *client) writePump(logger *slog.Logger) {
	log := logger.With("method", "writePump", "connID", that.id)

	defer that.conn.Close()

	for {
		select {
		case message := <-that.send:
			if err := that.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error("failed to write message", "error", err)
				return
			}
		case <-that.done:
			return
		}
	}
}

func (that *client) stop() {
	close(that.done)
}
