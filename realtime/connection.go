// Package realtime owns live sockets end to end: the Connection
// Registry, the Broadcaster, and the Heartbeat Monitor. Each connection
// runs its own writePump/readPump pair over a buffered send channel.
package realtime

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// backpressureLimit is the outbound buffer ceiling; a connection that
// exceeds it is closed with code 1013.
const backpressureLimit = 1 << 20 // 1 MiB

const maxInboundMessage = 128 * 1024

// CloseSupersededSession is sent to a connection evicted from the
// registry by a newer connection for the same user.
const CloseSupersededSession = 4000

// Connection wraps one client socket. OnMessage/OnClose are injected by
// the session router so this package stays free of message semantics.
type Connection struct {
	UserID             string
	IPAddress          string
	socket             *websocket.Conn
	send               chan []byte
	mu                 sync.Mutex
	closed             bool
	closedByNewSession bool

	OnMessage func(conn *Connection, payload []byte)
	OnClose   func(conn *Connection)
}

// NewConnection wraps an upgraded socket. Call Start to begin pumping.
func NewConnection(socket *websocket.Conn, userID, ip string) *Connection {
	socket.SetReadLimit(maxInboundMessage + 1)
	return &Connection{
		UserID:    userID,
		IPAddress: ip,
		socket:    socket,
		send:      make(chan []byte, 256),
	}
}

// Start launches the read and write pumps.
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// BufferedBytes reports the number of outbound frames queued. The
// backpressure check itself lives in Send.
func (c *Connection) BufferedBytes() int {
	return len(c.send)
}

// MarkSuperseded flags this connection as replaced by a newer login,
// so its eventual close does not trigger the full disconnect flow.
func (c *Connection) MarkSuperseded() {
	c.mu.Lock()
	c.closedByNewSession = true
	c.mu.Unlock()
}

// ClosedByNewSession reports whether this connection was superseded.
func (c *Connection) ClosedByNewSession() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closedByNewSession
}

// Send enqueues a frame for the write pump. It returns false if the
// connection's outbound buffer is over the backpressure limit or the
// connection is already closed; the caller is expected to evict the
// connection on a false return.
func (c *Connection) Send(payload []byte) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.mu.Unlock()

	if len(c.send)*averageFrameEstimate > backpressureLimit {
		c.CloseWithCode(1013, "backpressure")
		return false
	}

	select {
	case c.send <- payload:
		return true
	default:
		c.CloseWithCode(1013, "backpressure")
		return false
	}
}

// averageFrameEstimate approximates a queued frame's size for the
// buffer-bytes heuristic, since exact byte accounting isn't tracked per
// frame. With the 256-frame send queue the estimate tops out at 512 KiB,
// below backpressureLimit, so in practice Send closes the connection
// with 1013 when the queue is full.
const averageFrameEstimate = 2048

// CloseWithCode closes the underlying socket with a specific WS close
// code and triggers OnClose.
func (c *Connection) CloseWithCode(code int, reason string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.socket.WriteControl(websocket.CloseMessage, msg, time.Now().Add(5*time.Second))
	_ = c.socket.Close()
	close(c.send)

	if c.OnClose != nil {
		c.OnClose(c)
	}
}

func (c *Connection) readPump() {
	defer func() {
		c.CloseWithCode(websocket.CloseNormalClosure, "")
	}()

	for {
		_, message, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("realtime: read error for user %s: %v", c.UserID, err)
			}
			return
		}
		if len(message) > maxInboundMessage {
			c.CloseWithCode(1009, "message too large")
			return
		}
		if c.OnMessage != nil {
			c.OnMessage(c, message)
		}
	}
}

func (c *Connection) writePump() {
	defer func() {
		_ = c.socket.Close()
	}()

	for message := range c.send {
		w, err := c.socket.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		if _, err := w.Write(message); err != nil {
			_ = w.Close()
			return
		}
		if err := w.Close(); err != nil {
			return
		}
	}
}
