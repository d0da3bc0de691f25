package ws

import (
	"sync"
	"time"

	"deliveryhub/internal/tracking"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// client is one WebSocket connection. The hub writes through Send, which never
// blocks: frames go to a bounded buffer drained by writePump.
type client struct {
	id     string
	conn   *websocket.Conn
	send   chan tracking.Message
	done   chan struct{}
	once   sync.Once
	opts   Options
	logger zerolog.Logger
}

func newClient(id string, conn *websocket.Conn, opts Options, logger zerolog.Logger) *client {
	return &client{
		id:     id,
		conn:   conn,
		send:   make(chan tracking.Message, opts.SendBuffer),
		done:   make(chan struct{}),
		opts:   opts,
		logger: logger,
	}
}

func (c *client) ID() string { return c.id }

// Send queues msg and reports false when the buffer is full or the client is gone.
func (c *client) Send(msg tracking.Message) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// close sends a close frame and tears the connection down, which also ends the
// read loop.
func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(c.opts.WriteWait))
		_ = c.conn.Close()
	})
}

// writePump is the only goroutine writing to the connection.
func (c *client) writePump() {
	ticker := time.NewTicker(c.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Debug().Err(err).Msg("write failed")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug().Err(err).Msg("ping failed")
				return
			}
		}
	}
}
