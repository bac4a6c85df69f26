package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lox/pokerescrow/internal/escrow"
	"github.com/lox/pokerescrow/internal/protocol"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Frames buffered per connection before events are dropped
	sendBuffer = 256
)

var (
	ErrConnectionClosed = errors.New("server: connection closed")
	ErrSendTimeout      = errors.New("server: send timeout")
)

// Connection is one websocket client. It submits intents and receives results and
// the events of the rooms it watches.
type Connection struct {
	ID       string
	conn     *websocket.Conn
	send     chan []byte
	server   *Server
	logger   zerolog.Logger
	mu       sync.RWMutex
	watching map[uint64]struct{}
	closed   bool
	done     chan struct{}
}

func newConnection(conn *websocket.Conn, s *Server) *Connection {
	id := uuid.NewString()
	return &Connection{
		ID:       id,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		server:   s,
		logger:   s.logger.With().Str("conn_id", id).Logger(),
		watching: make(map[uint64]struct{}),
		done:     make(chan struct{}),
	}
}

// SendMessage sends a protocol message, waiting briefly for buffer space.
func (c *Connection) SendMessage(msg any) error {
	data, err := protocol.Marshal(msg)
	if err != nil {
		return err
	}

	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return ErrConnectionClosed
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrConnectionClosed
	case <-time.After(time.Second):
		return ErrSendTimeout
	}
}

// trySend queues an encoded frame without blocking. It reports false if the frame
// was dropped.
func (c *Connection) trySend(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Watches reports whether the connection receives events for room.
func (c *Connection) Watches(room uint64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.watching[room]
	return ok
}

func (c *Connection) watch(room uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watching[room] = struct{}{}
}

func (c *Connection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.done)
	}
}

// ReadPump reads frames from the websocket until it fails or ctx ends.
func (c *Connection) ReadPump(ctx context.Context) {
	defer func() {
		c.server.unregister(c)
		c.close()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error().Err(err).Msg("Unexpected WebSocket close error")
			}
			return
		}
		if ctx.Err() != nil {
			return
		}

		var intent protocol.Intent
		if err := protocol.Unmarshal(message, &intent); err != nil || intent.Type != protocol.TypeIntent {
			c.logger.Debug().Err(err).Msg("Dropping malformed frame")
			_ = c.SendMessage(&protocol.Error{Type: protocol.TypeError, Code: CodeBadRequest, Message: "expected intent frame"})
			continue
		}

		var res protocol.Result
		if intent.Op == protocol.OpWatch {
			res = c.handleWatch(ctx, &intent)
		} else {
			res = c.server.execute(ctx, &intent)
		}
		if err := c.SendMessage(&res); err != nil {
			c.logger.Warn().Err(err).Str("request_id", res.RequestID).Msg("Failed to deliver result")
		}
	}
}

func (c *Connection) handleWatch(ctx context.Context, in *protocol.Intent) protocol.Result {
	res := protocol.Result{Type: protocol.TypeResult, RequestID: in.RequestID, Room: in.Room}
	err := c.server.seq.Do(ctx, func(e *escrow.Engine) error {
		_, err := e.Room(escrow.RoomID(in.Room))
		return err
	})
	if err != nil {
		return c.server.failFromError(res, err)
	}
	c.watch(in.Room)
	res.OK = true
	return res
}

// WritePump writes queued frames and keepalive pings to the websocket.
func (c *Connection) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.drain()
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drain writes frames queued before the connection closed.
func (c *Connection) drain() {
	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
				return
			}
		default:
			return
		}
	}
}
