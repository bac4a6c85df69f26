// Package client is a websocket client for the escrow server. It signs intents
// with the caller's key and matches results to requests.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lox/pokerescrow/internal/identity"
	"github.com/lox/pokerescrow/internal/protocol"
)

const (
	writeWait   = 10 * time.Second
	pingPeriod  = 54 * time.Second
	eventBuffer = 256
)

// ErrClosed is returned by operations on a closed client.
var ErrClosed = errors.New("client: closed")

// ResultError is a rejected intent.
type ResultError struct {
	Code   string
	Reason string
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

// CodeOf returns the result code carried by err, or "" if there is none.
func CodeOf(err error) string {
	var re *ResultError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// Client is one websocket session acting as a single actor.
type Client struct {
	conn   *websocket.Conn
	key    *identity.KeyPair
	actor  string
	logger zerolog.Logger

	// writeMu serialises writes and guards nonce.
	writeMu sync.Mutex
	nonce   uint64

	mu      sync.Mutex
	pending map[string]chan protocol.Result
	closed  bool

	events    chan protocol.Event
	done      chan struct{}
	closeOnce sync.Once
}

// Option configures a Client.
type Option func(*Client)

// WithActor sends intents as actor without a signature. Only servers running
// with signatures disabled accept them.
func WithActor(actor string) Option {
	return func(c *Client) { c.actor = actor }
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// Dial connects to the server at serverURL (http, https, ws or wss). key may be
// nil when WithActor is given.
func Dial(ctx context.Context, serverURL string, key *identity.KeyPair, opts ...Option) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}

	c := &Client{
		key:     key,
		logger:  zerolog.Nop(),
		pending: make(map[string]chan protocol.Result),
		events:  make(chan protocol.Event, eventBuffer),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if key != nil {
		c.actor = key.Address()
	}
	if c.actor == "" {
		return nil, errors.New("client: a key or actor is required")
	}
	// Nonces must increase across sessions, so start from the wall clock.
	c.nonce = uint64(time.Now().UnixNano())

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	c.conn = conn
	c.logger = c.logger.With().Str("actor", c.actor).Logger()

	go c.readLoop()
	go c.pingLoop()
	return c, nil
}

// Actor returns the identity intents are sent as.
func (c *Client) Actor() string {
	return c.actor
}

// Events delivers events for watched rooms. It is closed when the client closes.
// Events are dropped if the channel is not drained.
func (c *Client) Events() <-chan protocol.Event {
	return c.events
}

// Close ends the session.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		err = c.conn.Close()
		<-c.done
	})
	return err
}

// CreateRoom opens a room and returns its id. Zero blinds and seats request the
// server's quick configuration.
func (c *Client) CreateRoom(ctx context.Context, buyIn, smallBlind, bigBlind uint64, maxPlayers int) (uint64, error) {
	res, err := c.Submit(ctx, &protocol.Intent{
		Op:         protocol.OpCreateRoom,
		BuyIn:      buyIn,
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
		MaxPlayers: maxPlayers,
	})
	if err != nil {
		return 0, err
	}
	return res.Room, nil
}

// Join pays amount into room.
func (c *Client) Join(ctx context.Context, room, amount uint64) error {
	_, err := c.Submit(ctx, &protocol.Intent{Op: protocol.OpJoinRoom, Room: room, Amount: amount})
	return err
}

// Start begins play in room.
func (c *Client) Start(ctx context.Context, room uint64) error {
	_, err := c.Submit(ctx, &protocol.Intent{Op: protocol.OpStartRoom, Room: room})
	return err
}

// RecordAction logs a betting action such as "bet" or "fold".
func (c *Client) RecordAction(ctx context.Context, room uint64, action string, amount uint64) error {
	_, err := c.Submit(ctx, &protocol.Intent{Op: protocol.OpRecordAction, Room: room, Action: action, Amount: amount})
	return err
}

// Vote casts a ballot for candidate.
func (c *Client) Vote(ctx context.Context, room uint64, candidate string) error {
	_, err := c.Submit(ctx, &protocol.Intent{Op: protocol.OpVoteWinner, Room: room, Candidate: candidate})
	return err
}

// Finalize settles room in favour of candidate.
func (c *Client) Finalize(ctx context.Context, room uint64, candidate string) error {
	_, err := c.Submit(ctx, &protocol.Intent{Op: protocol.OpFinalize, Room: room, Candidate: candidate})
	return err
}

// Watch subscribes to events for room.
func (c *Client) Watch(ctx context.Context, room uint64) error {
	_, err := c.Submit(ctx, &protocol.Intent{Op: protocol.OpWatch, Room: room})
	return err
}

// Submit stamps, signs and sends in, then waits for its result. A rejected intent
// is returned as a *ResultError alongside the result. Submit is safe for
// concurrent use; nonces reach the server in the order they are assigned.
func (c *Client) Submit(ctx context.Context, in *protocol.Intent) (protocol.Result, error) {
	in.Type = protocol.TypeIntent
	in.RequestID = uuid.NewString()
	in.Actor = c.actor

	wait := make(chan protocol.Result, 1)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return protocol.Result{}, ErrClosed
	}
	c.pending[in.RequestID] = wait
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, in.RequestID)
		c.mu.Unlock()
	}()

	if err := c.send(in); err != nil {
		return protocol.Result{}, err
	}

	select {
	case res := <-wait:
		if !res.OK {
			return res, &ResultError{Code: res.Code, Reason: res.Reason}
		}
		return res, nil
	case <-c.done:
		return protocol.Result{}, ErrClosed
	case <-ctx.Done():
		return protocol.Result{}, ctx.Err()
	}
}

// send assigns the next nonce, signs and writes in while holding writeMu.
func (c *Client) send(in *protocol.Intent) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.nonce++
	in.Nonce = c.nonce
	if c.key != nil {
		in.PublicKey = c.key.PublicHex()
		sig, err := c.key.Sign(in.SigningPayload())
		if err != nil {
			return fmt.Errorf("sign intent: %w", err)
		}
		in.Signature = sig
	}

	data, err := protocol.Marshal(in)
	if err != nil {
		return err
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("send intent: %w", err)
	}
	return nil
}

func (c *Client) readLoop() {
	defer func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.done)
		close(c.events)
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) &&
				!strings.Contains(err.Error(), "use of closed network connection") {
				c.logger.Warn().Err(err).Msg("Connection lost")
			}
			return
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			c.logger.Debug().Err(err).Msg("Dropping undecodable frame")
			continue
		}
		switch m := msg.(type) {
		case *protocol.Result:
			c.mu.Lock()
			wait, ok := c.pending[m.RequestID]
			c.mu.Unlock()
			if ok {
				wait <- *m
			}
		case *protocol.Event:
			select {
			case c.events <- *m:
			default:
				c.logger.Warn().Str("kind", m.Kind).Msg("Event buffer full, dropping event")
			}
		case *protocol.Error:
			c.logger.Warn().Str("code", m.Code).Msg(m.Message)
		}
	}
}

func (c *Client) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.writeMu.Lock()
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
