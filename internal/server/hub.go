package server

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/lox/pokerescrow/internal/escrow"
	"github.com/lox/pokerescrow/internal/protocol"
)

// Hub tracks live connections and fans engine events out to the connections
// watching each room. OnEvent runs on the sequencer goroutine and never blocks.
type Hub struct {
	logger  zerolog.Logger
	mu      sync.RWMutex
	conns   map[string]*Connection
	dropped atomic.Uint64
}

var _ escrow.EventSink = (*Hub)(nil)

// NewHub returns an empty hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		logger: logger.With().Str("component", "hub").Logger(),
		conns:  make(map[string]*Connection),
	}
}

func (h *Hub) add(c *Connection) {
	h.mu.Lock()
	h.conns[c.ID] = c
	total := len(h.conns)
	h.mu.Unlock()
	h.logger.Info().Str("conn_id", c.ID).Int("total", total).Msg("Client connected")
}

func (h *Hub) remove(c *Connection) {
	h.mu.Lock()
	_, ok := h.conns[c.ID]
	delete(h.conns, c.ID)
	total := len(h.conns)
	h.mu.Unlock()
	if ok {
		h.logger.Info().Str("conn_id", c.ID).Int("total", total).Msg("Client disconnected")
	}
}

// Len returns the number of live connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Dropped returns how many event frames were discarded because a watcher's
// send buffer was full.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

func (h *Hub) closeAll() {
	h.mu.RLock()
	conns := make([]*Connection, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	for _, c := range conns {
		c.close()
	}
}

// OnEvent forwards e to every connection watching its room.
func (h *Hub) OnEvent(e escrow.Event) {
	msg := eventMessage(e)
	data, err := protocol.Marshal(&msg)
	if err != nil {
		h.logger.Error().Err(err).Str("kind", msg.Kind).Msg("Failed to encode event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.conns {
		if !c.Watches(msg.Room) {
			continue
		}
		if !c.trySend(data) {
			h.dropped.Add(1)
			h.logger.Warn().Str("conn_id", c.ID).Str("kind", msg.Kind).Msg("Dropped event for slow watcher")
		}
	}
}

func eventMessage(e escrow.Event) protocol.Event {
	msg := protocol.Event{
		Type:      protocol.TypeEvent,
		Kind:      string(e.Kind),
		Room:      uint64(e.Room),
		Actor:     string(e.Actor),
		Amount:    uint64(e.Amount),
		Candidate: string(e.Candidate),
		Reason:    e.Reason,
		At:        e.At.UnixNano(),
	}
	if e.Kind == escrow.EventActionRecorded {
		msg.Action = e.Action.String()
	}
	return msg
}
