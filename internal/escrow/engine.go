package escrow

import (
	"context"
	"fmt"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/pokerescrow/internal/ledger"
	"github.com/lox/pokerescrow/internal/reputation"
)

// Engine owns every room and applies operations against them.
type Engine struct {
	logger     zerolog.Logger
	clock      quartz.Clock
	reputation reputation.Store
	scoring    reputation.Scoring
	admission  reputation.Admission
	book       *ledger.Book
	sink       EventSink
	firstID    RoomID
	rooms      []*room
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source used for room, action and ledger timestamps.
func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithScoring sets the settlement scoring policy.
func WithScoring(s reputation.Scoring) Option {
	return func(e *Engine) { e.scoring = s }
}

// WithAdmission enables reputation-gated joins.
func WithAdmission(a reputation.Admission) Option {
	return func(e *Engine) { e.admission = a }
}

// WithLedger sets the book receiving deposits and payouts.
func WithLedger(b *ledger.Book) Option {
	return func(e *Engine) { e.book = b }
}

// WithEventSink sets the receiver of room notifications.
func WithEventSink(s EventSink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithFirstRoomID makes the registry allocate ids from id. Lower ids are
// reported as not found. Use it to continue numbering after a restart.
func WithFirstRoomID(id RoomID) Option {
	return func(e *Engine) { e.firstID = id }
}

// NewEngine creates an engine backed by the given reputation store. Without options
// it uses the real clock, participation scoring, open admission and a fresh book.
func NewEngine(logger zerolog.Logger, store reputation.Store, opts ...Option) *Engine {
	e := &Engine{
		logger:     logger.With().Str("component", "engine").Logger(),
		clock:      quartz.NewReal(),
		reputation: store,
		scoring:    reputation.DefaultParticipation(),
		book:       ledger.NewBook(),
		sink:       discardSink{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ledger returns the engine's book.
func (e *Engine) Ledger() *ledger.Book {
	return e.book
}

// NextRoomID returns the identifier the next CreateRoom will allocate.
func (e *Engine) NextRoomID() RoomID {
	return e.firstID + RoomID(len(e.rooms))
}

// CreateRoom registers a new Open room owned by creator.
func (e *Engine) CreateRoom(ctx context.Context, creator Actor, cfg RoomConfig) (RoomID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if creator == "" {
		return 0, fmt.Errorf("create room: %w", ErrInvalidActor)
	}
	if err := cfg.Validate(); err != nil {
		return 0, fmt.Errorf("create room: %w", err)
	}

	id := e.NextRoomID()
	now := e.clock.Now()
	e.rooms = append(e.rooms, newRoom(id, creator, cfg, now))

	e.logger.Debug().
		Uint64("room", uint64(id)).
		Str("creator", string(creator)).
		Uint64("buy_in", uint64(cfg.BuyIn)).
		Int("max_players", cfg.MaxPlayers).
		Msg("Room created")
	e.sink.OnEvent(Event{Kind: EventRoomCreated, Room: id, Actor: creator, Amount: cfg.BuyIn, At: now})
	return id, nil
}

func (e *Engine) lookup(id RoomID) (*room, error) {
	if id < e.firstID || uint64(id-e.firstID) >= uint64(len(e.rooms)) {
		return nil, newError(CodeNotFound, fmt.Sprintf("room %d not found", id))
	}
	return e.rooms[id-e.firstID], nil
}

// Room returns a snapshot of room id.
func (e *Engine) Room(id RoomID) (RoomView, error) {
	r, err := e.lookup(id)
	if err != nil {
		return RoomView{}, err
	}
	return r.view(), nil
}

// Rooms returns snapshots of every room in id order.
func (e *Engine) Rooms() []RoomView {
	out := make([]RoomView, 0, len(e.rooms))
	for _, r := range e.rooms {
		out = append(out, r.view())
	}
	return out
}

// Players returns room id's members in join order.
func (e *Engine) Players(id RoomID) ([]Actor, error) {
	r, err := e.lookup(id)
	if err != nil {
		return nil, err
	}
	return r.playersCopy(), nil
}

// Actions returns room id's action log in submission order.
func (e *Engine) Actions(id RoomID) ([]Action, error) {
	r, err := e.lookup(id)
	if err != nil {
		return nil, err
	}
	return r.log.Records(), nil
}

// Ballots returns room id's votes in casting order.
func (e *Engine) Ballots(id RoomID) ([]Ballot, error) {
	r, err := e.lookup(id)
	if err != nil {
		return nil, err
	}
	return r.tally.Ballots(), nil
}

// HasFolded reports whether actor has folded in room id.
func (e *Engine) HasFolded(id RoomID, actor Actor) (bool, error) {
	r, err := e.lookup(id)
	if err != nil {
		return false, err
	}
	return r.log.HasFolded(actor), nil
}

// Reputation returns actor's current score.
func (e *Engine) Reputation(ctx context.Context, actor Actor) (int64, error) {
	score, err := e.reputation.Get(ctx, string(actor))
	if err != nil {
		return 0, fmt.Errorf("reputation %s: %w", actor, err)
	}
	return score, nil
}

func (e *Engine) reject(op string, id RoomID, actor Actor, err error) error {
	e.logger.Debug().
		Str("op", op).
		Uint64("room", uint64(id)).
		Str("actor", string(actor)).
		Str("code", string(CodeOf(err))).
		Msg(ReasonOf(err))
	return fmt.Errorf("%s room %d: %w", op, id, err)
}
