package escrow

import (
	"context"
	"fmt"
)

// Join adds actor to an Open room, escrowing paid into its pool.
func (e *Engine) Join(ctx context.Context, id RoomID, actor Actor, paid Amount) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if actor == "" {
		return e.reject("join", id, actor, ErrInvalidActor)
	}
	r, err := e.lookup(id)
	if err != nil {
		return e.reject("join", id, actor, err)
	}

	switch r.state {
	case StateStarted:
		return e.reject("join", id, actor, newError(CodeRoomNotJoinable, "room already started"))
	case StateSettled:
		return e.reject("join", id, actor, newError(CodeRoomNotJoinable, "room settled"))
	}
	if r.isMember(actor) {
		return e.reject("join", id, actor, ErrAlreadyJoined)
	}
	if paid != r.config.BuyIn {
		return e.reject("join", id, actor, ErrIncorrectBuyIn)
	}
	if len(r.members) >= r.config.MaxPlayers {
		return e.reject("join", id, actor, ErrRoomFull)
	}

	if e.admission.Enabled {
		score, err := e.reputation.Get(ctx, string(actor))
		if err != nil {
			return fmt.Errorf("join room %d: reputation lookup: %w", id, err)
		}
		if !e.admission.Admits(score) {
			e.logger.Info().
				Uint64("room", uint64(id)).
				Str("actor", string(actor)).
				Int64("reputation", score).
				Int64("threshold", e.admission.BanThreshold).
				Msg("Join rejected by reputation")
			e.sink.OnEvent(Event{
				Kind:   EventJoinRejected,
				Room:   id,
				Actor:  actor,
				Amount: paid,
				Reason: ErrReputationTooLow.Reason,
				At:     e.clock.Now(),
			})
			return fmt.Errorf("join room %d: %w", id, ErrReputationTooLow)
		}
	}

	now := e.clock.Now()
	r.addMember(actor, paid)
	e.book.Deposit(uint64(id), string(actor), uint64(paid), now)

	e.logger.Debug().
		Uint64("room", uint64(id)).
		Str("actor", string(actor)).
		Int("players", len(r.members)).
		Uint64("pool", uint64(r.pool)).
		Msg("Player joined")
	e.sink.OnEvent(Event{Kind: EventPlayerJoined, Room: id, Actor: actor, Amount: paid, At: now})
	return nil
}

// Start moves an Open room with at least two members to Started. Only the creator
// may start a room.
func (e *Engine) Start(ctx context.Context, id RoomID, caller Actor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r, err := e.lookup(id)
	if err != nil {
		return e.reject("start", id, caller, err)
	}
	if r.state != StateOpen {
		return e.reject("start", id, caller, ErrRoomAlreadyStarted)
	}
	if caller != r.creator {
		return e.reject("start", id, caller, ErrOnlyCreator)
	}
	if len(r.members) < MinPlayers {
		return e.reject("start", id, caller, ErrNotEnoughPlayers)
	}

	r.state = StateStarted
	now := e.clock.Now()

	e.logger.Debug().
		Uint64("room", uint64(id)).
		Int("players", len(r.members)).
		Msg("Room started")
	e.sink.OnEvent(Event{Kind: EventRoomStarted, Room: id, Actor: caller, Amount: r.pool, At: now})
	return nil
}
