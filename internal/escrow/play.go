package escrow

import "context"

// RecordAction appends an action by actor to a Started room's log. Amounts are
// recorded only; no funds move.
func (e *Engine) RecordAction(ctx context.Context, id RoomID, actor Actor, typ ActionType, amount Amount) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r, err := e.lookup(id)
	if err != nil {
		return e.reject("record action", id, actor, err)
	}
	if r.state != StateStarted {
		return e.reject("record action", id, actor, ErrRoomNotStarted)
	}
	if !r.isMember(actor) {
		return e.reject("record action", id, actor, ErrNotAPlayer)
	}
	if r.log.HasFolded(actor) {
		return e.reject("record action", id, actor, ErrAlreadyFolded)
	}
	recorded, err := checkAmount(typ, amount)
	if err != nil {
		return e.reject("record action", id, actor, err)
	}

	now := e.clock.Now()
	r.log.Append(Action{Player: actor, Type: typ, Amount: recorded, Timestamp: now})

	e.logger.Debug().
		Uint64("room", uint64(id)).
		Str("actor", string(actor)).
		Stringer("action", typ).
		Uint64("amount", uint64(recorded)).
		Msg("Action recorded")
	e.sink.OnEvent(Event{Kind: EventActionRecorded, Room: id, Actor: actor, Action: typ, Amount: recorded, At: now})
	return nil
}

// Vote records voter's choice of winner. Each active member votes at most once; the
// candidate is not checked until finalize.
func (e *Engine) Vote(ctx context.Context, id RoomID, voter, candidate Actor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r, err := e.lookup(id)
	if err != nil {
		return e.reject("vote", id, voter, err)
	}
	if r.state != StateStarted {
		return e.reject("vote", id, voter, ErrRoomNotStarted)
	}
	if !r.isMember(voter) {
		return e.reject("vote", id, voter, ErrNotAPlayer)
	}
	if r.log.HasFolded(voter) {
		return e.reject("vote", id, voter, ErrFoldedCannotVote)
	}
	if !r.tally.Cast(voter, candidate) {
		return e.reject("vote", id, voter, ErrAlreadyVoted)
	}

	e.logger.Debug().
		Uint64("room", uint64(id)).
		Str("voter", string(voter)).
		Str("candidate", string(candidate)).
		Int("votes", r.tally.Votes(candidate)).
		Msg("Vote cast")
	e.sink.OnEvent(Event{Kind: EventVoteCast, Room: id, Actor: voter, Candidate: candidate, At: e.clock.Now()})
	return nil
}
