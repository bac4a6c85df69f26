package escrow

import (
	"context"
	"fmt"

	"github.com/lox/pokerescrow/internal/reputation"
)

// Finalize settles a Started room in favour of candidate. Candidate must be an active
// member holding a strict majority of the active players' votes. On success the
// whole pool is paid to candidate, reputation deltas are applied and the room is
// Settled. If the reputation store fails nothing changes.
func (e *Engine) Finalize(ctx context.Context, id RoomID, caller, candidate Actor) (Settlement, error) {
	if err := ctx.Err(); err != nil {
		return Settlement{}, err
	}
	r, err := e.lookup(id)
	if err != nil {
		return Settlement{}, e.reject("finalize", id, caller, err)
	}
	if r.state != StateStarted {
		return Settlement{}, e.reject("finalize", id, caller, ErrRoomAlreadySettledOrNotStarted)
	}
	if caller != r.creator {
		return Settlement{}, e.reject("finalize", id, caller, ErrOnlyCreatorCanFinalize)
	}
	if !r.isMember(candidate) {
		return Settlement{}, e.reject("finalize", id, caller, newError(CodeCandidateFolded, "candidate not a player"))
	}
	if r.log.HasFolded(candidate) {
		return Settlement{}, e.reject("finalize", id, caller, ErrCandidateFolded)
	}
	votes, active := r.tally.Votes(candidate), r.activeCount()
	if !HasMajority(votes, active) {
		return Settlement{}, e.reject("finalize", id, caller, ErrNoMajority)
	}

	payout := r.pool
	if held := e.book.Escrowed(uint64(id)); held != uint64(payout) {
		return Settlement{}, fmt.Errorf("finalize room %d: ledger holds %d, pool is %d", id, held, payout)
	}

	deltas := e.scoring.Score(roundOf(r, candidate))
	if err := e.reputation.Apply(ctx, deltas); err != nil {
		return Settlement{}, fmt.Errorf("finalize room %d: apply reputation: %w", id, err)
	}

	now := e.clock.Now()
	if _, err := e.book.Payout(uint64(id), string(candidate), uint64(payout), now); err != nil {
		// Only reachable when another writer shares the book.
		return Settlement{}, fmt.Errorf("finalize room %d: %w", id, err)
	}
	r.state = StateSettled
	r.winner = candidate
	r.pool = 0
	r.settledAt = now

	s := Settlement{
		Room:    r.view(),
		Winner:  candidate,
		Payout:  payout,
		Votes:   votes,
		Active:  active,
		Players: r.playersCopy(),
		Actions: r.log.Records(),
		Ballots: r.tally.Ballots(),
		Deltas:  deltas,
	}

	e.logger.Info().
		Uint64("room", uint64(id)).
		Str("winner", string(candidate)).
		Uint64("payout", uint64(payout)).
		Int("votes", votes).
		Int("active", active).
		Str("policy", e.scoring.Name()).
		Msg("Room settled")
	e.sink.OnEvent(Event{Kind: EventRoomSettled, Room: id, Actor: caller, Candidate: candidate, Amount: payout, At: now, Settlement: &s})
	return s, nil
}

func roundOf(r *room, winner Actor) reputation.Round {
	round := reputation.Round{
		Members: make([]string, len(r.members)),
		Winner:  string(winner),
	}
	for i, m := range r.members {
		round.Members[i] = string(m)
	}
	for _, b := range r.tally.Ballots() {
		round.Ballots = append(round.Ballots, reputation.Ballot{Voter: string(b.Voter), Candidate: string(b.Candidate)})
	}
	return round
}
