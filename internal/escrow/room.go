package escrow

import "time"

type room struct {
	id        RoomID
	config    RoomConfig
	creator   Actor
	state     State
	members   []Actor
	joined    map[Actor]struct{}
	pool      Amount
	winner    Actor
	createdAt time.Time
	settledAt time.Time
	log       *ActionLog
	tally     *Tally
}

func newRoom(id RoomID, creator Actor, cfg RoomConfig, now time.Time) *room {
	return &room{
		id:        id,
		config:    cfg,
		creator:   creator,
		state:     StateOpen,
		joined:    make(map[Actor]struct{}),
		createdAt: now,
		log:       NewActionLog(),
		tally:     NewTally(),
	}
}

func (r *room) isMember(a Actor) bool {
	_, ok := r.joined[a]
	return ok
}

func (r *room) activeCount() int {
	return len(r.members) - r.log.FoldedCount()
}

func (r *room) addMember(a Actor, paid Amount) {
	r.joined[a] = struct{}{}
	r.members = append(r.members, a)
	r.pool += paid
}

func (r *room) playersCopy() []Actor {
	out := make([]Actor, len(r.members))
	copy(out, r.members)
	return out
}

func (r *room) view() RoomView {
	return RoomView{
		ID:          r.id,
		Creator:     r.creator,
		Config:      r.config,
		PlayerCount: len(r.members),
		TotalPool:   r.pool,
		State:       r.state,
		Started:     r.state != StateOpen,
		Settled:     r.state == StateSettled,
		Winner:      r.winner,
		CreatedAt:   r.createdAt,
		SettledAt:   r.settledAt,
	}
}

// checkAmount validates an action amount, returning the amount to record.
func checkAmount(t ActionType, amount Amount) (Amount, error) {
	switch t {
	case ActionFold:
		return 0, nil
	case ActionCheck:
		if amount != 0 {
			return 0, newError(CodeInvalidActionAmount, "amount must be 0 for check")
		}
		return 0, nil
	case ActionCall, ActionBet, ActionRaise, ActionAllIn:
		if amount == 0 {
			return 0, newError(CodeInvalidActionAmount, "amount must be > 0 for this action")
		}
		return amount, nil
	default:
		return 0, newError(CodeInvalidActionAmount, "unknown action type")
	}
}
