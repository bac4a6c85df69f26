package escrow

import "time"

// EventKind names a room notification.
type EventKind string

const (
	EventRoomCreated    EventKind = "room_created"
	EventPlayerJoined   EventKind = "player_joined"
	EventJoinRejected   EventKind = "join_rejected"
	EventRoomStarted    EventKind = "room_started"
	EventActionRecorded EventKind = "action_recorded"
	EventVoteCast       EventKind = "vote_cast"
	EventRoomSettled    EventKind = "room_settled"
)

func (k EventKind) String() string { return string(k) }

// Event is emitted after a state change, except EventJoinRejected which reports a
// reputation-gated rejection (the auto-ban outcome) and changes nothing.
type Event struct {
	Kind       EventKind
	Room       RoomID
	Actor      Actor
	Amount     Amount
	Action     ActionType
	Candidate  Actor
	Reason     string
	At         time.Time
	Settlement *Settlement
}

// EventSink receives engine events synchronously. Sinks must not call back into
// the engine's mutating operations.
type EventSink interface {
	OnEvent(e Event)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(e Event)

func (f SinkFunc) OnEvent(e Event) { f(e) }

// MultiSink fans events out to several sinks in order.
type MultiSink []EventSink

func (m MultiSink) OnEvent(e Event) {
	for _, s := range m {
		if s != nil {
			s.OnEvent(e)
		}
	}
}

type discardSink struct{}

func (discardSink) OnEvent(Event) {}
