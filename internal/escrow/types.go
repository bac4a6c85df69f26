package escrow

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/lox/pokerescrow/internal/reputation"
)

// RoomID identifies a room. IDs are allocated sequentially, from zero unless
// the engine was given WithFirstRoomID.
type RoomID uint64

// Actor is a participant identity (an address derived from the actor's key).
type Actor string

// Amount is a monetary value in base units.
type Amount uint64

// DefaultMaxPlayers is the seat count used by QuickConfig.
const DefaultMaxPlayers = 10

// MinPlayers is the membership required to start a room.
const MinPlayers = 2

// RoomConfig is fixed when the room is created.
type RoomConfig struct {
	BuyIn      Amount `json:"buy_in"`
	SmallBlind Amount `json:"small_blind"`
	BigBlind   Amount `json:"big_blind"`
	MaxPlayers int    `json:"max_players"`
}

// QuickConfig returns a config with only a buy-in, for rooms created without
// blind or seat parameters.
func QuickConfig(buyIn Amount) RoomConfig {
	return RoomConfig{BuyIn: buyIn, MaxPlayers: DefaultMaxPlayers}
}

// Validate reports whether the config can back a room.
func (c RoomConfig) Validate() error {
	if c.BuyIn == 0 {
		return newError(CodeInvalidConfig, "buy-in must be positive")
	}
	if c.MaxPlayers < MinPlayers {
		return newError(CodeInvalidConfig, fmt.Sprintf("max players must be at least %d", MinPlayers))
	}
	// The pool can never exceed BuyIn*MaxPlayers, so this bound keeps it in range.
	if uint64(c.BuyIn) > math.MaxUint64/uint64(c.MaxPlayers) {
		return newError(CodeInvalidConfig, "buy-in too large for max players")
	}
	return nil
}

// State is a room lifecycle state.
type State uint8

const (
	StateOpen State = iota
	StateStarted
	StateSettled
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateStarted:
		return "started"
	case StateSettled:
		return "settled"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// ActionType is the kind of a recorded player action. Values are stable on the wire.
type ActionType uint8

const (
	ActionFold ActionType = iota
	ActionCheck
	ActionCall
	ActionBet
	ActionRaise
	ActionAllIn
)

var actionNames = [...]string{"fold", "check", "call", "bet", "raise", "allin"}

func (a ActionType) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// Valid reports whether a is a known action type.
func (a ActionType) Valid() bool {
	return int(a) < len(actionNames)
}

// ParseActionType accepts the lower-case action names ("all-in" and "all_in" too).
func ParseActionType(s string) (ActionType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.NewReplacer("-", "", "_", "").Replace(name)
	for i, n := range actionNames {
		if n == name {
			return ActionType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown action type %q", s)
}

// Action is one entry of a room's action log.
type Action struct {
	Player    Actor      `json:"player"`
	Type      ActionType `json:"action_type"`
	Amount    Amount     `json:"amount"`
	Timestamp time.Time  `json:"timestamp"`
}

// Ballot is a recorded vote.
type Ballot struct {
	Voter     Actor `json:"voter"`
	Candidate Actor `json:"candidate"`
}

// RoomView is a read-only snapshot of a room.
type RoomView struct {
	ID          RoomID     `json:"id"`
	Creator     Actor      `json:"creator"`
	Config      RoomConfig `json:"config"`
	PlayerCount int        `json:"player_count"`
	TotalPool   Amount     `json:"total_pool"`
	State       State      `json:"-"`
	Started     bool       `json:"started"`
	Settled     bool       `json:"settled"`
	Winner      Actor      `json:"winner,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	SettledAt   time.Time  `json:"settled_at,omitzero"`
}

// Settlement is the receipt of a successful finalize.
type Settlement struct {
	Room    RoomView           `json:"room"`
	Winner  Actor              `json:"winner"`
	Payout  Amount             `json:"payout"`
	Votes   int                `json:"votes"`
	Active  int                `json:"active"`
	Players []Actor            `json:"players"`
	Actions []Action           `json:"actions"`
	Ballots []Ballot           `json:"ballots"`
	Deltas  []reputation.Delta `json:"deltas"`
}
