package protocol

//go:generate msgp -io=false -tests=false

import (
	"strconv"
	"strings"
)

// Message types carried in the "type" field of every frame.
const (
	// Client -> Server
	TypeIntent = "intent"

	// Server -> Client
	TypeResult = "result"
	TypeEvent  = "event"
	TypeError  = "error"
)

// Intent operations.
const (
	OpCreateRoom   = "create_room"
	OpJoinRoom     = "join_room"
	OpStartRoom    = "start_room"
	OpRecordAction = "record_action"
	OpVoteWinner   = "vote_winner"
	OpFinalize     = "finalize"
	OpWatch        = "watch"
)

// Ops lists every intent operation.
var Ops = []string{OpCreateRoom, OpJoinRoom, OpStartRoom, OpRecordAction, OpVoteWinner, OpFinalize, OpWatch}

// Client -> Server Messages

// Intent asks the server to perform one escrow operation on behalf of Actor.
// Fields unused by the operation are left zero.
type Intent struct {
	Type       string `msg:"type" json:"type,omitempty"`
	RequestID  string `msg:"request_id" json:"request_id,omitempty"`
	Op         string `msg:"op" json:"op"`
	Actor      string `msg:"actor" json:"actor,omitempty"`
	PublicKey  string `msg:"public_key" json:"public_key,omitempty"`
	Nonce      uint64 `msg:"nonce" json:"nonce"`
	Signature  []byte `msg:"signature" json:"signature,omitempty"`
	Room       uint64 `msg:"room" json:"room"`
	BuyIn      uint64 `msg:"buy_in" json:"buy_in,omitempty"`
	SmallBlind uint64 `msg:"small_blind" json:"small_blind,omitempty"`
	BigBlind   uint64 `msg:"big_blind" json:"big_blind,omitempty"`
	MaxPlayers int    `msg:"max_players" json:"max_players,omitempty"`
	Amount     uint64 `msg:"amount" json:"amount,omitempty"`
	Action     string `msg:"action" json:"action,omitempty"`
	Candidate  string `msg:"candidate" json:"candidate,omitempty"`
}

// SigningPayload is the byte string an actor signs. It covers every field that
// affects the operation, plus the nonce, and excludes the request id and the
// signature itself.
func (i *Intent) SigningPayload() []byte {
	fields := []string{
		"pokerescrow/v1",
		i.Op,
		strings.ToLower(i.Actor),
		strconv.FormatUint(i.Nonce, 10),
		strconv.FormatUint(i.Room, 10),
		strconv.FormatUint(i.BuyIn, 10),
		strconv.FormatUint(i.SmallBlind, 10),
		strconv.FormatUint(i.BigBlind, 10),
		strconv.Itoa(i.MaxPlayers),
		strconv.FormatUint(i.Amount, 10),
		i.Action,
		i.Candidate,
	}
	return []byte(strings.Join(fields, "|"))
}

// Server -> Client Messages

// Result answers one Intent. Code and Reason are set when OK is false.
type Result struct {
	Type      string `msg:"type" json:"type"`
	RequestID string `msg:"request_id" json:"request_id,omitempty"`
	OK        bool   `msg:"ok" json:"ok"`
	Code      string `msg:"code" json:"code,omitempty"`
	Reason    string `msg:"reason" json:"reason,omitempty"`
	Room      uint64 `msg:"room" json:"room"`
	Actor     string `msg:"actor" json:"actor,omitempty"`
}

// Event notifies watchers of a change to a room.
type Event struct {
	Type      string `msg:"type" json:"type"`
	Kind      string `msg:"kind" json:"kind"`
	Room      uint64 `msg:"room" json:"room"`
	Actor     string `msg:"actor" json:"actor,omitempty"`
	Amount    uint64 `msg:"amount" json:"amount,omitempty"`
	Action    string `msg:"action" json:"action,omitempty"`
	Candidate string `msg:"candidate" json:"candidate,omitempty"`
	Reason    string `msg:"reason" json:"reason,omitempty"`
	At        int64  `msg:"at" json:"at"` // unix nanoseconds
}

// Error reports a frame the server could not process at all.
type Error struct {
	Type    string `msg:"type" json:"type"`
	Code    string `msg:"code" json:"code"`
	Message string `msg:"message" json:"message"`
}
