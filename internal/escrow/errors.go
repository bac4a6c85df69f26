package escrow

import "errors"

// Code names a rejection reason. Codes are stable and safe to branch on.
type Code string

const (
	CodeNotFound                       Code = "not_found"
	CodeInvalidConfig                  Code = "invalid_config"
	CodeInvalidActor                   Code = "invalid_actor"
	CodeIncorrectBuyIn                 Code = "incorrect_buy_in"
	CodeAlreadyJoined                  Code = "already_joined"
	CodeRoomFull                       Code = "room_full"
	CodeReputationTooLow               Code = "reputation_too_low"
	CodeRoomNotJoinable                Code = "room_not_joinable"
	CodeRoomAlreadyStarted             Code = "room_already_started"
	CodeOnlyCreator                    Code = "only_creator"
	CodeNotEnoughPlayers               Code = "not_enough_players"
	CodeRoomNotStarted                 Code = "room_not_started"
	CodeNotAPlayer                     Code = "not_a_player"
	CodeAlreadyFolded                  Code = "already_folded"
	CodeInvalidActionAmount            Code = "invalid_action_amount"
	CodeFoldedCannotVote               Code = "folded_cannot_vote"
	CodeAlreadyVoted                   Code = "already_voted"
	CodeRoomAlreadySettledOrNotStarted Code = "room_already_settled_or_not_started"
	CodeOnlyCreatorCanFinalize         Code = "only_creator_can_finalize"
	CodeCandidateFolded                Code = "candidate_folded"
	CodeNoMajority                     Code = "no_majority"
)

// Error is a precondition violation. Two errors match under errors.Is when their
// codes are equal, whatever the reason text.
type Error struct {
	Code   Code
	Reason string
}

func newError(code Code, reason string) *Error {
	return &Error{Code: code, Reason: reason}
}

func (e *Error) Error() string { return e.Reason }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrNotFound                       = newError(CodeNotFound, "room not found")
	ErrInvalidConfig                  = newError(CodeInvalidConfig, "invalid room config")
	ErrInvalidActor                   = newError(CodeInvalidActor, "actor required")
	ErrIncorrectBuyIn                 = newError(CodeIncorrectBuyIn, "incorrect buy-in amount")
	ErrAlreadyJoined                  = newError(CodeAlreadyJoined, "already joined")
	ErrRoomFull                       = newError(CodeRoomFull, "room full")
	ErrReputationTooLow               = newError(CodeReputationTooLow, "reputation too low")
	ErrRoomNotJoinable                = newError(CodeRoomNotJoinable, "room not joinable")
	ErrRoomAlreadyStarted             = newError(CodeRoomAlreadyStarted, "room already started")
	ErrOnlyCreator                    = newError(CodeOnlyCreator, "only creator can start")
	ErrNotEnoughPlayers               = newError(CodeNotEnoughPlayers, "not enough players")
	ErrRoomNotStarted                 = newError(CodeRoomNotStarted, "room not started")
	ErrNotAPlayer                     = newError(CodeNotAPlayer, "not a player")
	ErrAlreadyFolded                  = newError(CodeAlreadyFolded, "already folded")
	ErrInvalidActionAmount            = newError(CodeInvalidActionAmount, "invalid action amount")
	ErrFoldedCannotVote               = newError(CodeFoldedCannotVote, "folded player cannot vote")
	ErrAlreadyVoted                   = newError(CodeAlreadyVoted, "already voted")
	ErrRoomAlreadySettledOrNotStarted = newError(CodeRoomAlreadySettledOrNotStarted, "room already settled or not started")
	ErrOnlyCreatorCanFinalize         = newError(CodeOnlyCreatorCanFinalize, "only creator can finalize")
	ErrCandidateFolded                = newError(CodeCandidateFolded, "candidate folded")
	ErrNoMajority                     = newError(CodeNoMajority, "no majority for candidate")
)

// CodeOf returns the rejection code carried by err, or "" when err is not a
// precondition violation (for example a reputation store failure).
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// ReasonOf returns the human-readable rejection reason carried by err.
func ReasonOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
