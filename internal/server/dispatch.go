package server

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/lox/pokerescrow/internal/escrow"
	"github.com/lox/pokerescrow/internal/identity"
	"github.com/lox/pokerescrow/internal/protocol"
)

// Result codes produced by the transport layer rather than the engine.
const (
	CodeBadRequest   = "bad_request"
	CodeUnauthorized = "unauthorized"
	CodeStaleNonce   = "stale_nonce"
	CodeUnavailable  = "unavailable"
	CodeInternal     = "internal"
)

// execute authenticates an intent and applies it through the sequencer.
func (s *Server) execute(ctx context.Context, in *protocol.Intent) protocol.Result {
	res := protocol.Result{Type: protocol.TypeResult, RequestID: in.RequestID, Room: in.Room}

	if !slices.Contains(protocol.Ops, in.Op) || in.Op == protocol.OpWatch {
		return fail(res, CodeBadRequest, "unsupported op "+in.Op)
	}
	var action escrow.ActionType
	if in.Op == protocol.OpRecordAction {
		a, err := escrow.ParseActionType(in.Action)
		if err != nil {
			return fail(res, CodeBadRequest, err.Error())
		}
		action = a
	}

	actor, err := s.verifier.Verify(identity.Claim{
		Actor:     in.Actor,
		PublicKey: in.PublicKey,
		Signature: in.Signature,
		Payload:   in.SigningPayload(),
	})
	if err != nil {
		s.logger.Debug().Err(err).Str("op", in.Op).Str("actor", in.Actor).Msg("Intent rejected")
		return fail(res, CodeUnauthorized, err.Error())
	}
	actor = strings.ToLower(actor)
	res.Actor = actor

	err = s.seq.Do(ctx, func(e *escrow.Engine) error {
		if err := s.nonces.accept(actor, in.Nonce); err != nil {
			return err
		}
		return s.apply(ctx, e, in, escrow.Actor(actor), action, &res)
	})
	if err != nil {
		return s.failFromError(res, err)
	}
	res.OK = true
	return res
}

func (s *Server) apply(ctx context.Context, e *escrow.Engine, in *protocol.Intent, actor escrow.Actor, action escrow.ActionType, res *protocol.Result) error {
	room := escrow.RoomID(in.Room)
	switch in.Op {
	case protocol.OpCreateRoom:
		id, err := e.CreateRoom(ctx, actor, roomConfigOf(in))
		if err != nil {
			return err
		}
		res.Room = uint64(id)
		return nil
	case protocol.OpJoinRoom:
		return e.Join(ctx, room, actor, escrow.Amount(in.Amount))
	case protocol.OpStartRoom:
		return e.Start(ctx, room, actor)
	case protocol.OpRecordAction:
		return e.RecordAction(ctx, room, actor, action, escrow.Amount(in.Amount))
	case protocol.OpVoteWinner:
		return e.Vote(ctx, room, actor, escrow.Actor(strings.ToLower(in.Candidate)))
	case protocol.OpFinalize:
		_, err := e.Finalize(ctx, room, actor, escrow.Actor(strings.ToLower(in.Candidate)))
		return err
	}
	return nil
}

// roomConfigOf reads the room parameters of a create_room intent. An intent with
// only a buy-in gets the quick config.
func roomConfigOf(in *protocol.Intent) escrow.RoomConfig {
	if in.SmallBlind == 0 && in.BigBlind == 0 && in.MaxPlayers == 0 {
		return escrow.QuickConfig(escrow.Amount(in.BuyIn))
	}
	return escrow.RoomConfig{
		BuyIn:      escrow.Amount(in.BuyIn),
		SmallBlind: escrow.Amount(in.SmallBlind),
		BigBlind:   escrow.Amount(in.BigBlind),
		MaxPlayers: in.MaxPlayers,
	}
}

func (s *Server) failFromError(res protocol.Result, err error) protocol.Result {
	if code := escrow.CodeOf(err); code != "" {
		return fail(res, string(code), escrow.ReasonOf(err))
	}
	switch {
	case errors.Is(err, ErrStaleNonce):
		return fail(res, CodeStaleNonce, err.Error())
	case errors.Is(err, ErrSequencerStopped), errors.Is(err, context.Canceled):
		return fail(res, CodeUnavailable, err.Error())
	}
	s.logger.Error().Err(err).Str("request_id", res.RequestID).Msg("Intent failed")
	return fail(res, CodeInternal, "internal error")
}

func fail(res protocol.Result, code, reason string) protocol.Result {
	res.OK = false
	res.Code = code
	res.Reason = reason
	return res
}
