package history

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/lox/pokerescrow/internal/escrow"
)

// RoundFromSettlement converts a settlement receipt into a journal record. Actions
// and ballots refer to players by position ("p1" is the first to join).
func RoundFromSettlement(s *escrow.Settlement) Round {
	players := make([]string, len(s.Players))
	for i, p := range s.Players {
		players[i] = string(p)
	}

	r := Round{
		Room:       uint64(s.Room.ID),
		Creator:    string(s.Room.Creator),
		BuyIn:      uint64(s.Room.Config.BuyIn),
		SmallBlind: uint64(s.Room.Config.SmallBlind),
		BigBlind:   uint64(s.Room.Config.BigBlind),
		MaxPlayers: s.Room.Config.MaxPlayers,
		Players:    players,
		Actions:    make([]string, 0, len(s.Actions)),
		Ballots:    make([]string, 0, len(s.Ballots)),
		Winner:     string(s.Winner),
		Payout:     uint64(s.Payout),
		Votes:      s.Votes,
		Active:     s.Active,
		CreatedAt:  s.Room.CreatedAt.UTC(),
		SettledAt:  s.Room.SettledAt.UTC(),
	}
	for _, a := range s.Actions {
		r.Actions = append(r.Actions, FormatAction(seatRef(players, string(a.Player)), a.Type, uint64(a.Amount)))
	}
	for _, b := range s.Ballots {
		r.Ballots = append(r.Ballots, FormatBallot(seatRef(players, string(b.Voter)), seatRef(players, string(b.Candidate))))
	}
	for _, d := range s.Deltas {
		if d.Change != 0 {
			r.Reputation = append(r.Reputation, FormatDelta(seatRef(players, d.Actor), d.Change))
		}
	}
	return r
}

// seatRef returns "pN" for a member and the raw identifier otherwise.
func seatRef(players []string, actor string) string {
	if i := slices.Index(players, actor); i >= 0 {
		return "p" + strconv.Itoa(i+1)
	}
	return actor
}

// FormatAction renders "p2 bet 20"; fold and check omit the amount.
func FormatAction(who string, t escrow.ActionType, amount uint64) string {
	switch t {
	case escrow.ActionFold, escrow.ActionCheck:
		return fmt.Sprintf("%s %s", who, t)
	default:
		return fmt.Sprintf("%s %s %d", who, t, amount)
	}
}

// FormatBallot renders "p1 votes p2".
func FormatBallot(voter, candidate string) string {
	return voter + " votes " + candidate
}

// FormatDelta renders "p1 +2" or "p3 -1".
func FormatDelta(who string, change int64) string {
	return fmt.Sprintf("%s %+d", who, change)
}

// ParseAction is the inverse of FormatAction.
func ParseAction(raw string) (who string, t escrow.ActionType, amount uint64, err error) {
	parts := strings.Fields(raw)
	if len(parts) < 2 || len(parts) > 3 {
		return "", 0, 0, fmt.Errorf("invalid action %q", raw)
	}
	t, err = escrow.ParseActionType(parts[1])
	if err != nil {
		return "", 0, 0, err
	}
	if len(parts) == 3 {
		amount, err = strconv.ParseUint(parts[2], 10, 64)
		if err != nil {
			return "", 0, 0, fmt.Errorf("invalid amount in %q", raw)
		}
	}
	return parts[0], t, amount, nil
}

// ResolveRef maps a "pN" reference back to the player identifier.
func (r Round) ResolveRef(ref string) string {
	if strings.HasPrefix(ref, "p") {
		if n, err := strconv.Atoi(ref[1:]); err == nil && n >= 1 && n <= len(r.Players) {
			return r.Players[n-1]
		}
	}
	return ref
}
