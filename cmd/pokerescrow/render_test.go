package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lox/pokerescrow/internal/history"
	"github.com/lox/pokerescrow/internal/reputation"
	"github.com/lox/pokerescrow/internal/simulator"
)

func TestRenderSimulation(t *testing.T) {
	configureColor(true)

	report := &simulator.Report{
		Seed:   7,
		Policy: reputation.PolicyVoterAccuracy,
		Noisy:  []string{"player-04"},
		Rounds: []simulator.RoundReport{
			{Room: 1, Creator: "player-00", Seated: []string{"player-00", "player-01"}, Winner: "player-01", Votes: 2, Active: 2, Payout: 200, Settled: true},
			{Room: 2, Creator: "player-01", Seated: []string{"player-01"}, Rejected: []string{"player-04"}, Reason: "not enough players"},
		},
		Standings: []reputation.Entry{{Actor: "player-01", Score: 2}, {Actor: "player-04", Score: -4}},
		Banned:    []string{"player-04"},
		Verified:  true,
	}

	var buf bytes.Buffer
	renderSimulation(&buf, report)
	out := buf.String()

	assert.Contains(t, out, "Simulation (seed 7, policy voter_accuracy)")
	assert.Contains(t, out, "Noisy voters: player-04")
	assert.Contains(t, out, "settled: player-01 takes 200 (2/2 votes)")
	assert.Contains(t, out, "rejected: player-04")
	assert.Contains(t, out, "unsettled: not enough players")
	assert.Contains(t, out, "player-04 (banned)")
	assert.Contains(t, out, "Settled 1/2 rounds, 0 still escrowed, ledger verified")
}

func TestRenderRound(t *testing.T) {
	configureColor(true)

	r := history.Round{
		Room:       3,
		BuyIn:      50,
		Players:    []string{"alice", "bob"},
		Actions:    []string{"p1 bet 10", "p2 fold"},
		Ballots:    []string{"p1 votes p1"},
		Winner:     "p1",
		Payout:     100,
		Votes:      1,
		Active:     1,
		Reputation: []string{"p1 +1"},
		SettledAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	var buf bytes.Buffer
	renderRound(&buf, 1, r)
	out := buf.String()

	assert.Contains(t, out, "#1  Room 3")
	assert.Contains(t, out, "settled 2026-01-02 03:04:05")
	assert.Contains(t, out, "p2  bob")
	assert.Contains(t, out, "actions: p1 bet 10, p2 fold")
	assert.Contains(t, out, "winner: alice takes 100 (1/1 votes)")
	assert.Contains(t, out, "reputation: p1 +1")
}
