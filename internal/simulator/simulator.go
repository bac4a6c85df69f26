// Package simulator plays scripted escrow rounds against an in-process engine so
// reputation drift and admission bans can be observed without a network.
package simulator

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"slices"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/pokerescrow/internal/escrow"
	"github.com/lox/pokerescrow/internal/randutil"
	"github.com/lox/pokerescrow/internal/reputation"
)

// Config holds configuration for a simulation run.
type Config struct {
	Players    int
	Rounds     int
	BuyIn      uint64
	Seed       int64
	FoldChance float64
	// NoisyVoters is the number of participants who always vote for themselves.
	// A negative value picks a count from the table size.
	NoisyVoters int
	Scoring     reputation.Scoring
	Admission   reputation.Admission
	Sink        escrow.EventSink
	Clock       quartz.Clock
	Logger      zerolog.Logger
}

// DefaultConfig returns a five-player, ten-round run under voter-accuracy scoring
// with admission enabled.
func DefaultConfig() Config {
	return Config{
		Players:     5,
		Rounds:      10,
		BuyIn:       100,
		FoldChance:  0.25,
		NoisyVoters: -1,
		Scoring:     reputation.DefaultVoterAccuracy(),
		Admission:   reputation.Admission{Enabled: true, BanThreshold: reputation.DefaultBanThreshold},
		Logger:      zerolog.Nop(),
	}
}

// Validate reports whether the config can be run.
func (c Config) Validate() error {
	if c.Players < escrow.MinPlayers {
		return fmt.Errorf("simulator: need at least %d players", escrow.MinPlayers)
	}
	if c.Rounds < 1 {
		return errors.New("simulator: rounds must be positive")
	}
	if c.BuyIn == 0 {
		return errors.New("simulator: buy-in must be positive")
	}
	if c.FoldChance < 0 || c.FoldChance >= 1 {
		return errors.New("simulator: fold chance must be in [0, 1)")
	}
	if c.NoisyVoters >= c.Players {
		return errors.New("simulator: noisy voters must be fewer than players")
	}
	return nil
}

// RoundReport describes one simulated round.
type RoundReport struct {
	Room     uint64
	Creator  string
	Seated   []string
	Rejected []string
	Folded   []string
	Winner   string
	Votes    int
	Active   int
	Payout   uint64
	Settled  bool
	Reason   string
}

// Report is the outcome of a run.
type Report struct {
	Seed      int64
	Policy    string
	Noisy     []string
	Rounds    []RoundReport
	Standings []reputation.Entry
	Banned    []string
	Verified  bool
	Escrowed  uint64
}

// SettledRounds counts rounds that paid out.
func (r *Report) SettledRounds() int {
	n := 0
	for _, rr := range r.Rounds {
		if rr.Settled {
			n++
		}
	}
	return n
}

// NoisyCount returns the default number of self-voting participants at a table.
func NoisyCount(players int) int {
	switch {
	case players >= 5:
		return 2
	case players >= 3:
		return 1
	default:
		return 0
	}
}

// Participant returns the identifier used for seat i.
func Participant(i int) string {
	return fmt.Sprintf("player-%02d", i+1)
}

type simulation struct {
	cfg     Config
	engine  *escrow.Engine
	store   reputation.Store
	rng     *rand.Rand
	players []string
	noisy   map[string]bool
	logger  zerolog.Logger
}

// Run plays cfg.Rounds rounds. store receives the reputation changes and may
// already hold scores from earlier runs.
func Run(ctx context.Context, cfg Config, store reputation.Store) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Scoring == nil {
		cfg.Scoring = reputation.DefaultParticipation()
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if cfg.NoisyVoters < 0 {
		cfg.NoisyVoters = NoisyCount(cfg.Players)
	}

	opts := []escrow.Option{
		escrow.WithClock(cfg.Clock),
		escrow.WithScoring(cfg.Scoring),
		escrow.WithAdmission(cfg.Admission),
	}
	if cfg.Sink != nil {
		opts = append(opts, escrow.WithEventSink(cfg.Sink))
	}

	sim := &simulation{
		cfg:    cfg,
		engine: escrow.NewEngine(cfg.Logger, store, opts...),
		store:  store,
		rng:    randutil.New(cfg.Seed),
		noisy:  make(map[string]bool),
		logger: cfg.Logger.With().Str("component", "simulator").Logger(),
	}
	for i := range cfg.Players {
		sim.players = append(sim.players, Participant(i))
	}

	report := &Report{Seed: cfg.Seed, Policy: cfg.Scoring.Name()}
	for _, i := range randutil.PickDistinct(sim.rng, cfg.Players, cfg.NoisyVoters) {
		sim.noisy[sim.players[i]] = true
		report.Noisy = append(report.Noisy, sim.players[i])
	}
	slices.Sort(report.Noisy)

	for n := range cfg.Rounds {
		rr, err := sim.playRound(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", n+1, err)
		}
		report.Rounds = append(report.Rounds, rr)
	}

	standings, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	report.Standings = standings
	for _, p := range sim.players {
		score, err := store.Get(ctx, p)
		if err != nil {
			return nil, err
		}
		if !cfg.Admission.Admits(score) {
			report.Banned = append(report.Banned, p)
		}
	}

	book := sim.engine.Ledger()
	report.Verified = book.Verify() == nil
	for _, rr := range report.Rounds {
		report.Escrowed += book.Escrowed(rr.Room)
	}
	return report, nil
}

func (s *simulation) playRound(ctx context.Context, n int) (RoundReport, error) {
	creator := s.players[n%len(s.players)]
	buyIn := escrow.Amount(s.cfg.BuyIn)
	id, err := s.engine.CreateRoom(ctx, escrow.Actor(creator), escrow.RoomConfig{
		BuyIn:      buyIn,
		SmallBlind: buyIn / 100,
		BigBlind:   buyIn / 50,
		MaxPlayers: len(s.players),
	})
	if err != nil {
		return RoundReport{}, err
	}
	rr := RoundReport{Room: uint64(id), Creator: creator}

	for _, p := range s.players {
		err := s.engine.Join(ctx, id, escrow.Actor(p), buyIn)
		switch {
		case err == nil:
			rr.Seated = append(rr.Seated, p)
		case errors.Is(err, escrow.ErrReputationTooLow):
			rr.Rejected = append(rr.Rejected, p)
		default:
			return rr, err
		}
	}

	if err := s.engine.Start(ctx, id, escrow.Actor(creator)); err != nil {
		if escrow.CodeOf(err) == escrow.CodeNotEnoughPlayers {
			rr.Reason = escrow.ReasonOf(err)
			return rr, nil
		}
		return rr, err
	}

	active := s.playActions(ctx, id, &rr)
	if len(active) == 0 {
		return rr, errors.New("no active players")
	}
	winner := active[s.rng.IntN(len(active))]
	rr.Winner = winner

	for _, p := range active {
		candidate := winner
		if s.noisy[p] {
			candidate = p
		}
		if err := s.engine.Vote(ctx, id, escrow.Actor(p), escrow.Actor(candidate)); err != nil {
			return rr, err
		}
	}

	settlement, err := s.engine.Finalize(ctx, id, escrow.Actor(creator), escrow.Actor(winner))
	if err != nil {
		if escrow.CodeOf(err) == escrow.CodeNoMajority {
			rr.Reason = escrow.ReasonOf(err)
			s.logger.Debug().Uint64("room", rr.Room).Msg("Round ended without majority")
			return rr, nil
		}
		return rr, err
	}
	rr.Settled = true
	rr.Votes = settlement.Votes
	rr.Active = settlement.Active
	rr.Payout = uint64(settlement.Payout)
	return rr, nil
}

// playActions records one action per seated player and returns those still
// active. At least one player always stays in.
func (s *simulation) playActions(ctx context.Context, id escrow.RoomID, rr *RoundReport) []string {
	var active []string
	for i, p := range rr.Seated {
		remaining := len(rr.Seated) - i
		canFold := len(active) > 0 || remaining > 1
		typ, amount := s.randomAction(canFold)
		if err := s.engine.RecordAction(ctx, id, escrow.Actor(p), typ, amount); err != nil {
			s.logger.Warn().Err(err).Str("player", p).Msg("Action rejected")
			continue
		}
		if typ == escrow.ActionFold {
			rr.Folded = append(rr.Folded, p)
			continue
		}
		active = append(active, p)
	}
	return active
}

func (s *simulation) randomAction(canFold bool) (escrow.ActionType, escrow.Amount) {
	if canFold && randutil.Chance(s.rng, s.cfg.FoldChance) {
		return escrow.ActionFold, 0
	}
	wager := escrow.Amount(s.rng.Uint64N(s.cfg.BuyIn) + 1)
	switch s.rng.IntN(5) {
	case 0:
		return escrow.ActionCheck, 0
	case 1:
		return escrow.ActionCall, wager
	case 2:
		return escrow.ActionBet, wager
	case 3:
		return escrow.ActionRaise, wager
	default:
		return escrow.ActionAllIn, escrow.Amount(s.cfg.BuyIn)
	}
}
