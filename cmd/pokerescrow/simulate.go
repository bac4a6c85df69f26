package main

import (
	"context"
	"os"
	"time"

	"github.com/lox/pokerescrow/cmd/pokerescrow/shared"
	"github.com/lox/pokerescrow/internal/history"
	"github.com/lox/pokerescrow/internal/reputation"
	"github.com/lox/pokerescrow/internal/simulator"
	"github.com/lox/pokerescrow/internal/storage"
)

// SimulateCmd plays rounds against an in-process engine and prints a report
type SimulateCmd struct {
	Players      int     `kong:"default='5',help='Participants at the table'"`
	Rounds       int     `kong:"default='10',help='Rounds to play'"`
	BuyIn        uint64  `kong:"name='buy-in',default='100',help='Buy-in per round'"`
	Seed         *int64  `kong:"help='Deterministic RNG seed (optional)'"`
	FoldChance   float64 `kong:"name='fold-chance',default='0.25',help='Probability that a player folds'"`
	Noisy        int     `kong:"default='-1',help='Self-voting participants (-1 picks from table size)'"`
	Policy       string  `kong:"default='voter_accuracy',enum='participation,voter_accuracy',help='Reputation scoring policy'"`
	BanThreshold int64   `kong:"name='ban-threshold',default='-3',help='Scores below this are refused at join'"`
	NoAdmission  bool    `kong:"name='no-admission',help='Disable reputation-gated joins'"`
	Database     string  `kong:"help='Persist reputation to this SQLite file instead of memory'"`
	HistoryDir   string  `kong:"name='history-dir',help='Write settled rounds to this directory'"`
	NoColor      bool    `kong:"name='no-color',help='Disable colored output'"`
	Debug        bool    `kong:"help='Enable debug logging'"`
}

func (c *SimulateCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)
	configureColor(c.NoColor)

	scoring, err := reputation.NewScoring(reputation.PolicyConfig{
		Policy:       c.Policy,
		MemberCredit: reputation.DefaultParticipation().MemberCredit,
		WinnerBonus:  reputation.DefaultParticipation().WinnerBonus,
		CorrectVote:  reputation.DefaultVoterAccuracy().Correct,
		WrongVote:    reputation.DefaultVoterAccuracy().Wrong,
	})
	if err != nil {
		return err
	}

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}
	logger.Info().Int64("seed", seed).Msg("Using seed")

	var store reputation.Store = reputation.NewMemoryStore()
	if c.Database != "" {
		db, err := storage.Open(c.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		store = db
	}

	cfg := simulator.Config{
		Players:     c.Players,
		Rounds:      c.Rounds,
		BuyIn:       c.BuyIn,
		Seed:        seed,
		FoldChance:  c.FoldChance,
		NoisyVoters: c.Noisy,
		Scoring:     scoring,
		Admission:   reputation.Admission{Enabled: !c.NoAdmission, BanThreshold: c.BanThreshold},
		Logger:      logger,
	}

	var manager *history.Manager
	if c.HistoryDir != "" {
		manager = history.NewManager(logger, history.ManagerConfig{BaseDir: c.HistoryDir})
		monitor, err := manager.CreateMonitor("")
		if err != nil {
			manager.Shutdown()
			return err
		}
		cfg.Sink = monitor
	}

	report, err := simulator.Run(context.Background(), cfg, store)
	if manager != nil {
		manager.Shutdown()
	}
	if err != nil {
		return err
	}

	renderSimulation(os.Stdout, report)
	return nil
}
