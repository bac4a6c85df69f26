// Package history journals settled rounds to sectioned TOML files.
package history

import (
	"time"

	"github.com/coder/quartz"
)

const (
	defaultFilename      = "rounds.toml"
	defaultFlushInterval = 10 * time.Second
	defaultFlushRounds   = 10
	maxFlushFailures     = 3
)

// Round is one settled room as written to the journal.
type Round struct {
	Room       uint64    `toml:"room"`
	Creator    string    `toml:"creator"`
	BuyIn      uint64    `toml:"buy_in"`
	SmallBlind uint64    `toml:"small_blind"`
	BigBlind   uint64    `toml:"big_blind"`
	MaxPlayers int       `toml:"max_players"`
	Players    []string  `toml:"players"`
	Actions    []string  `toml:"actions"`
	Ballots    []string  `toml:"ballots"`
	Winner     string    `toml:"winner"`
	Payout     uint64    `toml:"payout"`
	Votes      int       `toml:"votes"`
	Active     int       `toml:"active"`
	Reputation []string  `toml:"reputation,omitempty"`
	CreatedAt  time.Time `toml:"created_at"`
	SettledAt  time.Time `toml:"settled_at"`
}

// MonitorConfig configures a journal writer.
type MonitorConfig struct {
	Name        string
	OutputDir   string
	Filename    string
	FlushRounds int
}

// ManagerConfig configures the server-wide manager.
type ManagerConfig struct {
	BaseDir       string
	FlushInterval time.Duration
	FlushRounds   int
	Clock         quartz.Clock
}
