package server

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"

	"github.com/lox/pokerescrow/internal/reputation"
)

// FileConfig represents the complete server configuration file
type FileConfig struct {
	Server     *ServerSettings     `hcl:"server,block"`
	Reputation *ReputationSettings `hcl:"reputation,block"`
	History    *HistorySettings    `hcl:"history,block"`
}

// ServerSettings contains listener and storage configuration
type ServerSettings struct {
	Address           string `hcl:"address,optional"`
	Port              int    `hcl:"port,optional"`
	LogLevel          string `hcl:"log_level,optional"`
	Database          string `hcl:"database,optional"`
	RequireSignatures *bool  `hcl:"require_signatures,optional"`
}

// ReputationSettings selects the settlement scoring policy and join admission
type ReputationSettings struct {
	Policy       string `hcl:"policy,optional"`
	MemberCredit *int64 `hcl:"member_credit,optional"`
	WinnerBonus  *int64 `hcl:"winner_bonus,optional"`
	CorrectVote  *int64 `hcl:"correct_vote,optional"`
	WrongVote    *int64 `hcl:"wrong_vote,optional"`
	Admission    bool   `hcl:"admission,optional"`
	BanThreshold *int64 `hcl:"ban_threshold,optional"`
}

// HistorySettings configures the settled-round journal
type HistorySettings struct {
	Dir           string `hcl:"dir,optional"`
	FlushInterval string `hcl:"flush_interval,optional"`
	FlushRounds   int    `hcl:"flush_rounds,optional"`
}

const (
	defaultAddress       = "localhost"
	defaultPort          = 8080
	defaultLogLevel      = "info"
	defaultDatabase      = "escrow.db"
	defaultHistoryDir    = "rounds"
	defaultFlushInterval = 10 * time.Second
	defaultFlushRounds   = 10
)

func ptr[T any](v T) *T { return &v }

// DefaultFileConfig returns default server configuration
func DefaultFileConfig() *FileConfig {
	cfg := &FileConfig{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig loads server configuration from an HCL file. A missing file yields
// the defaults.
func LoadConfig(filename string) (*FileConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultFileConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config FileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *FileConfig) applyDefaults() {
	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	if c.Server.Address == "" {
		c.Server.Address = defaultAddress
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaultLogLevel
	}
	if c.Server.Database == "" {
		c.Server.Database = defaultDatabase
	}
	if c.Server.RequireSignatures == nil {
		c.Server.RequireSignatures = ptr(true)
	}

	if c.Reputation == nil {
		c.Reputation = &ReputationSettings{}
	}
	r := c.Reputation
	if r.Policy == "" {
		r.Policy = reputation.PolicyParticipation
	}
	participation := reputation.DefaultParticipation()
	accuracy := reputation.DefaultVoterAccuracy()
	if r.MemberCredit == nil {
		r.MemberCredit = ptr(participation.MemberCredit)
	}
	if r.WinnerBonus == nil {
		r.WinnerBonus = ptr(participation.WinnerBonus)
	}
	if r.CorrectVote == nil {
		r.CorrectVote = ptr(accuracy.Correct)
	}
	if r.WrongVote == nil {
		r.WrongVote = ptr(accuracy.Wrong)
	}
	if r.BanThreshold == nil {
		r.BanThreshold = ptr(int64(reputation.DefaultBanThreshold))
	}

	if c.History == nil {
		c.History = &HistorySettings{}
	}
	if c.History.Dir == "" {
		c.History.Dir = defaultHistoryDir
	}
	if c.History.FlushInterval == "" {
		c.History.FlushInterval = defaultFlushInterval.String()
	}
	if c.History.FlushRounds == 0 {
		c.History.FlushRounds = defaultFlushRounds
	}
}

// Validate validates the server configuration
func (c *FileConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := zerolog.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Server.LogLevel, err)
	}
	if _, err := reputation.NewScoring(c.PolicyConfig()); err != nil {
		return err
	}
	d, err := time.ParseDuration(c.History.FlushInterval)
	if err != nil {
		return fmt.Errorf("history: invalid flush_interval: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("history: flush_interval must be positive")
	}
	if c.History.FlushRounds < 1 {
		return fmt.Errorf("history: flush_rounds must be at least 1")
	}
	return nil
}

// Address returns the full listen address
func (c *FileConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// PolicyConfig returns the scoring policy selection.
func (c *FileConfig) PolicyConfig() reputation.PolicyConfig {
	r := c.Reputation
	return reputation.PolicyConfig{
		Policy:       r.Policy,
		MemberCredit: *r.MemberCredit,
		WinnerBonus:  *r.WinnerBonus,
		CorrectVote:  *r.CorrectVote,
		WrongVote:    *r.WrongVote,
	}
}

// Admission returns the join admission policy.
func (c *FileConfig) Admission() reputation.Admission {
	return reputation.Admission{Enabled: c.Reputation.Admission, BanThreshold: *c.Reputation.BanThreshold}
}

// FlushInterval returns the parsed history flush interval. Call after Validate.
func (c *FileConfig) FlushInterval() time.Duration {
	d, err := time.ParseDuration(c.History.FlushInterval)
	if err != nil {
		return defaultFlushInterval
	}
	return d
}

// LedgerExportPath is where the ledger of a run started at started is written
// on shutdown. Each run gets its own file so earlier exports are kept.
func (c *FileConfig) LedgerExportPath(started time.Time) string {
	name := "ledger-" + started.UTC().Format("20060102T150405Z") + ".json"
	return filepath.Join(c.History.Dir, name)
}
