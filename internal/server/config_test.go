package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerescrow/internal/reputation"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "localhost:8080", cfg.Address())
	assert.Equal(t, "escrow.db", cfg.Server.Database)
	assert.True(t, *cfg.Server.RequireSignatures)
	assert.Equal(t, reputation.PolicyParticipation, cfg.PolicyConfig().Policy)
	assert.False(t, cfg.Admission().Enabled)
	assert.Equal(t, 10*time.Second, cfg.FlushInterval())
	started := time.Date(2026, 3, 4, 5, 6, 7, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, filepath.Join("rounds", "ledger-20260304T040607Z.json"), cfg.LedgerExportPath(started))
	assert.NotEqual(t, cfg.LedgerExportPath(started), cfg.LedgerExportPath(started.Add(time.Second)))
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
server {
  address            = "0.0.0.0"
  port               = 9090
  log_level          = "debug"
  require_signatures = false
}

reputation {
  policy        = "voter_accuracy"
  correct_vote  = 2
  admission     = true
  ban_threshold = -5
}

history {
  dir            = "/var/lib/escrow"
  flush_interval = "30s"
  flush_rounds   = 5
}
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:9090", cfg.Address())
	assert.False(t, *cfg.Server.RequireSignatures)
	policy := cfg.PolicyConfig()
	assert.Equal(t, reputation.PolicyVoterAccuracy, policy.Policy)
	assert.Equal(t, int64(2), policy.CorrectVote)
	assert.Equal(t, reputation.DefaultVoterAccuracy().Wrong, policy.WrongVote)
	assert.Equal(t, reputation.Admission{Enabled: true, BanThreshold: -5}, cfg.Admission())
	assert.Equal(t, 30*time.Second, cfg.FlushInterval())
	assert.Equal(t, 5, cfg.History.FlushRounds)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*FileConfig)
	}{
		{"port", func(c *FileConfig) { c.Server.Port = 70000 }},
		{"log level", func(c *FileConfig) { c.Server.LogLevel = "loud" }},
		{"policy", func(c *FileConfig) { c.Reputation.Policy = "karma" }},
		{"flush interval", func(c *FileConfig) { c.History.FlushInterval = "soon" }},
		{"negative interval", func(c *FileConfig) { c.History.FlushInterval = "-1s" }},
		{"flush rounds", func(c *FileConfig) { c.History.FlushRounds = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultFileConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.hcl")
	require.NoError(t, os.WriteFile(path, []byte("server {"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}
