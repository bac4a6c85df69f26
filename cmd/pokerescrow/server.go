package main

import (
	"fmt"

	"github.com/coder/quartz"

	"github.com/lox/pokerescrow/cmd/pokerescrow/shared"
	"github.com/lox/pokerescrow/internal/escrow"
	"github.com/lox/pokerescrow/internal/history"
	"github.com/lox/pokerescrow/internal/identity"
	"github.com/lox/pokerescrow/internal/reputation"
	"github.com/lox/pokerescrow/internal/server"
	"github.com/lox/pokerescrow/internal/storage"
)

// ServerCmd runs the websocket and HTTP server
type ServerCmd struct {
	Config       string `kong:"default='pokerescrow.hcl',env='POKERESCROW_CONFIG',help='Path to HCL config file (defaults apply if missing)'"`
	Addr         string `kong:"env='POKERESCROW_ADDR',help='Listen address, overrides the config file'"`
	Database     string `kong:"env='POKERESCROW_DATABASE',help='SQLite database path, overrides the config file'"`
	Debug        bool   `kong:"help='Enable debug logging'"`
	JSONLogs     bool   `kong:"name='json-logs',help='Emit structured JSON logs'"`
	NoSignatures bool   `kong:"name='no-signatures',help='Trust the actor field instead of verifying signatures (development only)'"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if c.Database != "" {
		cfg.Server.Database = c.Database
	}
	if c.NoSignatures {
		cfg.Server.RequireSignatures = new(bool)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	level := cfg.Server.LogLevel
	if c.Debug {
		level = "debug"
	}
	logger := shared.SetupLoggerLevel(level, c.JSONLogs)

	addr := cfg.Address()
	if c.Addr != "" {
		addr = c.Addr
	}

	store, err := storage.Open(cfg.Server.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	scoring, err := reputation.NewScoring(cfg.PolicyConfig())
	if err != nil {
		return err
	}

	clock := quartz.NewReal()
	manager := history.NewManager(logger, history.ManagerConfig{
		BaseDir:       cfg.History.Dir,
		FlushInterval: cfg.FlushInterval(),
		FlushRounds:   cfg.History.FlushRounds,
		Clock:         clock,
	})
	monitor, err := manager.CreateMonitor("")
	if err != nil {
		manager.Shutdown()
		return err
	}
	// Continue numbering after rooms journaled by earlier runs.
	firstRoom := monitor.NextRoom()

	hub := server.NewHub(logger)
	engine := escrow.NewEngine(logger, store,
		escrow.WithClock(clock),
		escrow.WithFirstRoomID(firstRoom),
		escrow.WithScoring(scoring),
		escrow.WithAdmission(cfg.Admission()),
		escrow.WithEventSink(escrow.MultiSink{hub, monitor}),
	)

	opts := []server.Option{
		server.WithLedgerExport(cfg.LedgerExportPath(clock.Now())),
		server.WithShutdownHook(manager.Shutdown),
	}
	if !*cfg.Server.RequireSignatures {
		logger.Warn().Msg("Signature verification disabled")
		opts = append(opts, server.WithVerifier(identity.NoopVerifier{}))
	}
	srv, err := server.New(logger, engine, store, hub, opts...)
	if err != nil {
		manager.Shutdown()
		return err
	}

	logger.Info().
		Str("address", addr).
		Str("database", cfg.Server.Database).
		Str("policy", scoring.Name()).
		Bool("admission", cfg.Admission().Enabled).
		Int64("ban_threshold", cfg.Admission().BanThreshold).
		Str("history", monitor.Path()).
		Uint64("first_room", uint64(firstRoom)).
		Msg("Starting escrow server")

	ctx := shared.SetupSignalHandler(logger)
	return srv.ListenAndServe(ctx, addr)
}
