// Package server exposes the escrow engine over websocket and HTTP. Every mutation
// and read passes through a single Sequencer so the engine sees one caller at a time.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokerescrow/internal/escrow"
	"github.com/lox/pokerescrow/internal/fileutil"
	"github.com/lox/pokerescrow/internal/identity"
	"github.com/lox/pokerescrow/internal/ledger"
	"github.com/lox/pokerescrow/internal/reputation"
)

const shutdownTimeout = 5 * time.Second

// Server accepts intents from websocket and HTTP clients.
type Server struct {
	logger     zerolog.Logger
	seq        *Sequencer
	store      reputation.Store
	book       *ledger.Book
	hub        *Hub
	verifier   identity.Verifier
	validator  *IntentValidator
	nonces     *nonceTracker
	upgrader   websocket.Upgrader
	ledgerPath string
	onShutdown []func()
}

// Option configures a Server.
type Option func(*Server)

// WithVerifier sets how intent signatures are checked. The default requires
// Schnorr signatures.
func WithVerifier(v identity.Verifier) Option {
	return func(s *Server) { s.verifier = v }
}

// WithLedgerExport writes the ledger as JSON to path on shutdown.
func WithLedgerExport(path string) Option {
	return func(s *Server) { s.ledgerPath = path }
}

// WithShutdownHook runs fn after the server stops, once the sequencer has exited.
func WithShutdownHook(fn func()) Option {
	return func(s *Server) { s.onShutdown = append(s.onShutdown, fn) }
}

// New wraps engine. The hub must be the engine's event sink (or part of it) for
// watchers to receive events.
func New(logger zerolog.Logger, engine *escrow.Engine, store reputation.Store, hub *Hub, opts ...Option) (*Server, error) {
	validator, err := NewIntentValidator()
	if err != nil {
		return nil, err
	}

	s := &Server{
		logger:    logger.With().Str("component", "server").Logger(),
		seq:       NewSequencer(logger, engine),
		store:     store,
		book:      engine.Ledger(),
		hub:       hub,
		verifier:  identity.SchnorrVerifier{},
		validator: validator,
		nonces:    newNonceTracker(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handler returns the HTTP routes, including the /ws upgrade endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /rooms", s.handleRooms)
	mux.HandleFunc("GET /rooms/{id}", s.handleRoom)
	mux.HandleFunc("GET /rooms/{id}/players", s.handlePlayers)
	mux.HandleFunc("GET /rooms/{id}/actions", s.handleActions)
	mux.HandleFunc("GET /rooms/{id}/ballots", s.handleBallots)
	mux.HandleFunc("GET /rooms/{id}/folded/{actor}", s.handleFolded)
	mux.HandleFunc("GET /reputation", s.handleReputationList)
	mux.HandleFunc("GET /reputation/{actor}", s.handleReputation)
	mux.HandleFunc("GET /ledger", s.handleLedger)
	mux.HandleFunc("POST /intents", s.handleIntent)
	return mux
}

// Serve runs the sequencer and serves HTTP on ln until ctx is cancelled, then
// closes connections, waits for the sequencer and exports the ledger.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.RunSequencer(gctx)
	})
	g.Go(func() error {
		s.logger.Info().Str("address", ln.Addr().String()).Msg("Listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info().Msg("Shutting down server")
		s.hub.closeAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	for _, fn := range s.onShutdown {
		fn()
	}
	if s.ledgerPath != "" {
		if exportErr := s.ExportLedger(s.ledgerPath); exportErr != nil {
			s.logger.Error().Err(exportErr).Str("path", s.ledgerPath).Msg("Ledger export failed")
			err = errors.Join(err, exportErr)
		} else {
			s.logger.Info().Str("path", s.ledgerPath).Msg("Ledger exported")
		}
	}
	return err
}

// RunSequencer applies queued operations until ctx ends. Serve calls it; call it
// directly when mounting Handler on another http.Server.
func (s *Server) RunSequencer(ctx context.Context) error {
	return s.seq.Run(ctx)
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// LedgerExport is the JSON document written by ExportLedger.
type LedgerExport struct {
	Entries  []ledger.Entry `json:"entries"`
	Verified bool           `json:"verified"`
}

// ExportLedger writes every ledger entry to path atomically.
func (s *Server) ExportLedger(path string) error {
	doc := LedgerExport{Entries: s.book.Entries(), Verified: s.book.Verify() == nil}
	return fileutil.WriteJSONAtomic(path, doc)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}

	c := newConnection(conn, s)
	s.hub.add(c)
	go c.WritePump()
	c.ReadPump(r.Context())
}

func (s *Server) unregister(c *Connection) {
	s.hub.remove(c)
}
