package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lox/pokerescrow/internal/escrow"
)

// ErrSequencerStopped is returned by Do once the sequencer has shut down.
var ErrSequencerStopped = errors.New("server: sequencer stopped")

type sequencedOp struct {
	fn     func(*escrow.Engine) error
	result chan error
}

// Sequencer owns an escrow engine and applies operations to it one at a time, in
// submission order, from a single goroutine.
type Sequencer struct {
	engine *escrow.Engine
	ops    chan sequencedOp
	done   chan struct{}
	logger zerolog.Logger
}

// NewSequencer wraps engine. Run must be called before Do makes progress.
func NewSequencer(logger zerolog.Logger, engine *escrow.Engine) *Sequencer {
	return &Sequencer{
		engine: engine,
		ops:    make(chan sequencedOp),
		done:   make(chan struct{}),
		logger: logger.With().Str("component", "sequencer").Logger(),
	}
}

// Run executes submitted operations until ctx is cancelled.
func (s *Sequencer) Run(ctx context.Context) error {
	defer close(s.done)
	s.logger.Debug().Msg("Sequencer started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug().Msg("Sequencer stopped")
			return nil
		case op := <-s.ops:
			op.result <- s.apply(op.fn)
		}
	}
}

func (s *Sequencer) apply(fn func(*escrow.Engine) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("Operation panicked")
			err = fmt.Errorf("operation panicked: %v", r)
		}
	}()
	return fn(s.engine)
}

// Do runs fn against the engine after every previously submitted operation and
// returns its error. fn must not call Do.
func (s *Sequencer) Do(ctx context.Context, fn func(*escrow.Engine) error) error {
	op := sequencedOp{fn: fn, result: make(chan error, 1)}
	select {
	case s.ops <- op:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrSequencerStopped
	}
	// Once received the operation always completes.
	return <-op.result
}
