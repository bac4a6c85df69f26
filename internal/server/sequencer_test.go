package server

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerescrow/internal/escrow"
	"github.com/lox/pokerescrow/internal/reputation"
)

func newTestSequencer(t *testing.T) (*Sequencer, context.CancelFunc) {
	t.Helper()
	engine := escrow.NewEngine(zerolog.New(io.Discard), reputation.NewMemoryStore())
	seq := NewSequencer(zerolog.New(io.Discard), engine)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = seq.Run(ctx) }()
	return seq, cancel
}

func TestSequencerSerializesOperations(t *testing.T) {
	seq, cancel := newTestSequencer(t)
	defer cancel()
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := seq.Do(ctx, func(e *escrow.Engine) error {
				_, err := e.CreateRoom(ctx, "0xa11ce", escrow.QuickConfig(10))
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var rooms []escrow.RoomView
	require.NoError(t, seq.Do(ctx, func(e *escrow.Engine) error {
		rooms = e.Rooms()
		return nil
	}))
	require.Len(t, rooms, 20)
	for i, r := range rooms {
		assert.Equal(t, escrow.RoomID(i), r.ID)
	}
}

func TestSequencerReturnsOperationError(t *testing.T) {
	seq, cancel := newTestSequencer(t)
	defer cancel()

	boom := errors.New("boom")
	err := seq.Do(context.Background(), func(*escrow.Engine) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestSequencerRecoversPanics(t *testing.T) {
	seq, cancel := newTestSequencer(t)
	defer cancel()
	ctx := context.Background()

	err := seq.Do(ctx, func(*escrow.Engine) error { panic("bad op") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad op")

	assert.NoError(t, seq.Do(ctx, func(*escrow.Engine) error { return nil }))
}

func TestSequencerStopped(t *testing.T) {
	seq, cancel := newTestSequencer(t)
	cancel()
	<-seq.done

	err := seq.Do(context.Background(), func(*escrow.Engine) error { return nil })
	assert.ErrorIs(t, err, ErrSequencerStopped)
}

func TestSequencerDoHonoursContext(t *testing.T) {
	engine := escrow.NewEngine(zerolog.Nop(), reputation.NewMemoryStore())
	seq := NewSequencer(zerolog.Nop(), engine)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := seq.Do(ctx, func(*escrow.Engine) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNonceTracker(t *testing.T) {
	n := newNonceTracker()
	require.NoError(t, n.accept("0xa11ce", 5))
	assert.ErrorIs(t, n.accept("0xa11ce", 5), ErrStaleNonce)
	assert.ErrorIs(t, n.accept("0xa11ce", 4), ErrStaleNonce)
	require.NoError(t, n.accept("0xa11ce", 9))
	require.NoError(t, n.accept("0xb0b", 1))
	assert.ErrorIs(t, n.accept("0xca201", 0), ErrStaleNonce)
}
