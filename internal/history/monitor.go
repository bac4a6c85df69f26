package history

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/lox/pokerescrow/internal/escrow"
)

// ErrDisabled is returned by Flush once a journal has stopped recording.
var ErrDisabled = errors.New("history: journal disabled")

// Monitor collects settled rounds from engine events and appends them to a
// journal file in batches. Each batch is encoded in memory and written with a
// single append, so a failed write never leaves a partial batch behind.
type Monitor struct {
	cfg    MonitorConfig
	logger zerolog.Logger
	path   string

	// flushMu serialises flushes. mu guards the fields below and is never held
	// during file IO.
	flushMu sync.Mutex

	mu       sync.Mutex
	pending  []Round
	notify   func()
	failures int
	disabled bool
	section  int
	nextRoom uint64
}

var _ escrow.EventSink = (*Monitor)(nil)

// NewMonitor opens the journal at cfg.OutputDir/cfg.Filename. An existing
// journal is read so numbering continues after its last section.
func NewMonitor(cfg MonitorConfig, logger zerolog.Logger) (*Monitor, error) {
	if cfg.Name == "" {
		return nil, errors.New("history: Name is required")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("history: OutputDir is required")
	}
	if cfg.Filename == "" {
		cfg.Filename = defaultFilename
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("history: create dir: %w", err)
	}

	path := filepath.Join(cfg.OutputDir, cfg.Filename)
	tail, err := scanJournal(path)
	if err != nil {
		return nil, err
	}

	return &Monitor{
		cfg:      cfg,
		logger:   logger,
		path:     path,
		section:  tail.lastSection,
		nextRoom: tail.nextRoom,
	}, nil
}

// Path returns the journal file path.
func (m *Monitor) Path() string {
	return m.path
}

// NextRoom returns one past the highest room id journaled so far, or zero for an
// empty journal. Engines seeded with it never reuse a journaled id.
func (m *Monitor) NextRoom() escrow.RoomID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return escrow.RoomID(m.nextRoom)
}

// SetFlushNotifier registers fn to be called when FlushRounds rounds are pending.
func (m *Monitor) SetFlushNotifier(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notify = fn
}

// OnEvent records settlements and ignores every other event.
func (m *Monitor) OnEvent(e escrow.Event) {
	if e.Kind != escrow.EventRoomSettled || e.Settlement == nil {
		return
	}
	m.Record(RoundFromSettlement(e.Settlement))
}

// Record queues a round for the next flush.
func (m *Monitor) Record(r Round) {
	m.mu.Lock()
	if m.disabled {
		m.mu.Unlock()
		return
	}
	m.pending = append(m.pending, r)
	m.nextRoom = max(m.nextRoom, r.Room+1)
	var notify func()
	if m.cfg.FlushRounds > 0 && len(m.pending) >= m.cfg.FlushRounds {
		notify = m.notify
	}
	m.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// Buffered returns the number of rounds waiting to be flushed.
func (m *Monitor) Buffered() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Disabled reports whether the journal stopped after repeated write failures.
func (m *Monitor) Disabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disabled
}

// Flush appends every pending round. A failed batch is requeued ahead of rounds
// recorded meanwhile; after maxFlushFailures consecutive failures the pending
// rounds are dropped and the journal is disabled.
func (m *Monitor) Flush() error {
	m.flushMu.Lock()
	defer m.flushMu.Unlock()

	m.mu.Lock()
	if m.disabled {
		m.mu.Unlock()
		return ErrDisabled
	}
	batch, first := m.pending, m.section+1
	m.pending = nil
	m.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	var buf bytes.Buffer
	err := encodeBatch(&buf, first, batch)
	if err == nil {
		err = appendFile(m.path, buf.Bytes())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		m.section += len(batch)
		m.failures = 0
		m.logger.Debug().Int("rounds", len(batch)).Int("last_section", m.section).Msg("History flushed")
		return nil
	}

	m.failures++
	m.pending = append(batch, m.pending...)
	if m.failures < maxFlushFailures {
		return fmt.Errorf("history: flush %s: %w", m.path, err)
	}
	m.logger.Error().Err(err).Int("dropped_rounds", len(m.pending)).
		Msg("History recording disabled after repeated failures")
	m.pending = nil
	m.disabled = true
	return fmt.Errorf("%w: %v", ErrDisabled, err)
}

// Close flushes pending rounds. Closing a disabled journal is not an error.
func (m *Monitor) Close() error {
	if err := m.Flush(); err != nil && !errors.Is(err, ErrDisabled) {
		return err
	}
	return nil
}

// encodeBatch writes rounds as consecutive "[N]" sections starting at first.
func encodeBatch(w io.Writer, first int, rounds []Round) error {
	for i, r := range rounds {
		if _, err := fmt.Fprintf(w, "[%d]\n", first+i); err != nil {
			return err
		}
		if err := Encode(w, r); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Encode writes one round as TOML key/value pairs.
func Encode(w io.Writer, r Round) error {
	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(r)
}

func appendFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
