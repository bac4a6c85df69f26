package history

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
)

// Manager owns the journals of a process and flushes them from one goroutine,
// on a ticker and whenever a journal reaches its round threshold.
type Manager struct {
	cfg    ManagerConfig
	logger zerolog.Logger

	mu       sync.Mutex
	journals map[string]*Monitor

	wake   chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewManager creates a manager and starts its flush loop.
func NewManager(logger zerolog.Logger, cfg ManagerConfig) *Manager {
	if cfg.BaseDir == "" {
		cfg.BaseDir = "history"
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultFlushInterval
	}
	if cfg.FlushRounds <= 0 {
		cfg.FlushRounds = defaultFlushRounds
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		cfg:      cfg,
		logger:   logger.With().Str("component", "history").Logger(),
		journals: make(map[string]*Monitor),
		wake:     make(chan struct{}, 1),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	ticker := cfg.Clock.NewTicker(cfg.FlushInterval, "history", "flush")
	go m.loop(ctx, ticker)
	return m
}

// CreateMonitor opens a journal under BaseDir. The empty name writes directly
// into BaseDir; any other name gets its own subdirectory.
func (m *Manager) CreateMonitor(name string) (*Monitor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.journals[name]; exists {
		return nil, fmt.Errorf("history: monitor %q already exists", name)
	}

	dir, label := m.cfg.BaseDir, name
	if name == "" {
		label = "default"
	} else {
		dir = filepath.Join(dir, name)
	}
	j, err := NewMonitor(MonitorConfig{
		Name:        label,
		OutputDir:   dir,
		Filename:    defaultFilename,
		FlushRounds: m.cfg.FlushRounds,
	}, m.logger.With().Str("journal", label).Logger())
	if err != nil {
		return nil, err
	}
	j.SetFlushNotifier(m.poke)
	m.journals[name] = j
	return j, nil
}

// RemoveMonitor flushes and forgets the named journal.
func (m *Manager) RemoveMonitor(name string) {
	m.mu.Lock()
	j, ok := m.journals[name]
	delete(m.journals, name)
	m.mu.Unlock()

	if ok {
		if err := j.Close(); err != nil {
			m.logger.Error().Err(err).Str("journal", name).Msg("History flush on remove failed")
		}
	}
}

// Shutdown stops the flush loop and writes every pending round. It is safe to
// call more than once.
func (m *Manager) Shutdown() {
	m.once.Do(func() {
		m.cancel()
		<-m.done

		m.mu.Lock()
		journals := m.journals
		m.journals = make(map[string]*Monitor)
		m.mu.Unlock()

		for name, j := range journals {
			if err := j.Close(); err != nil {
				m.logger.Error().Err(err).Str("journal", name).Msg("History flush on shutdown failed")
			}
		}
	})
}

func (m *Manager) loop(ctx context.Context, ticker *quartz.Ticker) {
	defer close(m.done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-m.wake:
		}
		m.flush()
	}
}

// poke asks the loop for a flush without blocking the caller.
func (m *Manager) poke() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *Manager) flush() {
	m.mu.Lock()
	names := make([]string, 0, len(m.journals))
	journals := make([]*Monitor, 0, len(m.journals))
	for name, j := range m.journals {
		names = append(names, name)
		journals = append(journals, j)
	}
	m.mu.Unlock()

	for i, j := range journals {
		err := j.Flush()
		switch {
		case err == nil:
		case errors.Is(err, ErrDisabled):
			m.mu.Lock()
			if m.journals[names[i]] == j {
				delete(m.journals, names[i])
			}
			m.mu.Unlock()
		default:
			m.logger.Warn().Err(err).Str("journal", names[i]).Msg("History flush failed, will retry")
		}
	}
}
