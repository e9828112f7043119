package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/SoarinFerret/FocusWarden/internal/pomodoro"
	"github.com/SoarinFerret/FocusWarden/internal/usage"
)

// Manager owns the state machine and keeps state.json in step with it.
type Manager struct {
	path    string
	mu      sync.Mutex
	state   *State
	machine *pomodoro.Machine
	clock   pomodoro.Clock
	logger  zerolog.Logger
}

// NewManager loads or initializes the state file. Unreadable JSON is
// replaced by a fresh state; the broken file is kept next to it.
func NewManager(path string, settings pomodoro.Settings, clock pomodoro.Clock, logger zerolog.Logger) (*Manager, error) {
	if clock == nil {
		clock = pomodoro.RealClock{}
	}
	m := &Manager{
		path:   path,
		clock:  clock,
		logger: logger.With().Str("component", "state").Logger(),
	}

	if err := m.load(); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, os.ErrNotExist):
			m.state = newState()
		case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
			m.logger.Warn().Err(err).Str("path", path).Msg("State file is malformed, starting fresh")
			_ = os.Rename(path, path+".corrupt")
			m.state = newState()
		default:
			return nil, err
		}
	}

	m.startUpChecks(settings)

	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// load reads the state file into memory.
func (m *Manager) load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return err
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s.Usage == nil {
		s.Usage = usage.History{}
	}
	s.Usage = s.Usage.Sanitize()
	m.state = &s
	return nil
}

// save atomically writes the state file to disk.
func (m *Manager) save() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp := m.path + ".tmp"
	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}

	return os.Rename(tmp, m.path)
}

// persist copies the machine into the stored state and writes it. Write
// failures are logged; the in-memory state stays authoritative.
func (m *Manager) persist() {
	m.state.Session = m.machine.Snapshot()
	if err := m.save(); err != nil {
		m.logger.Error().Err(err).Msg("Failed to save state")
	}
}

// startUpChecks rebuilds the machine from the loaded snapshot. Ticks were not
// delivered while the daemon was down, so downtime is never credited. With
// auto-start a saved session resumes counting from where it stopped.
func (m *Manager) startUpChecks(settings pomodoro.Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.fresh() {
		m.machine = pomodoro.New(settings, m.state.Usage, m.clock)
		m.state.Session = m.machine.Snapshot()
		return
	}

	machine, ok := pomodoro.Restore(m.state.Session, settings, m.state.Usage, m.clock)
	if !ok {
		m.logger.Warn().Interface("session", m.state.Session).Msg("Stored session is invalid, starting a new focus session")
	} else if _, pending := machine.Pending(); machine.Settings().AutoStart && !pending && !machine.Expired() {
		machine.Start()
		m.logger.Info().Int("remaining", machine.Session().Remaining).Msg("Auto start enabled, resuming saved session")
	} else if m.state.Session.Running {
		m.logger.Info().Msg("Session was running at shutdown, restored as paused")
	}
	m.machine = machine
	m.state.Session = machine.Snapshot()
	m.state.Version = currentVersion
}
