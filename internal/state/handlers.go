package state

import (
	"github.com/SoarinFerret/FocusWarden/internal/pomodoro"
	"github.com/SoarinFerret/FocusWarden/internal/usage"
)

// Expiry describes a session that ran out during a tick.
type Expiry struct {
	Ended       pomodoro.Session
	Next        pomodoro.Transition
	AutoStarted bool
}

// Change describes a session left early by skip or reset. Expired is set
// when the session had already run out and was awaiting confirmation.
type Change struct {
	Ended   pomodoro.Session
	Next    pomodoro.Transition
	Elapsed int
	Expired bool
}

// HandleTick delivers one second to the running session. It returns the
// expiry when that second ended the session.
func (m *Manager) HandleTick() *Expiry {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.machine.Running() {
		return nil
	}
	m.machine.Tick()
	if !m.machine.Expired() {
		m.persist()
		return nil
	}

	ended := m.machine.Session()
	next := m.machine.OnExpire()
	m.persist()
	return &Expiry{
		Ended:       ended,
		Next:        next,
		AutoStarted: m.machine.Running(),
	}
}

func (m *Manager) HandleStart() pomodoro.Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.machine.Start()
	m.persist()
	return m.machine.Status()
}

func (m *Manager) HandlePause() pomodoro.Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.machine.Pause()
	m.persist()
	return m.machine.Status()
}

func (m *Manager) HandleToggle() pomodoro.Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.machine.Toggle()
	m.persist()
	return m.machine.Status()
}

func (m *Manager) HandleSkip() Change {
	m.mu.Lock()
	defer m.mu.Unlock()

	ended := m.machine.Session()
	_, expired := m.machine.Pending()
	next := m.machine.Skip()
	m.persist()
	return Change{
		Ended:   ended,
		Next:    next,
		Elapsed: ended.Duration - ended.Remaining,
		Expired: expired,
	}
}

func (m *Manager) HandleReset() Change {
	m.mu.Lock()
	defer m.mu.Unlock()

	ended := m.machine.Session()
	_, expired := m.machine.Pending()
	m.machine.Reset()
	m.persist()
	s := m.machine.Session()
	return Change{
		Ended:   ended,
		Next:    pomodoro.Transition{Mode: s.Mode, Duration: s.Duration},
		Elapsed: ended.Duration - ended.Remaining,
		Expired: expired,
	}
}

func (m *Manager) HandleSetDuration(seconds int) (pomodoro.Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.machine.SetDuration(seconds); err != nil {
		return m.machine.Status(), err
	}
	m.persist()
	return m.machine.Status(), nil
}

// HandleConfirm acknowledges the alarm and applies the pending transition.
func (m *Manager) HandleConfirm() (pomodoro.Transition, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, ok := m.machine.Confirm()
	if ok {
		m.persist()
	}
	return next, ok
}

func (m *Manager) HandleSettings(s pomodoro.Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.machine.UpdateSettings(s)
	m.persist()
}

func (m *Manager) Status() pomodoro.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.machine.Status()
}

func (m *Manager) Settings() pomodoro.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.machine.Settings()
}

func (m *Manager) Stats() usage.Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.machine.Usage().Summary(m.clock.Now())
}

// Snapshot returns copies of everything that is persisted.
func (m *Manager) Snapshot() (pomodoro.Snapshot, usage.History) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.machine.Snapshot(), m.machine.Usage().Clone()
}

// Restore replaces usage history and, when given, the session. The restored
// session is never running.
func (m *Manager) Restore(history usage.History, session *pomodoro.Snapshot) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.machine.Snapshot()
	if session != nil {
		snap = *session
	}
	if history == nil {
		history = m.machine.Usage()
	} else {
		history = history.Sanitize()
	}

	machine, ok := pomodoro.Restore(snap, m.machine.Settings(), history, m.clock)
	m.machine = machine
	m.state.Usage = history
	m.persist()
	return ok
}
