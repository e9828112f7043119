package pomodoro

import (
	"github.com/SoarinFerret/FocusWarden/internal/usage"
)

// Machine is the focus/break session state machine. It is not safe for
// concurrent use; the owner serializes access.
type Machine struct {
	settings Settings
	session  Session
	counter  int
	running  bool
	pending  *Transition
	usage    usage.History
	clock    Clock
}

// New starts a machine in Focus with the full configured duration.
func New(settings Settings, history usage.History, clock Clock) *Machine {
	if history == nil {
		history = usage.History{}
	}
	if clock == nil {
		clock = RealClock{}
	}
	settings = settings.Normalize()
	d := settings.Duration(Focus)
	return &Machine{
		settings: settings,
		session:  Session{Mode: Focus, Duration: d, Remaining: d},
		usage:    history,
		clock:    clock,
	}
}

// Restore rebuilds a machine from a snapshot. It reports false, and returns a
// fresh machine, when the snapshot is not usable. A restored machine is
// never running.
func Restore(snap Snapshot, settings Settings, history usage.History, clock Clock) (*Machine, bool) {
	m := New(settings, history, clock)
	if !snap.Mode.Valid() || snap.Duration < 0 || snap.Duration > MaxSeconds {
		return m, false
	}
	if snap.Pending != nil && (!snap.Pending.Mode.Valid() || snap.Pending.Duration < 0) {
		return m, false
	}

	m.session = Session{
		Mode:      snap.Mode,
		Duration:  snap.Duration,
		Remaining: clamp(snap.Remaining, 0, snap.Duration),
	}
	m.counter = clamp(snap.SessionCounter, 0, m.settings.SessionsBeforeLongBreak)
	if snap.Pending != nil {
		p := *snap.Pending
		m.pending = &p
	}
	return m, true
}

func (m *Machine) Snapshot() Snapshot {
	snap := Snapshot{
		Mode:           m.session.Mode,
		Duration:       m.session.Duration,
		Remaining:      m.session.Remaining,
		SessionCounter: m.counter,
		Running:        m.running,
	}
	if m.pending != nil {
		p := *m.pending
		snap.Pending = &p
	}
	return snap
}

func (m *Machine) Status() Status {
	st := Status{
		Session:                 m.session,
		SessionCounter:          m.counter,
		SessionsBeforeLongBreak: m.settings.SessionsBeforeLongBreak,
		Running:                 m.running,
		Next:                    m.peekNext(),
	}
	if m.pending != nil {
		p := *m.pending
		st.Pending = &p
		st.Next = p.Mode
	}
	return st
}

func (m *Machine) Session() Session {
	return m.session
}

func (m *Machine) Running() bool {
	return m.running
}

func (m *Machine) Settings() Settings {
	return m.settings
}

// Usage returns the live history; callers holding it outside the owner's
// lock should Clone it.
func (m *Machine) Usage() usage.History {
	return m.usage
}

// Expired reports whether the active session has no time left.
func (m *Machine) Expired() bool {
	return m.session.Remaining == 0
}

func (m *Machine) Pending() (Transition, bool) {
	if m.pending == nil {
		return Transition{}, false
	}
	return *m.pending, true
}

// Tick advances the running session by one second and attributes that second
// to today's usage. It does nothing while paused or awaiting confirmation.
func (m *Machine) Tick() {
	if !m.running || m.pending != nil {
		return
	}
	if m.session.Remaining > 0 {
		m.session.Remaining--
	}
	m.usage.Record(usage.DateKey(m.clock.Now()), m.session.Mode == Focus)
}

// OnExpire ends the current session and computes the next one. Without
// auto-start the transition is left pending until Confirm; with auto-start it
// is applied and the new session starts running.
func (m *Machine) OnExpire() Transition {
	if m.pending != nil {
		return *m.pending
	}
	m.running = false
	next := m.advance()
	if m.settings.AutoStart {
		m.apply(next)
		m.running = true
		return next
	}
	m.pending = &next
	return next
}

// Confirm applies the pending transition. It reports false when nothing was
// pending.
func (m *Machine) Confirm() (Transition, bool) {
	if m.pending == nil {
		return Transition{}, false
	}
	next := *m.pending
	m.apply(next)
	m.running = m.settings.AutoStart
	return next, true
}

// Skip moves straight to the next session and leaves it stopped. Time left in
// the skipped session is not counted as usage.
func (m *Machine) Skip() Transition {
	if m.pending != nil {
		next := *m.pending
		m.apply(next)
		m.running = false
		return next
	}
	next := m.advance()
	m.apply(next)
	m.running = false
	return next
}

// Reset restores the full configured duration of the current mode and stops.
// The session counter and usage are left alone.
func (m *Machine) Reset() {
	d := m.settings.Duration(m.session.Mode)
	m.session.Duration = d
	m.session.Remaining = d
	m.running = false
	m.pending = nil
}

// SetDuration sets both duration and remaining time from manual entry,
// clamped to [0, MaxSeconds].
func (m *Machine) SetDuration(seconds int) error {
	if m.running {
		return ErrRunning
	}
	seconds = clamp(seconds, 0, MaxSeconds)
	m.session.Duration = seconds
	m.session.Remaining = seconds
	return nil
}

// Start runs the session, applying a pending transition first.
func (m *Machine) Start() {
	if m.pending != nil {
		m.apply(*m.pending)
	}
	m.running = true
}

func (m *Machine) Pause() {
	m.running = false
}

func (m *Machine) Toggle() bool {
	if m.running {
		m.Pause()
	} else {
		m.Start()
	}
	return m.running
}

// UpdateSettings swaps the configuration. The active session keeps its
// duration; only the counter is pulled back into range.
func (m *Machine) UpdateSettings(s Settings) {
	m.settings = s.Normalize()
	m.counter = clamp(m.counter, 0, m.settings.SessionsBeforeLongBreak)
}

// advance computes the next session and, when leaving Focus, counts the
// completed focus session.
func (m *Machine) advance() Transition {
	if m.session.Mode != Focus {
		return Transition{Mode: Focus, Duration: m.settings.Duration(Focus)}
	}
	m.counter = clamp(m.counter+1, 0, m.settings.SessionsBeforeLongBreak)
	if m.counter >= m.settings.SessionsBeforeLongBreak {
		return Transition{Mode: LongBreak, Duration: m.settings.Duration(LongBreak)}
	}
	return Transition{Mode: ShortBreak, Duration: m.settings.Duration(ShortBreak)}
}

func (m *Machine) peekNext() Mode {
	if m.session.Mode != Focus {
		return Focus
	}
	if m.counter+1 >= m.settings.SessionsBeforeLongBreak {
		return LongBreak
	}
	return ShortBreak
}

func (m *Machine) apply(t Transition) {
	m.session = Session{Mode: t.Mode, Duration: t.Duration, Remaining: t.Duration}
	if t.Mode == LongBreak {
		m.counter = 0
	}
	m.pending = nil
}
