package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/SoarinFerret/FocusWarden/internal/alarm"
	"github.com/SoarinFerret/FocusWarden/internal/backup"
	"github.com/SoarinFerret/FocusWarden/internal/config"
	"github.com/SoarinFerret/FocusWarden/internal/journal"
	"github.com/SoarinFerret/FocusWarden/internal/metrics"
	"github.com/SoarinFerret/FocusWarden/internal/pomodoro"
	"github.com/SoarinFerret/FocusWarden/internal/state"
	"github.com/SoarinFerret/FocusWarden/internal/usage"
)

// Inhibitor holds the screen awake while a session runs.
type Inhibitor interface {
	Set(active bool, reason string) error
}

// Journal records finished sessions.
type Journal interface {
	Append(ctx context.Context, e journal.Entry) (journal.Entry, error)
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
	CountSince(ctx context.Context, mode pomodoro.Mode, outcome journal.Outcome, since time.Time) (int, error)
}

// Deps are the optional collaborators of the engine. Nil fields are skipped.
type Deps struct {
	Notifier   alarm.Notifier
	Inhibitor  Inhibitor
	Journal    Journal
	ConfigPath string
	Clock      pomodoro.Clock
}

// Stats is the usage summary plus today's completed focus sessions.
type Stats struct {
	usage.Summary
	CompletedToday int `json:"completed_today"`
}

// Engine drives the timer once per second and carries out user actions.
type Engine struct {
	stateMgr  *state.Manager
	ringer    *alarm.Ringer
	inhibitor Inhibitor
	journal   Journal
	clock     pomodoro.Clock
	logger    zerolog.Logger

	mu         sync.RWMutex
	config     config.Config
	configPath string

	interval time.Duration
	wake     chan struct{}

	// set after a failed inhibit; ticks stop retrying until the next action
	inhibitFailed atomic.Bool
}

func NewEngine(stateMgr *state.Manager, cfg config.Config, deps Deps, logger zerolog.Logger) *Engine {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = alarm.Multi{}
	}
	clock := deps.Clock
	if clock == nil {
		clock = pomodoro.RealClock{}
	}
	e := &Engine{
		stateMgr:   stateMgr,
		ringer:     alarm.NewRinger(notifier, logger),
		inhibitor:  deps.Inhibitor,
		journal:    deps.Journal,
		clock:      clock,
		logger:     logger.With().Str("component", "engine").Logger(),
		config:     cfg,
		configPath: deps.ConfigPath,
		interval:   time.Second,
		wake:       make(chan struct{}, 1),
	}
	e.sync(stateMgr.Status(), true)
	return e
}

// Run owns the ticker. It exists only while the session is running so a
// paused session never receives a partial second.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info().Msg("Engine started")

	var ticker *time.Ticker
	var tickC <-chan time.Time
	update := func() {
		running := e.stateMgr.Status().Running
		switch {
		case running && ticker == nil:
			ticker = time.NewTicker(e.interval)
			tickC = ticker.C
		case !running && ticker != nil:
			ticker.Stop()
			ticker, tickC = nil, nil
		}
	}
	update()

	for {
		select {
		case <-ctx.Done():
			if ticker != nil {
				ticker.Stop()
			}
			e.ringer.Stop()
			if e.inhibitor != nil {
				if err := e.inhibitor.Set(false, ""); err != nil {
					e.logger.Debug().Err(err).Msg("Failed to release screen inhibit")
				}
			}
			e.logger.Info().Msg("Engine shutting down")
			return nil
		case <-e.wake:
			update()
		case <-tickC:
			e.tick(ctx)
			update()
		}
	}
}

func (e *Engine) tick(ctx context.Context) {
	before := e.stateMgr.Status()
	exp := e.stateMgr.HandleTick()
	if before.Running && before.Pending == nil {
		metrics.TicksTotal.WithLabelValues(string(before.Mode)).Inc()
	}
	if exp != nil {
		e.expire(ctx, exp)
	}
	e.sync(e.stateMgr.Status(), false)
}

func (e *Engine) expire(ctx context.Context, exp *state.Expiry) {
	e.logger.Info().
		Str("mode", string(exp.Ended.Mode)).
		Str("next", string(exp.Next.Mode)).
		Bool("auto_started", exp.AutoStarted).
		Msg("Session complete")

	e.record(ctx, exp.Ended, exp.Ended.Duration, journal.Completed)

	cfg := e.Config()
	if !*cfg.Alarm.Sound && !*cfg.Alarm.Notifications {
		return
	}
	sound := alarm.Sound{
		Enabled: *cfg.Alarm.Sound,
		Type:    string(cfg.Alarm.SoundType),
		File:    cfg.Alarm.CustomSound,
	}
	a := alarm.NewAlert(exp.Ended.Mode, exp.Next, sound, !exp.AutoStarted)
	a.NoPopup = !*cfg.Alarm.Notifications
	var interval time.Duration
	if !exp.AutoStarted {
		interval = sound.RepeatInterval()
	}
	e.ringer.Ring(context.Background(), a, interval)
}

func (e *Engine) record(ctx context.Context, s pomodoro.Session, elapsed int, outcome journal.Outcome) {
	metrics.SessionsTotal.WithLabelValues(string(s.Mode), string(outcome)).Inc()
	if e.journal == nil {
		return
	}
	_, err := e.journal.Append(ctx, journal.Entry{
		Mode:    s.Mode,
		Planned: s.Duration,
		Elapsed: elapsed,
		Outcome: outcome,
		EndedAt: e.clock.Now(),
	})
	if err != nil {
		e.logger.Warn().Err(err).Str("outcome", string(outcome)).Msg("Failed to journal session")
	}
}

// sync brings gauges and the screen inhibit in line with st. A failed
// inhibit is retried on the next user action, not on every tick.
func (e *Engine) sync(st pomodoro.Status, retry bool) {
	metrics.SetState(st.Remaining, st.Running, st.Pending != nil)
	if e.inhibitor == nil {
		return
	}
	if !retry && e.inhibitFailed.Load() {
		return
	}
	cfg := e.Config()
	active := st.Running && cfg.Alarm.InhibitScreensaver != nil && *cfg.Alarm.InhibitScreensaver
	if err := e.inhibitor.Set(active, st.Mode.Label()+" session running"); err != nil {
		if e.inhibitFailed.Swap(true) {
			e.logger.Debug().Err(err).Msg("Failed to update screen inhibit")
		} else {
			e.logger.Warn().Err(err).Msg("Failed to update screen inhibit")
		}
		return
	}
	e.inhibitFailed.Store(false)
}

// changed is called after every user action.
func (e *Engine) changed(st pomodoro.Status) {
	e.sync(st, true)
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *Engine) Status() pomodoro.Status {
	return e.stateMgr.Status()
}

func (e *Engine) Start() pomodoro.Status {
	e.ringer.Stop()
	st := e.stateMgr.HandleStart()
	e.logger.Info().Str("mode", string(st.Mode)).Int("remaining", st.Remaining).Msg("Timer started")
	e.changed(st)
	return st
}

func (e *Engine) Pause() pomodoro.Status {
	st := e.stateMgr.HandlePause()
	e.logger.Info().Int("remaining", st.Remaining).Msg("Timer paused")
	e.changed(st)
	return st
}

func (e *Engine) Toggle() pomodoro.Status {
	e.ringer.Stop()
	st := e.stateMgr.HandleToggle()
	e.logger.Info().Bool("running", st.Running).Msg("Timer toggled")
	e.changed(st)
	return st
}

func (e *Engine) Skip(ctx context.Context) pomodoro.Status {
	e.ringer.Stop()
	c := e.stateMgr.HandleSkip()
	if !c.Expired {
		e.record(ctx, c.Ended, c.Elapsed, journal.Skipped)
	}
	e.logger.Info().Str("from", string(c.Ended.Mode)).Str("to", string(c.Next.Mode)).Msg("Session skipped")
	st := e.stateMgr.Status()
	e.changed(st)
	return st
}

func (e *Engine) Reset(ctx context.Context) pomodoro.Status {
	e.ringer.Stop()
	c := e.stateMgr.HandleReset()
	if !c.Expired && c.Elapsed > 0 {
		e.record(ctx, c.Ended, c.Elapsed, journal.Reset)
	}
	e.logger.Info().Str("mode", string(c.Next.Mode)).Msg("Session reset")
	st := e.stateMgr.Status()
	e.changed(st)
	return st
}

func (e *Engine) SetDuration(seconds int) (pomodoro.Status, error) {
	st, err := e.stateMgr.HandleSetDuration(seconds)
	if err != nil {
		return st, err
	}
	e.logger.Info().Int("seconds", st.Duration).Msg("Duration set")
	e.changed(st)
	return st, nil
}

// Confirm acknowledges the alarm. It reports false when nothing was pending.
func (e *Engine) Confirm() (pomodoro.Status, bool) {
	e.ringer.Stop()
	next, ok := e.stateMgr.HandleConfirm()
	st := e.stateMgr.Status()
	if ok {
		e.logger.Info().Str("mode", string(next.Mode)).Bool("running", st.Running).Msg("Alarm confirmed")
		e.changed(st)
	}
	return st, ok
}

// UpdateTimer applies new timer settings and writes them to the config file.
func (e *Engine) UpdateTimer(s pomodoro.Settings) (pomodoro.Settings, error) {
	s = s.Normalize()
	e.stateMgr.HandleSettings(s)

	e.mu.Lock()
	e.config.Timer = config.TimerFromSettings(s)
	cfg := e.config
	path := e.configPath
	e.mu.Unlock()

	e.changed(e.stateMgr.Status())
	if path == "" {
		return s, nil
	}
	if err := config.SaveConfigToFile(path, cfg); err != nil {
		return s, fmt.Errorf("failed to save config: %w", err)
	}
	return s, nil
}

// ApplyConfig takes a reloaded config file.
func (e *Engine) ApplyConfig(cfg config.Config) {
	e.mu.Lock()
	e.config = cfg
	e.mu.Unlock()

	e.stateMgr.HandleSettings(cfg.Timer.Settings())
	e.logger.Info().Msg("Configuration reloaded")
	e.changed(e.stateMgr.Status())
}

func (e *Engine) Config() config.Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.config
}

func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Summary: e.stateMgr.Stats()}
	if e.journal == nil {
		return stats, nil
	}
	now := e.clock.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	n, err := e.journal.CountSince(ctx, pomodoro.Focus, journal.Completed, midnight)
	if err != nil {
		return stats, fmt.Errorf("failed to count sessions: %w", err)
	}
	stats.CompletedToday = n
	return stats, nil
}

func (e *Engine) History(ctx context.Context, limit int) ([]journal.Entry, error) {
	if e.journal == nil {
		return nil, nil
	}
	return e.journal.Recent(ctx, limit)
}

// Export produces a backup of statistics, settings and the current session.
func (e *Engine) Export() ([]byte, error) {
	snap, history := e.stateMgr.Snapshot()
	settings := e.stateMgr.Settings()
	cfg := e.Config()
	return backup.Export(backup.Backup{
		Stats: history,
		Settings: &backup.AlarmSettings{
			Notifications: *cfg.Alarm.Notifications,
			Sound:         *cfg.Alarm.Sound,
			SoundType:     string(cfg.Alarm.SoundType),
			CustomSound:   cfg.Alarm.CustomSound,
		},
		TimerConfig: &settings,
		Session:     &snap,
	}, e.clock.Now())
}

// Import restores a backup. Sections missing from the backup are left alone.
func (e *Engine) Import(data []byte) error {
	b, err := backup.Parse(data)
	if err != nil {
		return err
	}
	e.ringer.Stop()

	if b.Settings != nil {
		notifications, sound := b.Settings.Notifications, b.Settings.Sound
		e.mu.Lock()
		e.config.Alarm.Notifications = &notifications
		e.config.Alarm.Sound = &sound
		e.config.Alarm.SoundType = config.SoundType(b.Settings.SoundType)
		e.config.Alarm.CustomSound = b.Settings.CustomSound
		e.config.SetDefault()
		e.mu.Unlock()
	}
	if !e.stateMgr.Restore(b.Stats, b.Session) {
		e.logger.Warn().Msg("Backup session was malformed, started a fresh focus session")
	}

	settings := e.stateMgr.Settings()
	if b.TimerConfig != nil {
		settings = *b.TimerConfig
	}
	if _, err := e.UpdateTimer(settings); err != nil {
		return err
	}
	e.logger.Info().Msg("Backup imported")
	return nil
}
