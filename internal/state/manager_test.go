package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SoarinFerret/FocusWarden/internal/pomodoro"
	"github.com/SoarinFerret/FocusWarden/internal/usage"
)

var testClock = &pomodoro.TestClock{CurrentTime: time.Date(2026, 10, 15, 14, 0, 0, 0, time.Local)}

func tempStateFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "state.json")
}

func tempManager(t *testing.T) *Manager {
	m, err := NewManager(tempStateFile(t), pomodoro.DefaultSettings(), testClock, zerolog.Nop())
	require.NoError(t, err)
	return m
}

func readState(t *testing.T, path string) State {
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var s State
	require.NoError(t, json.Unmarshal(data, &s))
	return s
}

func TestNewManager_CreatesFileIfNotExist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	m, err := NewManager(path, pomodoro.DefaultSettings(), testClock, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, pomodoro.Focus, m.Status().Mode)

	s := readState(t, path)
	assert.Equal(t, 25*60, s.Session.Remaining)
	assert.Equal(t, currentVersion, s.Version)
}

func TestNewManager_MalformedFileFallsBack(t *testing.T) {
	path := tempStateFile(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	m, err := NewManager(path, pomodoro.DefaultSettings(), testClock, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 25*60, m.Status().Remaining)

	_, err = os.Stat(path + ".corrupt")
	assert.NoError(t, err, "broken file is kept aside")
	readState(t, path)
}

func TestNewManager_WrongTypesFallBack(t *testing.T) {
	path := tempStateFile(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"session": {"mode": 7}}`), 0644))

	m, err := NewManager(path, pomodoro.DefaultSettings(), testClock, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, pomodoro.Focus, m.Status().Mode)
}

func TestNewManager_InvalidSessionFallsBack(t *testing.T) {
	path := tempStateFile(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"session": {"mode": "nap", "duration": 10, "timeLeft": 5}, "stats": {"2026-10-14": {"focus": 60, "break": 0}}}`), 0644))

	m, err := NewManager(path, pomodoro.DefaultSettings(), testClock, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, pomodoro.Focus, m.Status().Mode)
	_, history := m.Snapshot()
	assert.Equal(t, usage.Day{Focus: 60}, history.Day("2026-10-14"), "usage survives a bad session record")
}

func TestManager_SaveAndLoad(t *testing.T) {
	path := tempStateFile(t)
	m, err := NewManager(path, pomodoro.DefaultSettings(), testClock, zerolog.Nop())
	require.NoError(t, err)

	m.HandleSkip()
	m.HandleStart()
	m.HandleTick()
	m.HandleTick()

	m2, err := NewManager(path, pomodoro.DefaultSettings(), testClock, zerolog.Nop())
	require.NoError(t, err)
	st := m2.Status()
	assert.Equal(t, pomodoro.ShortBreak, st.Mode)
	assert.Equal(t, 5*60-2, st.Remaining)
	assert.Equal(t, 1, st.SessionCounter)
	assert.False(t, st.Running, "a running session is restored paused")

	assert.Equal(t, usage.Day{Break: 2}, m2.Stats().Today)
}

func TestNewManager_AutoStartResumesSavedSession(t *testing.T) {
	path := tempStateFile(t)
	m, err := NewManager(path, pomodoro.DefaultSettings(), testClock, zerolog.Nop())
	require.NoError(t, err)
	m.HandleStart()
	m.HandleTick()
	m.HandlePause()

	auto := pomodoro.DefaultSettings()
	auto.AutoStart = true
	m2, err := NewManager(path, auto, testClock, zerolog.Nop())
	require.NoError(t, err)
	st := m2.Status()
	assert.True(t, st.Running)
	assert.Equal(t, 25*60-1, st.Remaining, "downtime is not credited")
	assert.True(t, readState(t, path).Session.Running)
}

func TestNewManager_AutoStartLeavesPendingAlarm(t *testing.T) {
	path := tempStateFile(t)
	m, err := NewManager(path, pomodoro.DefaultSettings(), testClock, zerolog.Nop())
	require.NoError(t, err)
	_, err = m.HandleSetDuration(1)
	require.NoError(t, err)
	m.HandleStart()
	require.NotNil(t, m.HandleTick())

	auto := pomodoro.DefaultSettings()
	auto.AutoStart = true
	m2, err := NewManager(path, auto, testClock, zerolog.Nop())
	require.NoError(t, err)
	st := m2.Status()
	assert.False(t, st.Running)
	assert.NotNil(t, st.Pending)
}

func TestNewManager_AutoStartIgnoresFreshState(t *testing.T) {
	auto := pomodoro.DefaultSettings()
	auto.AutoStart = true
	m, err := NewManager(tempStateFile(t), auto, testClock, zerolog.Nop())
	require.NoError(t, err)
	assert.False(t, m.Status().Running)
}
