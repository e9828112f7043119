package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SoarinFerret/FocusWarden/internal/pomodoro"
	"github.com/SoarinFerret/FocusWarden/internal/usage"
)

func TestHandleTick_NotRunning(t *testing.T) {
	m := tempManager(t)
	assert.Nil(t, m.HandleTick())
	assert.Equal(t, 25*60, m.Status().Remaining)
}

func TestHandleTick_Expiry(t *testing.T) {
	m := tempManager(t)
	_, err := m.HandleSetDuration(2)
	require.NoError(t, err)
	m.HandleStart()

	assert.Nil(t, m.HandleTick())
	exp := m.HandleTick()
	require.NotNil(t, exp)
	assert.Equal(t, pomodoro.Session{Mode: pomodoro.Focus, Duration: 2, Remaining: 0}, exp.Ended)
	assert.Equal(t, pomodoro.Transition{Mode: pomodoro.ShortBreak, Duration: 300}, exp.Next)
	assert.False(t, exp.AutoStarted)

	st := m.Status()
	assert.False(t, st.Running)
	require.NotNil(t, st.Pending)
	assert.Equal(t, pomodoro.ShortBreak, st.Next)

	assert.Nil(t, m.HandleTick(), "no ticks while the alarm is pending")

	next, ok := m.HandleConfirm()
	assert.True(t, ok)
	assert.Equal(t, pomodoro.ShortBreak, next.Mode)
	assert.Equal(t, 300, m.Status().Remaining)

	_, ok = m.HandleConfirm()
	assert.False(t, ok)
}

func TestHandleTick_ExpiryAutoStart(t *testing.T) {
	m := tempManager(t)
	s := pomodoro.DefaultSettings()
	s.AutoStart = true
	m.HandleSettings(s)
	_, err := m.HandleSetDuration(1)
	require.NoError(t, err)
	m.HandleStart()

	exp := m.HandleTick()
	require.NotNil(t, exp)
	assert.True(t, exp.AutoStarted)
	assert.True(t, m.Status().Running)
	assert.Nil(t, m.Status().Pending)
}

func TestHandleToggle(t *testing.T) {
	m := tempManager(t)
	assert.True(t, m.HandleToggle().Running)
	assert.False(t, m.HandleToggle().Running)
	assert.True(t, m.HandleStart().Running)
	assert.False(t, m.HandlePause().Running)
}

func TestHandleSkip(t *testing.T) {
	m := tempManager(t)
	m.HandleStart()
	m.HandleTick()
	m.HandleTick()
	m.HandleTick()

	c := m.HandleSkip()
	assert.Equal(t, pomodoro.Focus, c.Ended.Mode)
	assert.Equal(t, 3, c.Elapsed)
	assert.Equal(t, pomodoro.ShortBreak, c.Next.Mode)
	assert.False(t, m.Status().Running)
	assert.Equal(t, usage.Day{Focus: 3}, m.Stats().Today)
}

func TestHandleReset(t *testing.T) {
	m := tempManager(t)
	m.HandleSkip()
	m.HandleSkip()
	m.HandleStart()
	m.HandleTick()

	c := m.HandleReset()
	assert.Equal(t, 1, c.Elapsed)
	assert.Equal(t, pomodoro.Transition{Mode: pomodoro.Focus, Duration: 1500}, c.Next)
	st := m.Status()
	assert.Equal(t, st.Duration, st.Remaining)
	assert.Equal(t, 1, st.SessionCounter)
	assert.False(t, st.Running)
}

func TestHandleSetDuration_WhileRunning(t *testing.T) {
	m := tempManager(t)
	m.HandleStart()
	_, err := m.HandleSetDuration(60)
	assert.ErrorIs(t, err, pomodoro.ErrRunning)
}

func TestHandleSettings(t *testing.T) {
	m := tempManager(t)
	m.HandleSettings(pomodoro.Settings{FocusMinutes: 50, ShortBreakMinutes: 10, LongBreakMinutes: 20, SessionsBeforeLongBreak: 2})
	assert.Equal(t, 50, m.Settings().FocusMinutes)
	assert.Equal(t, 2, m.Status().SessionsBeforeLongBreak)

	m.HandleReset()
	assert.Equal(t, 50*60, m.Status().Remaining)
}

func TestRestore(t *testing.T) {
	m := tempManager(t)
	m.HandleStart()
	m.HandleTick()

	history := usage.History{"2026-10-10": {Focus: 3000, Break: 600}, "garbage": {Focus: 1}}
	session := &pomodoro.Snapshot{Mode: pomodoro.LongBreak, Duration: 900, Remaining: 120, SessionCounter: 0}
	assert.True(t, m.Restore(history, session))

	st := m.Status()
	assert.Equal(t, pomodoro.LongBreak, st.Mode)
	assert.Equal(t, 120, st.Remaining)
	assert.False(t, st.Running)

	_, h := m.Snapshot()
	assert.Equal(t, usage.History{"2026-10-10": {Focus: 3000, Break: 600}}, h)
}

func TestRestore_KeepsSessionWhenOnlyHistoryGiven(t *testing.T) {
	m := tempManager(t)
	m.HandleSkip()

	assert.True(t, m.Restore(usage.History{}, nil))
	assert.Equal(t, pomodoro.ShortBreak, m.Status().Mode)
	assert.Equal(t, 1, m.Status().SessionCounter)
}

func TestHandleSkip_WhilePendingIsExpired(t *testing.T) {
	m := tempManager(t)
	_, err := m.HandleSetDuration(1)
	require.NoError(t, err)
	m.HandleStart()
	require.NotNil(t, m.HandleTick())

	c := m.HandleSkip()
	assert.True(t, c.Expired)
	assert.Equal(t, pomodoro.ShortBreak, c.Next.Mode)
	assert.Equal(t, 1, m.Status().SessionCounter)
}
