package pomodoro

import (
	"errors"
	"time"
)

type Mode string

const (
	Focus      Mode = "focus"
	ShortBreak Mode = "shortBreak"
	LongBreak  Mode = "longBreak"
)

func (m Mode) Valid() bool {
	switch m {
	case Focus, ShortBreak, LongBreak:
		return true
	}
	return false
}

func (m Mode) IsBreak() bool {
	return m == ShortBreak || m == LongBreak
}

func (m Mode) Label() string {
	switch m {
	case ShortBreak:
		return "Short Break"
	case LongBreak:
		return "Long Break"
	}
	return "Focus"
}

// MaxSeconds is the largest value accepted by manual time entry (999:59).
const MaxSeconds = 999*60 + 59

var ErrRunning = errors.New("session is running")

// Session is the active countdown.
type Session struct {
	Mode      Mode `json:"mode"`
	Duration  int  `json:"duration"`
	Remaining int  `json:"remaining"`
}

// Transition is the next session computed when one ends or is skipped.
type Transition struct {
	Mode     Mode `json:"mode"`
	Duration int  `json:"duration"`
}

// Snapshot is the persisted form of the machine.
type Snapshot struct {
	Mode           Mode        `json:"mode"`
	Duration       int         `json:"duration"`
	Remaining      int         `json:"timeLeft"`
	SessionCounter int         `json:"sessionCount"`
	Running        bool        `json:"running,omitempty"`
	Pending        *Transition `json:"pending,omitempty"`
}

// Status is a read-only view for the presentation layer.
type Status struct {
	Session
	SessionCounter          int         `json:"session_count"`
	SessionsBeforeLongBreak int         `json:"sessions_before_long_break"`
	Running                 bool        `json:"running"`
	Pending                 *Transition `json:"pending,omitempty"`
	Next                    Mode        `json:"next"`
}

// Clock provides the time used to pick the usage date bucket.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// TestClock returns a fixed time.
type TestClock struct {
	CurrentTime time.Time
}

func (t *TestClock) Now() time.Time {
	return t.CurrentTime
}
