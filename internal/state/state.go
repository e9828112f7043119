package state

import (
	"github.com/SoarinFerret/FocusWarden/internal/pomodoro"
	"github.com/SoarinFerret/FocusWarden/internal/usage"
)

const currentVersion = 1

// State is the top-level structure stored in the state.json file.
type State struct {
	Session pomodoro.Snapshot `json:"session"`
	Usage   usage.History     `json:"stats"`
	Version int               `json:"version"`
}

func newState() *State {
	return &State{
		Usage:   usage.History{},
		Version: currentVersion,
	}
}

// fresh reports whether the session snapshot was never written.
func (s *State) fresh() bool {
	return s.Session == (pomodoro.Snapshot{})
}
