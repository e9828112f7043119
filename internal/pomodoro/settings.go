package pomodoro

// Settings are the operator-editable timer durations.
type Settings struct {
	FocusMinutes            int  `json:"focus"`
	ShortBreakMinutes       int  `json:"shortBreak"`
	LongBreakMinutes        int  `json:"longBreak"`
	SessionsBeforeLongBreak int  `json:"sessionsBeforeLongBreak"`
	AutoStart               bool `json:"autoStart"`
}

func DefaultSettings() Settings {
	return Settings{
		FocusMinutes:            25,
		ShortBreakMinutes:       5,
		LongBreakMinutes:        15,
		SessionsBeforeLongBreak: 4,
		AutoStart:               false,
	}
}

// Normalize clamps every field into the range the settings screen allows.
func (s Settings) Normalize() Settings {
	s.FocusMinutes = clamp(s.FocusMinutes, 1, 120)
	s.ShortBreakMinutes = clamp(s.ShortBreakMinutes, 1, 30)
	s.LongBreakMinutes = clamp(s.LongBreakMinutes, 1, 60)
	if s.SessionsBeforeLongBreak < 1 {
		s.SessionsBeforeLongBreak = 1
	}
	return s
}

// Duration returns the configured length of a mode in seconds.
func (s Settings) Duration(m Mode) int {
	switch m {
	case ShortBreak:
		return s.ShortBreakMinutes * 60
	case LongBreak:
		return s.LongBreakMinutes * 60
	}
	return s.FocusMinutes * 60
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
