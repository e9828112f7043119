package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/SoarinFerret/FocusWarden/internal/pomodoro"
)

type SoundType string

const (
	SoundPulse   SoundType = "pulse"
	SoundDigital SoundType = "digital"
	SoundCustom  SoundType = "custom"
)

type TimerConfig struct {
	FocusMinutes            int  `toml:"focus_minutes"`
	ShortBreakMinutes       int  `toml:"short_break_minutes"`
	LongBreakMinutes        int  `toml:"long_break_minutes"`
	SessionsBeforeLongBreak int  `toml:"sessions_before_long_break"`
	AutoStart               bool `toml:"auto_start"`
}

type AlarmConfig struct {
	Sound              *bool     `toml:"sound"`
	SoundType          SoundType `toml:"sound_type"`
	CustomSound        string    `toml:"custom_sound,omitempty"`
	Notifications      *bool     `toml:"notifications"`
	InhibitScreensaver *bool     `toml:"inhibit_screensaver"`
}

// IdleConfig pauses the timer when the user steps away.
type IdleConfig struct {
	PauseOnSleep *bool `toml:"pause_on_sleep"`
	PauseOnLock  *bool `toml:"pause_on_lock"`
}

type StorageConfig struct {
	StateFile   string `toml:"state_file"`
	JournalFile string `toml:"journal_file"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type MetricsConfig struct {
	Listen string `toml:"listen,omitempty"`
}

type Config struct {
	Timer   TimerConfig   `toml:"timer"`
	Alarm   AlarmConfig   `toml:"alarm"`
	Idle    IdleConfig    `toml:"idle"`
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
	Metrics MetricsConfig `toml:"metrics"`
}

// Settings converts the timer section for the state machine.
func (t TimerConfig) Settings() pomodoro.Settings {
	return pomodoro.Settings{
		FocusMinutes:            t.FocusMinutes,
		ShortBreakMinutes:       t.ShortBreakMinutes,
		LongBreakMinutes:        t.LongBreakMinutes,
		SessionsBeforeLongBreak: t.SessionsBeforeLongBreak,
		AutoStart:               t.AutoStart,
	}.Normalize()
}

func TimerFromSettings(s pomodoro.Settings) TimerConfig {
	s = s.Normalize()
	return TimerConfig{
		FocusMinutes:            s.FocusMinutes,
		ShortBreakMinutes:       s.ShortBreakMinutes,
		LongBreakMinutes:        s.LongBreakMinutes,
		SessionsBeforeLongBreak: s.SessionsBeforeLongBreak,
		AutoStart:               s.AutoStart,
	}
}

// SetDefault fills unset values and clamps the timer into range.
func (c *Config) SetDefault() {
	d := pomodoro.DefaultSettings()
	if c.Timer.FocusMinutes == 0 {
		c.Timer.FocusMinutes = d.FocusMinutes
	}
	if c.Timer.ShortBreakMinutes == 0 {
		c.Timer.ShortBreakMinutes = d.ShortBreakMinutes
	}
	if c.Timer.LongBreakMinutes == 0 {
		c.Timer.LongBreakMinutes = d.LongBreakMinutes
	}
	if c.Timer.SessionsBeforeLongBreak == 0 {
		c.Timer.SessionsBeforeLongBreak = d.SessionsBeforeLongBreak
	}
	c.Timer = TimerFromSettings(c.Timer.Settings())

	if c.Alarm.Sound == nil {
		defaultVal := true
		c.Alarm.Sound = &defaultVal
	}
	if c.Alarm.Notifications == nil {
		defaultVal := true
		c.Alarm.Notifications = &defaultVal
	}
	if c.Alarm.InhibitScreensaver == nil {
		defaultVal := true
		c.Alarm.InhibitScreensaver = &defaultVal
	}
	if c.Idle.PauseOnSleep == nil {
		defaultVal := true
		c.Idle.PauseOnSleep = &defaultVal
	}
	if c.Idle.PauseOnLock == nil {
		defaultVal := false
		c.Idle.PauseOnLock = &defaultVal
	}

	switch c.Alarm.SoundType {
	case SoundPulse, SoundDigital:
	case SoundCustom:
		if c.Alarm.CustomSound == "" {
			c.Alarm.SoundType = SoundPulse
		}
	default:
		c.Alarm.SoundType = SoundPulse
	}

	if c.Storage.StateFile == "" {
		c.Storage.StateFile = filepath.Join(StateDir(), "state.json")
	}
	if c.Storage.JournalFile == "" {
		c.Storage.JournalFile = filepath.Join(StateDir(), "journal.db")
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// StateDir follows the XDG base directory layout.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "focuswarden")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "focuswarden"
	}
	return filepath.Join(home, ".local", "state", "focuswarden")
}

// DefaultPath is where focuswardend looks for its config file.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(dir, "focuswarden", "config.toml")
}

// Default returns a fully defaulted configuration.
func Default() Config {
	var c Config
	c.SetDefault()
	return c
}

// LoadConfigFromFile reads a TOML config; a missing file yields the defaults.
func LoadConfigFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, err
	}
	return LoadConfigFromBytes(data)
}

func LoadConfigFromBytes(data []byte) (Config, error) {
	var config Config
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	config.SetDefault()
	return config, nil
}

// SaveConfigToFile atomically writes the config as TOML.
func SaveConfigToFile(path string, config Config) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
