package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SoarinFerret/FocusWarden/internal/pomodoro"
	"github.com/SoarinFerret/FocusWarden/internal/usage"
)

// Version 3 is the timer-only backup layout.
const Version = 3

var ErrInvalidBackup = errors.New("invalid backup format")

// AlarmSettings are the alarm preferences carried in a backup.
type AlarmSettings struct {
	Notifications bool   `json:"notifications"`
	Sound         bool   `json:"sound"`
	SoundType     string `json:"soundType"`
	CustomSound   string `json:"customSound,omitempty"`
}

type Backup struct {
	Version     int                `json:"version"`
	Timestamp   int64              `json:"timestamp"`
	Stats       usage.History      `json:"stats"`
	Settings    *AlarmSettings     `json:"settings"`
	TimerConfig *pomodoro.Settings `json:"timerConfig"`
	Session     *pomodoro.Snapshot `json:"session,omitempty"`
}

// Export stamps the backup and encodes it.
func Export(b Backup, now time.Time) ([]byte, error) {
	b.Version = Version
	b.Timestamp = now.UnixMilli()
	return json.Marshal(b)
}

// Parse decodes a backup. At least one of stats, settings or timer config
// must be present.
func Parse(data []byte) (Backup, error) {
	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return Backup{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if b.Stats == nil && b.Settings == nil && b.TimerConfig == nil {
		return Backup{}, ErrInvalidBackup
	}
	if b.TimerConfig != nil {
		s := b.TimerConfig.Normalize()
		b.TimerConfig = &s
	}
	return b, nil
}
