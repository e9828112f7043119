package alarm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/SoarinFerret/FocusWarden/internal/pomodoro"
)

// Alert is what the user sees and hears when a session ends.
type Alert struct {
	Title     string
	Body      string
	Urgent    bool
	Sound     bool
	SoundName string
	SoundFile string
	// NoPopup keeps the alert off the desktop; only sound is played.
	NoPopup bool
}

type Notifier interface {
	Notify(ctx context.Context, a Alert) error
}

// Sound describes how the alarm should sound.
type Sound struct {
	Enabled bool
	Type    string
	File    string
}

// RepeatInterval is how often an unacknowledged alarm fires again.
func (s Sound) RepeatInterval() time.Duration {
	if s.Type == "digital" {
		return 500 * time.Millisecond
	}
	return 2 * time.Second
}

// NewAlert builds the alert for a session that ended in mode `ended`.
func NewAlert(ended pomodoro.Mode, next pomodoro.Transition, sound Sound, needsConfirm bool) Alert {
	a := Alert{
		Title:  "Break Over",
		Body:   fmt.Sprintf("Up next: %s (%s)", next.Mode.Label(), formatMinutes(next.Duration)),
		Urgent: needsConfirm,
		Sound:  sound.Enabled,
	}
	if !ended.IsBreak() {
		a.Title = "Session Complete"
		a.Body = "Great work! Take a breath before continuing.\n" + a.Body
	}
	if needsConfirm {
		a.Body += "\nRun `fwctl confirm` to dismiss the alarm."
	}
	if sound.Enabled {
		switch sound.Type {
		case "digital":
			a.SoundName = "bell"
		case "custom":
			a.SoundFile = sound.File
		default:
			a.SoundName = "alarm-clock-elapsed"
		}
	}
	return a
}

func formatMinutes(seconds int) string {
	if seconds%60 == 0 {
		return fmt.Sprintf("%dm", seconds/60)
	}
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}

// Bell rings the terminal bell on a writer.
type Bell struct {
	W io.Writer
}

func (b Bell) Notify(_ context.Context, a Alert) error {
	if !a.Sound {
		return nil
	}
	_, err := fmt.Fprintf(b.W, "\a%s\n", a.Title)
	return err
}

// Multi fans an alert out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, a Alert) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close withdraws anything the wrapped notifiers left on screen.
func (m Multi) Close(ctx context.Context) error {
	var errs []error
	for _, n := range m {
		if c, ok := n.(interface{ Close(context.Context) error }); ok {
			if err := c.Close(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
