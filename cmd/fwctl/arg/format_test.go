package arg

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SoarinFerret/FocusWarden/internal/engine"
	"github.com/SoarinFerret/FocusWarden/internal/journal"
	"github.com/SoarinFerret/FocusWarden/internal/pomodoro"
	"github.com/SoarinFerret/FocusWarden/internal/usage"
)

func init() {
	color.NoColor = true
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "25", want: 1500},
		{in: "0", want: 0},
		{in: " 5 ", want: 300},
		{in: "12:30", want: 750},
		{in: "999:59", want: 999*60 + 59},
		{in: "0:05", want: 5},
		{in: "1000", want: pomodoro.MaxSeconds},
		{in: "35791395", want: pomodoro.MaxSeconds},
		{in: "1000:30", want: pomodoro.MaxSeconds},
		{in: "1:60", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "1:xx", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDuration(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, errBadDuration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "25:00", formatClock(1500))
	assert.Equal(t, "00:09", formatClock(9))
	assert.Equal(t, "999:59", formatClock(999*60+59))
}

func TestBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░", bar(50, 10))
	assert.Equal(t, "░░░░░░░░░░", bar(-5, 10))
	assert.Equal(t, "██████████", bar(140, 10))
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	printStatus(&buf, pomodoro.Status{
		Session:                 pomodoro.Session{Mode: pomodoro.Focus, Duration: 1500, Remaining: 750},
		SessionCounter:          1,
		SessionsBeforeLongBreak: 4,
		Running:                 true,
		Next:                    pomodoro.ShortBreak,
	})
	out := buf.String()
	assert.Contains(t, out, "Focus  12:30 / 25:00  [running]")
	assert.Contains(t, out, "50%")
	assert.Contains(t, out, "Session 1 of 4")
	assert.Contains(t, out, "Up next: Short Break")
}

func TestPrintStatus_Pending(t *testing.T) {
	var buf bytes.Buffer
	printStatus(&buf, pomodoro.Status{
		Session:                 pomodoro.Session{Mode: pomodoro.Focus, Duration: 1500},
		SessionCounter:          4,
		SessionsBeforeLongBreak: 4,
		Pending:                 &pomodoro.Transition{Mode: pomodoro.LongBreak, Duration: 900},
		Next:                    pomodoro.LongBreak,
	})
	out := buf.String()
	assert.Contains(t, out, "[alarm]")
	assert.Contains(t, out, "Up next: Long Break (15:00), run `fwctl confirm`")
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	printStats(&buf, engine.Stats{
		Summary: usage.Summary{
			Today:       usage.Day{Focus: 3600, Break: 600},
			Week:        []usage.DayStat{{Weekday: "T", Focus: 3600, BarPercent: 16}},
			WeekFocus:   3600,
			WeekAverage: 514,
		},
		CompletedToday: 2,
	})
	out := buf.String()
	assert.Contains(t, out, "Focus:     1h 0m")
	assert.Contains(t, out, "Break:     10m")
	assert.Contains(t, out, "Completed: 2")
	assert.Contains(t, out, "  T ███░░░░░░░░░░░░░░░░░ 1h 0m")
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	printHistory(&buf, nil)
	assert.Equal(t, "No finished sessions yet\n", buf.String())

	buf.Reset()
	printHistory(&buf, []journal.Entry{{
		Mode:    pomodoro.ShortBreak,
		Planned: 300,
		Elapsed: 120,
		Outcome: journal.Skipped,
		EndedAt: time.Date(2026, 10, 15, 9, 5, 0, 0, time.Local),
	}})
	assert.Equal(t, "Oct 15 09:05  Short Break  02:00 / 05:00  skipped\n", buf.String())
}

func TestTimerFields(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().AddFlagSet(configSetCmd.Flags())
	require.NoError(t, cmd.Flags().Parse([]string{"--focus", "50", "--auto-start=true"}))

	fields := timerFields(cmd)
	assert.Equal(t, map[string]any{"focus": 50, "autoStart": true}, fields)
}
