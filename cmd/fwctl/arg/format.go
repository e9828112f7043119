package arg

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/SoarinFerret/FocusWarden/internal/pomodoro"
)

var errBadDuration = errors.New("expected minutes or mm:ss")

// parseDuration accepts "25" (minutes) or "mm:ss" and returns seconds,
// capped at 999:59.
func parseDuration(s string) (int, error) {
	s = strings.TrimSpace(s)
	mins, secs, hasColon := strings.Cut(s, ":")

	m, err := strconv.Atoi(mins)
	if err != nil || m < 0 {
		return 0, fmt.Errorf("%w: %q", errBadDuration, s)
	}
	sec := 0
	if hasColon {
		sec, err = strconv.Atoi(secs)
		if err != nil || sec < 0 || sec > 59 {
			return 0, fmt.Errorf("%w: %q", errBadDuration, s)
		}
	}
	if m > pomodoro.MaxSeconds/60 {
		return pomodoro.MaxSeconds, nil
	}
	return m*60 + sec, nil
}

// formatClock renders seconds as mm:ss. Minutes may exceed two digits.
func formatClock(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func modeColor(m pomodoro.Mode) *color.Color {
	switch m {
	case pomodoro.ShortBreak:
		return color.New(color.FgGreen, color.Bold)
	case pomodoro.LongBreak:
		return color.New(color.FgCyan, color.Bold)
	}
	return color.New(color.FgRed, color.Bold)
}

// bar draws a fixed-width bar filled to percent.
func bar(percent, width int) string {
	percent = max(0, min(percent, 100))
	filled := percent * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func progress(st pomodoro.Status) int {
	if st.Duration == 0 {
		return 100
	}
	return (st.Duration - st.Remaining) * 100 / st.Duration
}

func printStatus(w io.Writer, st pomodoro.Status) {
	modeColor(st.Mode).Fprintf(w, "%s", st.Mode.Label())
	fmt.Fprintf(w, "  %s / %s", formatClock(st.Remaining), formatClock(st.Duration))

	switch {
	case st.Pending != nil:
		color.New(color.FgYellow, color.Bold).Fprint(w, "  [alarm]")
	case st.Running:
		fmt.Fprint(w, "  [running]")
	default:
		fmt.Fprint(w, "  [paused]")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s %d%%\n", bar(progress(st), 30), progress(st))
	fmt.Fprintf(w, "Session %d of %d before a long break\n", st.SessionCounter, st.SessionsBeforeLongBreak)

	if st.Pending != nil {
		fmt.Fprintf(w, "Up next: %s (%s), run `fwctl confirm` to continue\n",
			st.Pending.Mode.Label(), formatClock(st.Pending.Duration))
		return
	}
	fmt.Fprintf(w, "Up next: %s\n", st.Next.Label())
}
