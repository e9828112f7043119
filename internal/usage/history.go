package usage

import (
	"fmt"
	"time"
)

// chartCeiling is the focus time that fills a weekly bar.
const chartCeiling = 6 * 60 * 60

var weekdayInitials = [7]string{"S", "M", "T", "W", "T", "F", "S"}

// Record attributes one second to the given date.
func (h History) Record(date string, focus bool) {
	d := h[date]
	if focus {
		d.Focus++
	} else {
		d.Break++
	}
	h[date] = d
}

func (h History) Day(date string) Day {
	return h[date]
}

func (h History) today(now time.Time) Day {
	return h[DateKey(now)]
}

// Week returns the last seven days ending today, oldest first.
func (h History) Week(now time.Time) []DayStat {
	week := make([]DayStat, 0, 7)
	for i := 6; i >= 0; i-- {
		d := now.AddDate(0, 0, -i)
		key := DateKey(d)
		day := h[key]
		week = append(week, DayStat{
			Date:       key,
			Weekday:    weekdayInitials[d.Weekday()],
			Focus:      day.Focus,
			Break:      day.Break,
			BarPercent: barPercent(day.Focus),
		})
	}
	return week
}

func (h History) Summary(now time.Time) Summary {
	week := h.Week(now)
	var total int64
	for _, d := range week {
		total += d.Focus
	}
	return Summary{
		Today:       h.today(now),
		Week:        week,
		WeekFocus:   total,
		WeekAverage: total / 7,
	}
}

// Clone returns a copy safe to hand outside the owning lock.
func (h History) Clone() History {
	out := make(History, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// Sanitize drops entries whose key is not a date or whose totals are negative.
func (h History) Sanitize() History {
	out := make(History, len(h))
	for k, v := range h {
		if _, err := time.Parse(DateLayout, k); err != nil {
			continue
		}
		if v.Focus < 0 || v.Break < 0 {
			continue
		}
		out[k] = v
	}
	return out
}

func barPercent(focus int64) int {
	p := int(focus * 100 / chartCeiling)
	if p < 10 {
		return 10
	}
	if p > 100 {
		return 100
	}
	return p
}

// FormatDuration renders seconds as "25m" or "1h 5m".
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
