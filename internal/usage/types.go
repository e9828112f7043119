package usage

import "time"

// DateLayout is the local calendar date used as the history key.
const DateLayout = "2006-01-02"

// Day holds the seconds attributed to each kind of session on one date.
type Day struct {
	Focus int64 `json:"focus"`
	Break int64 `json:"break"`
}

// History maps a local date key to that day's totals.
type History map[string]Day

// DayStat is one bar of the weekly chart.
type DayStat struct {
	Date       string `json:"date"`
	Weekday    string `json:"weekday"`
	Focus      int64  `json:"focus"`
	Break      int64  `json:"break"`
	BarPercent int    `json:"bar_percent"`
}

// Summary is what `fwctl stats` renders.
type Summary struct {
	Today       Day       `json:"today"`
	Week        []DayStat `json:"week"`
	WeekFocus   int64     `json:"week_focus"`
	WeekAverage int64     `json:"week_average"`
}

func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}
