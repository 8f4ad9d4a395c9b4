package common

import (
	"fmt"
	"time"
)

// RelativeTime renders a timestamp the way chat clients do: seconds and
// minutes for fresh items, the clock time within a day, the date beyond.
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return t.Local().Format("15:04")
	default:
		return t.Local().Format("Jan 2")
	}
}

// DayHeading renders a partition date as Today, Yesterday or the explicit
// date. day and now must be local midnights of their respective days.
func DayHeading(day, now time.Time) string {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	case day.Year() == today.Year():
		return day.Format("Mon, Jan 2")
	default:
		return day.Format("Mon, Jan 2 2006")
	}
}

// Truncate shortens s to max runes, appending an ellipsis when cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}
