package common

import (
	"testing"
	"time"
)

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.Local)
	cases := []struct {
		at   time.Time
		want string
	}{
		{now.Add(-10 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "12:00"},
		{now.AddDate(0, 0, -3), "Aug 27"},
	}
	for _, c := range cases {
		if got := RelativeTime(c.at, now); got != c.want {
			t.Errorf("RelativeTime(%v) = %q, want %q", c.at, got, c.want)
		}
	}
}

func TestDayHeading(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.Local)
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	}
	if got := DayHeading(day(2026, 8, 30), now); got != "Today" {
		t.Errorf("today heading = %q", got)
	}
	if got := DayHeading(day(2026, 8, 29), now); got != "Yesterday" {
		t.Errorf("yesterday heading = %q", got)
	}
	if got := DayHeading(day(2026, 3, 14), now); got != "Sat, Mar 14" {
		t.Errorf("same-year heading = %q", got)
	}
	if got := DayHeading(day(2025, 12, 31), now); got != "Wed, Dec 31 2025" {
		t.Errorf("other-year heading = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("short string changed: %q", got)
	}
	if got := Truncate("hello world", 5); got != "hell…" {
		t.Errorf("truncated = %q", got)
	}
	if got := Truncate("héllo wörld", 6); got != "héllo…" {
		t.Errorf("multibyte truncated = %q", got)
	}
}
