// Package interval holds the time-of-day interval shared by plan blocks and
// actual sessions, together with the overlap arithmetic and the conflict guard
// that keeps each kind disjoint within a day.
package interval

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind distinguishes the two interval collections of a day.
type Kind string

const (
	KindPlan   Kind = "plan"
	KindActual Kind = "actual"
)

func (k Kind) String() string { return string(k) }

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindPlan || k == KindActual
}

// TimeOfDay is a wall-clock time expressed as minutes since midnight.
// 1440 (24:00) is allowed so an interval can end at the close of the day.
type TimeOfDay int

const (
	Midnight TimeOfDay = 0
	EndOfDay TimeOfDay = 24 * 60
)

// Clock builds a TimeOfDay from hours and minutes.
func Clock(h, m int) TimeOfDay {
	return TimeOfDay(h*60 + m)
}

// ParseTimeOfDay parses "HH:MM" (or "H:MM").
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(ms) != 2 || hs == "" || len(hs) > 2 {
		return 0, fmt.Errorf("parse time %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, fmt.Errorf("parse time %q: want HH:MM", s)
	}
	m, err := strconv.Atoi(ms)
	if err != nil {
		return 0, fmt.Errorf("parse time %q: want HH:MM", s)
	}
	if m < 0 || m > 59 || h < 0 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("parse time %q: out of range", s)
	}
	return Clock(h, m), nil
}

// MustParseTimeOfDay is ParseTimeOfDay for literals known to be valid.
func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// Valid reports whether t lies within a single day.
func (t TimeOfDay) Valid() bool {
	return t >= Midnight && t <= EndOfDay
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// On returns the instant t falls on for the given day.
func (t TimeOfDay) On(day time.Time) time.Time {
	d := Day(day)
	return d.Add(time.Duration(t) * time.Minute)
}

// FromTime takes the wall-clock hour and minute of ts.
func FromTime(ts time.Time) TimeOfDay {
	return Clock(ts.Hour(), ts.Minute())
}

// Interval is the shape shared by plan blocks and actual sessions.
type Interval struct {
	ID           int64
	Kind         Kind
	Date         time.Time
	Start        TimeOfDay
	End          TimeOfDay
	Label        string
	Category     string
	LinkedTaskID *int64
}

// Minutes is the length of the interval.
func (iv Interval) Minutes() int {
	return Duration(iv)
}

// Range renders the interval as "HH:MM-HH:MM".
func (iv Interval) Range() string {
	return iv.Start.String() + "-" + iv.End.String()
}

// Line renders the interval as "HH:MM-HH:MM: label".
func (iv Interval) Line() string {
	return iv.Range() + ": " + iv.Label
}

func (iv Interval) String() string {
	return fmt.Sprintf("%s (%s - %s)", iv.Label, iv.Start, iv.End)
}

// SameDay reports whether both intervals belong to the same calendar day.
func (iv Interval) SameDay(o Interval) bool {
	return DateKey(iv.Date) == DateKey(o.Date)
}

const dateLayout = "2006-01-02"

// Day truncates t to its calendar day, expressed in UTC. The wall-clock date
// of t is kept regardless of its location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateKey formats t's calendar day as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return Day(t).Format(dateLayout)
}

// ParseDate parses YYYY-MM-DD into a calendar day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}
