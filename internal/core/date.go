package core

import (
	"fmt"
	"time"
)

// Date is a plain calendar date with no time component and no time zone.
// All arithmetic is whole-day arithmetic on the proleptic Gregorian
// calendar; dates are never compared by subtracting timestamps, so leap
// years and daylight-saving transitions cannot introduce off-by-one days.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate creates a Date, normalizing out-of-range components the same way
// time.Date does (e.g. January 32 becomes February 1).
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current local calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Midnight returns the date at 00:00:00 UTC. It is the canonical instant
// used for day counting.
func (d Date) Midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// At returns the date at the given local wall-clock time.
func (d Date) At(hour, min, sec int) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, min, sec, 0, time.Local)
}

// AddDays returns the date n calendar days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return DateOf(d.Midnight().AddDate(0, 0, n))
}

// DaysUntil returns the number of whole days from d to o. It is negative
// when o is before d. Both endpoints are anchored at UTC midnight, so the
// difference is always an exact multiple of 24 hours.
func (d Date) DaysUntil(o Date) int {
	return int(o.Midnight().Sub(d.Midnight()) / (24 * time.Hour))
}

// Weekday returns the day of the week (Sunday = 0).
func (d Date) Weekday() time.Weekday {
	return d.Midnight().Weekday()
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Date) Before(o Date) bool { return d.Midnight().Before(o.Midnight()) }
func (d Date) After(o Date) bool  { return d.Midnight().After(o.Midnight()) }
func (d Date) Equal(o Date) bool  { return d == o }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) String() string {
	return d.Midnight().Format("2006-01-02")
}

// MarshalJSON encodes the date as "YYYY-MM-DD", matching the persisted
// snapshot format.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD" and, for snapshots written by older
// versions, a full RFC 3339 timestamp whose date part is kept.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("parse date: not a JSON string: %s", s)
	}
	s = s[1 : len(s)-1]
	if len(s) > 10 {
		s = s[:10]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
