// Package clock handles the wall-clock arithmetic of the ride board:
// "HH:MM" departure times and calendar-day comparison.
package clock

import (
	"fmt"
	"sync"
	"time"

	apperrors "carpool/internal/errors"
)

// MinutesPerDay is the number of minutes between two midnights.
const MinutesPerDay = 24 * 60

// ParseHHMM converts a "HH:MM" string into minutes since midnight.
func ParseHHMM(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrInvalidTime, s)
	}
	h, okH := twoDigits(s[0], s[1])
	m, okM := twoDigits(s[3], s[4])
	if !okH || !okM || h > 23 || m > 59 {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrInvalidTime, s)
	}
	return h*60 + m, nil
}

// ValidHHMM reports whether s is a well-formed "HH:MM" time of day.
func ValidHHMM(s string) bool {
	_, err := ParseHHMM(s)
	return err == nil
}

// FormatHHMM renders minutes since midnight as "HH:MM".
func FormatHHMM(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// MinuteOfDay returns the minutes elapsed since midnight of t in its own location.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// SameDay reports whether a and b fall on the same calendar date in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// DayKey formats the calendar date of t in loc as YYYY-MM-DD.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.DateOnly)
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

// Manual is a controllable time source for tests.
type Manual struct {
	mu      sync.Mutex
	current time.Time
}

// NewManual returns a clock set to start.
func NewManual(start time.Time) *Manual {
	return &Manual{current: start}
}

// Now returns the current instant tracked by the clock.
func (c *Manual) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Set moves the clock to t.
func (c *Manual) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new time.
func (c *Manual) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	return c.current
}
