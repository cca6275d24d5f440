package shared

import "time"

// DateOnly truncates t to midnight UTC. Movement and due dates are calendar
// dates with no time component; every comparison in the core goes through
// this normalisation.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FirstOfMonth returns the first calendar day of t's month.
func FirstOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// DateRange bounds a conjunctive date filter. Zero endpoints are open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether the normalised date d falls inside the range.
func (r DateRange) Contains(d time.Time) bool {
	d = DateOnly(d)
	if !r.From.IsZero() && d.Before(DateOnly(r.From)) {
		return false
	}
	if !r.To.IsZero() && d.After(DateOnly(r.To)) {
		return false
	}
	return true
}
