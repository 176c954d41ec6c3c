// Package paycycle does the calendar arithmetic for pay cycles anchored on
// the 26th of every month.
package paycycle

import "time"

// AnchorDay is the day of month a new pay cycle starts on.
const AnchorDay = 26

// Cycle is the pay cycle a reference date falls in.
type Cycle struct {
	Start    time.Time
	DaysLeft int
}

// Current returns the cycle containing ref.
func Current(ref time.Time) Cycle {
	return Cycle{
		Start:    LastPayDate(ref),
		DaysLeft: DaysLeftOfMonth(ref),
	}
}

// LastPayDate returns the 26th that opened the cycle ref belongs to. Days 1-25
// belong to the cycle started on the previous month's 26th.
func LastPayDate(ref time.Time) time.Time {
	d := Date(ref)
	if d.Day() < AnchorDay {
		// time.Date normalises month 0 to December of the previous year.
		return time.Date(d.Year(), d.Month()-1, AnchorDay, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(d.Year(), d.Month(), AnchorDay, 0, 0, 0, 0, time.UTC)
}

// DaysLeftOfMonth counts the days from ref up to the next 26th. On the 26th
// itself the result is 0.
func DaysLeftOfMonth(ref time.Time) int {
	d := Date(ref)
	next := time.Date(d.Year(), d.Month(), AnchorDay, 0, 0, 0, 0, time.UTC)
	if d.Day() > AnchorDay {
		next = time.Date(d.Year(), d.Month()+1, AnchorDay, 0, 0, 0, 0, time.UTC)
	}
	return DaysBetween(d, next)
}

// Date truncates t to its calendar date at midnight UTC, keeping the
// year/month/day as seen in t's own location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween is the number of whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Date(b).Sub(Date(a)).Hours() / 24)
}

// Layout is the wire format for dates in query strings and upstream payloads.
const Layout = "2006-01-02"

// Parse reads a YYYY-MM-DD date.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// Format renders t as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(Layout)
}
