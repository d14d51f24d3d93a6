package audit

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar date format accepted by history queries.
const DateLayout = "2006-01-02"

// ErrInvalidWindow is returned for an unknown timezone or a malformed date.
var ErrInvalidWindow = errors.New("invalid history window")

// Window is a half-open time interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// IsEmpty reports whether no instant falls inside the window.
func (w Window) IsEmpty() bool {
	return !w.Start.Before(w.End)
}

// ResolveWindow converts calendar dates in timezone into a Window covering every
// instant from the start of startDate through the end of endDate. End is the
// start of the day after endDate, so days shortened or lengthened by DST are
// covered exactly.
func ResolveWindow(timezone, startDate, endDate string) (Window, error) {
	if timezone == "" {
		return Window{}, fmt.Errorf("%w: timezone is required", ErrInvalidWindow)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Window{}, fmt.Errorf("%w: unknown timezone %q", ErrInvalidWindow, timezone)
	}

	start, err := time.Parse(DateLayout, startDate)
	if err != nil {
		return Window{}, fmt.Errorf("%w: start date %q", ErrInvalidWindow, startDate)
	}
	end, err := time.Parse(DateLayout, endDate)
	if err != nil {
		return Window{}, fmt.Errorf("%w: end date %q", ErrInvalidWindow, endDate)
	}

	return Window{
		Start: startOfDay(start.Year(), start.Month(), start.Day(), loc),
		End:   startOfDay(end.Year(), end.Month(), end.Day()+1, loc),
	}, nil
}

// startOfDay returns the first instant of the given calendar day in loc. When
// local midnight is skipped by a DST transition, that is the transition itself.
func startOfDay(year int, month time.Month, day int, loc *time.Location) time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	want := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	for {
		y, m, d := t.Date()
		if !time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Before(want) {
			return t
		}
		_, next := t.ZoneBounds()
		if next.IsZero() {
			return t
		}
		t = next
	}
}
