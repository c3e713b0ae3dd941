// Package calendar tracks transfer windows across a season: when the market
// is open, how long until the deadline, and the window timeline.
package calendar

import (
	"fmt"
	"sort"
	"time"
)

// Window is one registration period.
type Window struct {
	Name  string
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// SeasonWindows returns the standard windows for a season starting in the
// given year: the summer window from June 1st to August 31st and the winter
// window covering the following January.
func SeasonWindows(year int) []Window {
	return []Window{
		{
			Name:  fmt.Sprintf("summer %d", year),
			Start: time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(year, time.August, 31, 23, 59, 59, 0, time.UTC),
		},
		{
			Name:  fmt.Sprintf("winter %d", year+1),
			Start: time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(year+1, time.January, 31, 23, 59, 59, 0, time.UTC),
		},
	}
}

// Event is one entry of the window timeline.
type Event struct {
	Date        time.Time
	Description string
}

// Calendar answers window questions against an injected clock so runs are
// reproducible.
type Calendar struct {
	windows []Window
	now     func() time.Time
}

func New(now func() time.Time, windows ...Window) *Calendar {
	return &Calendar{windows: windows, now: now}
}

// Today returns the current simulation date.
func (c *Calendar) Today() time.Time {
	return c.now()
}

// IsWindowOpen reports whether any window is open at t.
func (c *Calendar) IsWindowOpen(t time.Time) bool {
	_, ok := c.WindowAt(t)
	return ok
}

// WindowAt returns the window open at t, if any.
func (c *Calendar) WindowAt(t time.Time) (Window, bool) {
	for _, w := range c.windows {
		if w.Contains(t) {
			return w, true
		}
	}
	return Window{}, false
}

// WindowStart returns the start of the window open at t.
func (c *Calendar) WindowStart(t time.Time) (time.Time, bool) {
	w, ok := c.WindowAt(t)
	if !ok {
		return time.Time{}, false
	}
	return w.Start, true
}

// DaysUntilDeadline returns whole days from t to the end of the current
// window, or -1 when no window is open.
func (c *Calendar) DaysUntilDeadline(t time.Time) int {
	w, ok := c.WindowAt(t)
	if !ok {
		return -1
	}
	return int(w.End.Sub(t).Hours() / 24)
}

// IsDeadlineDay reports whether t is the final day of an open window.
func (c *Calendar) IsDeadlineDay(t time.Time) bool {
	w, ok := c.WindowAt(t)
	if !ok {
		return false
	}
	y1, m1, d1 := t.Date()
	y2, m2, d2 := w.End.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// NextWindow returns the first window starting after t.
func (c *Calendar) NextWindow(t time.Time) (Window, bool) {
	var next Window
	found := false
	for _, w := range c.windows {
		if w.Start.After(t) && (!found || w.Start.Before(next.Start)) {
			next = w
			found = true
		}
	}
	return next, found
}

// Timeline lists the open and deadline events of every window in date order.
func (c *Calendar) Timeline() []Event {
	var events []Event
	for _, w := range c.windows {
		events = append(events,
			Event{Date: w.Start, Description: w.Name + " window opens"},
			Event{Date: w.End, Description: w.Name + " deadline day"},
		)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events
}
