package calendar

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seasonCalendar() *Calendar {
	now := date(2025, time.July, 15)
	return New(func() time.Time { return now }, SeasonWindows(2025)...)
}

func TestSeasonWindowBounds(t *testing.T) {
	c := seasonCalendar()

	cases := []struct {
		at   time.Time
		open bool
	}{
		{date(2025, time.May, 31), false},
		{date(2025, time.June, 1), true},
		{date(2025, time.August, 31), true},
		{time.Date(2025, time.August, 31, 23, 59, 59, 0, time.UTC), true},
		{date(2025, time.September, 1), false},
		{date(2026, time.January, 1), true},
		{date(2026, time.January, 31), true},
		{date(2026, time.February, 1), false},
	}
	for _, tc := range cases {
		if got := c.IsWindowOpen(tc.at); got != tc.open {
			t.Fatalf("IsWindowOpen(%s) got=%v want=%v", tc.at.Format("2006-01-02"), got, tc.open)
		}
	}
}

func TestWindowAtNamesTheWindow(t *testing.T) {
	c := seasonCalendar()

	w, ok := c.WindowAt(date(2025, time.July, 15))
	if !ok || w.Name != "summer 2025" {
		t.Fatalf("summer lookup got=%q ok=%v", w.Name, ok)
	}
	w, ok = c.WindowAt(date(2026, time.January, 10))
	if !ok || w.Name != "winter 2026" {
		t.Fatalf("winter lookup got=%q ok=%v", w.Name, ok)
	}
}

func TestWindowStart(t *testing.T) {
	c := seasonCalendar()

	start, ok := c.WindowStart(date(2025, time.July, 15))
	if !ok || !start.Equal(date(2025, time.June, 1)) {
		t.Fatalf("window start got=%s ok=%v", start, ok)
	}
	if _, ok := c.WindowStart(date(2025, time.October, 1)); ok {
		t.Fatalf("closed market should have no window start")
	}
}

func TestDaysUntilDeadline(t *testing.T) {
	c := seasonCalendar()

	if got := c.DaysUntilDeadline(date(2025, time.August, 1)); got != 30 {
		t.Fatalf("days until deadline got=%d want=30", got)
	}
	if got := c.DaysUntilDeadline(date(2025, time.October, 1)); got != -1 {
		t.Fatalf("closed market days got=%d want=-1", got)
	}
}

func TestIsDeadlineDay(t *testing.T) {
	c := seasonCalendar()

	if !c.IsDeadlineDay(date(2025, time.August, 31)) {
		t.Fatalf("August 31st should be deadline day")
	}
	if !c.IsDeadlineDay(time.Date(2025, time.August, 31, 10, 30, 0, 0, time.UTC)) {
		t.Fatalf("deadline day should hold at any hour")
	}
	if c.IsDeadlineDay(date(2025, time.August, 30)) {
		t.Fatalf("August 30th is not deadline day")
	}
	if c.IsDeadlineDay(date(2025, time.September, 1)) {
		t.Fatalf("a closed market has no deadline day")
	}
}

func TestNextWindow(t *testing.T) {
	c := seasonCalendar()

	w, ok := c.NextWindow(date(2025, time.May, 1))
	if !ok || w.Name != "summer 2025" {
		t.Fatalf("next from May got=%q ok=%v", w.Name, ok)
	}
	w, ok = c.NextWindow(date(2025, time.October, 1))
	if !ok || w.Name != "winter 2026" {
		t.Fatalf("next from October got=%q ok=%v", w.Name, ok)
	}
	if _, ok := c.NextWindow(date(2026, time.March, 1)); ok {
		t.Fatalf("no window after the season ends")
	}
}

func TestTimelineOrdered(t *testing.T) {
	c := seasonCalendar()

	events := c.Timeline()
	if len(events) != 4 {
		t.Fatalf("event count got=%d want=4", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Date.Before(events[i-1].Date) {
			t.Fatalf("timeline out of order at %d: %s after %s",
				i, events[i-1].Description, events[i].Description)
		}
	}
	if events[0].Description != "summer 2025 window opens" {
		t.Fatalf("first event got=%q", events[0].Description)
	}
	if events[3].Description != "winter 2026 deadline day" {
		t.Fatalf("last event got=%q", events[3].Description)
	}
}

func TestTodayUsesInjectedClock(t *testing.T) {
	now := date(2025, time.June, 2)
	c := New(func() time.Time { return now }, SeasonWindows(2025)...)

	if !c.Today().Equal(now) {
		t.Fatalf("today got=%s", c.Today())
	}
	now = date(2025, time.September, 5)
	if !c.Today().Equal(now) {
		t.Fatalf("clock should follow the closure, got=%s", c.Today())
	}
}
