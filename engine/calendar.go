/*
calendar.go - Festive day classification

PURPOSE:
  Decides whether a calendar date is "festive" for pay purposes: Sundays
  and declared public holidays are treated identically, both by premiums
  and by overtime rates.

DESIGN:
  A Calendar is an immutable snapshot of the holiday list, keyed by exact
  date (no recurrence or year-rollover logic). Classification is
  side-effect free, so one Calendar can be shared across allocation runs.

SEE ALSO:
  - allocate.go: Consumes IsFestive during the minute walk
  - store: Supplies the holiday records the calendar is built from
*/
package engine

import (
	"sort"
	"time"
)

// =============================================================================
// HOLIDAY - A declared public holiday
// =============================================================================

type HolidayKind string

const (
	HolidayFixed   HolidayKind = "FIXED"   // same date every year (declared per year)
	HolidayMovable HolidayKind = "MOVABLE" // moved to the following Monday
)

// Holiday is one declared holiday date.
type Holiday struct {
	Date time.Time
	Name string
	Kind HolidayKind
}

const dateKeyLayout = "2006-01-02"

// =============================================================================
// CALENDAR - Sunday/holiday lookup
// =============================================================================

// Calendar classifies dates against a fixed holiday snapshot.
// A nil Calendar classifies Sundays only.
type Calendar struct {
	byDate map[string]Holiday
}

// NewCalendar builds a calendar from a holiday list. Duplicate dates keep
// the last entry.
func NewCalendar(holidays []Holiday) *Calendar {
	c := &Calendar{byDate: make(map[string]Holiday, len(holidays))}
	for _, h := range holidays {
		c.byDate[h.Date.Format(dateKeyLayout)] = h
	}
	return c
}

// IsHoliday reports whether the date matches a declared holiday exactly.
func (c *Calendar) IsHoliday(date time.Time) bool {
	if c == nil {
		return false
	}
	_, ok := c.byDate[date.Format(dateKeyLayout)]
	return ok
}

// IsFestive reports whether the date is a Sunday or a declared holiday.
func (c *Calendar) IsFestive(date time.Time) bool {
	return date.Weekday() == time.Sunday || c.IsHoliday(date)
}

// Holidays returns the declared holidays for a year, date-ascending.
func (c *Calendar) Holidays(year int) []Holiday {
	if c == nil {
		return nil
	}
	var out []Holiday
	for _, h := range c.byDate {
		if h.Date.Year() == year {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
