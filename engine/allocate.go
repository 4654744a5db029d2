/*
allocate.go - The minute allocation walk

PURPOSE:
  The core algorithm. Walks the period's validated shifts minute by minute
  in strict chronological order, classifies each minute into one of the
  seven pay categories, accumulates the monthly totals against the
  190-hour baseline, and tracks paid overtime money against the
  50%-of-salary cap. The minute whose value fills the cap is split
  fractionally between paid and compensatory; every later overtime minute
  is 100% compensatory in its own category.

ORDERING:
  Days ascend by date, shift 1 before shift 2 within a day, minutes in
  wall-clock order within a shift. The cap crossing point therefore has a
  well-defined, auditable (date, time).

FESTIVITY:
  A shift's festive flag is fixed by its calendar day of entry. A Saturday
  22:00-02:00 shift stays non-festive after midnight even when the Sunday
  has begun; only the clock hour wraps. This mirrors how the entry form
  attributes a shift to the day it was keyed under.

CAP ARITHMETIC:
  All money is decimal, so "the cap is reached exactly" is an exact
  comparison, not an epsilon test. When a whole minute fills the cap to
  the peso, that minute is fully paid (fraction 1.0, no compensatory
  sliver) and the crossing instant is still recorded.

SEE ALSO:
  - types.go: Categories, Accumulator, DaySnapshot, Result
  - summary.go: Turning the category minutes into currency
*/
package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var oneMinute = decimal.NewFromInt(1)

// Allocate runs the chronological minute walk over a period.
//
// days must already be validated (ValidatePeriod); faulted days are the
// caller's responsibility to exclude. cal may be nil (Sundays only).
// The returned Result is self-contained; Allocate keeps no state between
// calls and identical inputs yield identical outputs.
func Allocate(days []ValidatedDay, monthlySalary decimal.Decimal, cal *Calendar) (Result, error) {
	if !monthlySalary.IsPositive() {
		return Result{}, ErrNonPositiveSalary
	}

	rates := RatesFor(monthlySalary)

	res := Result{
		Categories:   NewCategoryMinutes(),
		Compensatory: NewCategoryMinutes(),
		Rates:        rates,
	}
	acc := &res.Accumulator
	acc.ExtraPayAccrued = decimal.Zero

	sorted := make([]ValidatedDay, len(days))
	copy(sorted, days)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	for _, day := range sorted {
		festive := cal.IsFestive(day.Date)
		dayDelta := NewCategoryMinutes()

		for _, shift := range day.Shifts {
			walkShift(shift, festive, rates, acc, res.Categories, res.Compensatory, dayDelta)
		}

		res.Snapshots = append(res.Snapshots, DaySnapshot{
			Date:                   day.Date,
			CumulativeMinutes:      acc.TotalMinutes,
			CumulativeExtraMinutes: max(0, acc.TotalMinutes-BaselineMinutes),
			ExtraPayAccrued:        acc.ExtraPayAccrued,
			BaselineReached:        acc.TotalMinutes >= BaselineMinutes,
			CapReached:             acc.CapReached,
			Categories:             dayDelta,
		})
	}

	return res, nil
}

// walkShift classifies every minute of one shift, mutating the accumulator
// and the paid/compensatory counters in place.
func walkShift(shift Shift, festive bool, rates Rates, acc *Accumulator, paid, comp, dayDelta CategoryMinutes) {
	n := shift.Minutes()
	for i := 0; i < n; i++ {
		at := shift.Start.Add(time.Duration(i) * time.Minute)
		night := isNightHour(at.Hour())

		acc.TotalMinutes++

		if acc.TotalMinutes <= BaselineMinutes {
			// Premium territory. Ordinary daytime minutes on Mon-Sat earn
			// base pay only and fall outside the seven categories.
			var cat Category
			switch {
			case festive && night:
				cat = FestiveNight
			case festive:
				cat = FestiveDay
			case night:
				cat = NightOrdinary
			default:
				continue
			}
			paid.Add(cat, oneMinute)
			dayDelta.Add(cat, oneMinute)
			continue
		}

		// Overtime territory.
		cat := overtimeCategory(festive, night)
		value := rates.Minute.Mul(Multipliers[cat])

		switch {
		case acc.ExtraPayAccrued.GreaterThanOrEqual(rates.Cap):
			// Past the cap: the whole minute converts to compensatory time.
			comp.Add(cat, oneMinute)

		case acc.ExtraPayAccrued.Add(value).LessThanOrEqual(rates.Cap):
			// Fits under (or exactly fills) the cap: fully paid.
			paid.Add(cat, oneMinute)
			dayDelta.Add(cat, oneMinute)
			acc.ExtraPayAccrued = acc.ExtraPayAccrued.Add(value)
			if acc.ExtraPayAccrued.Equal(rates.Cap) {
				markCapReached(acc, at)
			}

		default:
			// This minute's value crosses the cap: split it. The paid share
			// is the fraction whose value fills the cap exactly; the rest is
			// compensatory in the same category.
			fraction := rates.Cap.Sub(acc.ExtraPayAccrued).Div(value)
			paid.Add(cat, fraction)
			dayDelta.Add(cat, fraction)
			comp.Add(cat, oneMinute.Sub(fraction))
			acc.ExtraPayAccrued = rates.Cap
			markCapReached(acc, at)
		}
	}
}

func markCapReached(acc *Accumulator, at time.Time) {
	if acc.CapReached {
		return
	}
	acc.CapReached = true
	acc.CapReachedAt = at
}

func isNightHour(h int) bool {
	return h >= 18 || h < 6
}

func overtimeCategory(festive, night bool) Category {
	switch {
	case festive && night:
		return ExtraFestiveNight
	case festive:
		return ExtraFestiveDay
	case night:
		return ExtraNight
	default:
		return ExtraDay
	}
}
