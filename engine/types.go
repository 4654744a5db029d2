/*
Package engine computes shift premiums, overtime, and compensatory time
for a monthly pay period under the 190-hour baseline rules.

PURPOSE:
  This package contains the pure calculation core. Given one raw shift
  record per calendar day, a monthly salary, and a holiday calendar, it
  classifies every worked minute into a pay category, accumulates monthly
  totals, and converts paid overtime into compensatory time once the
  statutory 50%-of-salary cap is crossed.

KEY CONCEPTS IN THIS FILE (types.go):
  - Category: One of the seven pay categories (3 premiums + 4 overtime)
  - CategoryMinutes: Per-category minute counters for a walk
  - Accumulator: Running monthly state (minutes worked, extra pay, cap)
  - DaySnapshot: Cumulative progress at the end of each processed day
  - Result: Everything Allocate returns

PAY MODEL:
  Minutes within the 190-hour monthly baseline earn premiums (recargos)
  when they fall on nights or festive days. Minutes beyond the baseline
  are overtime (horas extras) paid at a full elevated rate, but total
  overtime pay is capped at 50% of the monthly salary; the excess becomes
  compensatory time off, tracked per category so it keeps its rate.

DESIGN PRINCIPLES:
  1. Purity: Allocate is a function of (days, salary, calendar). No I/O,
     no state carried between invocations.
  2. Precision: decimal.Decimal for all money and for the one fractional
     minute the cap split can produce. No float epsilon anywhere.
  3. Order sensitivity: the walk is strictly chronological, so the cap
     crossing point is auditable down to the minute.

SEE ALSO:
  - shift.go: Raw entry parsing and per-day validation
  - calendar.go: Sunday/holiday classification
  - allocate.go: The minute walk
  - summary.go: Category minutes to currency amounts
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// BASELINE AND RATES
// =============================================================================

// BaselineHours is the monthly hour threshold beyond which work is overtime.
const BaselineHours = 190

// BaselineMinutes is the baseline expressed in minutes.
const BaselineMinutes = BaselineHours * 60

// Rates derives the per-hour and per-minute value of a monthly salary and
// the 50%-of-salary overtime cap.
type Rates struct {
	Hourly decimal.Decimal
	Minute decimal.Decimal
	Cap    decimal.Decimal
}

// RatesFor computes the rates for a monthly salary.
func RatesFor(monthlySalary decimal.Decimal) Rates {
	hourly := monthlySalary.Div(decimal.NewFromInt(BaselineHours))
	return Rates{
		Hourly: hourly,
		Minute: hourly.Div(decimal.NewFromInt(60)),
		Cap:    monthlySalary.Mul(decimal.RequireFromString("0.5")),
	}
}

// =============================================================================
// CATEGORIES - Seven mutually exclusive pay categories
// =============================================================================

type Category string

const (
	// Premium categories (within the 190h baseline).
	NightOrdinary Category = "recargo_nocturno"         // Mon-Sat 18:00-06:00
	FestiveDay    Category = "recargo_diurno_festivo"   // Sun/holiday 06:00-18:00
	FestiveNight  Category = "recargo_nocturno_festivo" // Sun/holiday 18:00-06:00

	// Overtime categories (beyond the 190h baseline).
	ExtraDay          Category = "extra_diurna_lv"         // Mon-Sat 06:00-18:00
	ExtraNight        Category = "extra_nocturna_lv"       // Mon-Sat 18:00-06:00
	ExtraFestiveDay   Category = "extra_diurna_festivo"    // Sun/holiday 06:00-18:00
	ExtraFestiveNight Category = "extra_nocturna_festivo"  // Sun/holiday 18:00-06:00
)

// Multipliers are the fixed statutory percentage multipliers per category.
// NightOrdinary is a surcharge on top of base pay (base pay itself is out of
// scope); the four overtime multipliers represent the full minute value.
var Multipliers = map[Category]decimal.Decimal{
	NightOrdinary:     decimal.RequireFromString("0.35"),
	FestiveDay:        decimal.RequireFromString("2.00"),
	FestiveNight:      decimal.RequireFromString("2.35"),
	ExtraDay:          decimal.RequireFromString("1.25"),
	ExtraNight:        decimal.RequireFromString("1.75"),
	ExtraFestiveDay:   decimal.RequireFromString("2.25"),
	ExtraFestiveNight: decimal.RequireFromString("2.75"),
}

// PremiumCategories lists the baseline premium categories in display order.
var PremiumCategories = []Category{NightOrdinary, FestiveDay, FestiveNight}

// OvertimeCategories lists the overtime categories in display order.
var OvertimeCategories = []Category{ExtraDay, ExtraNight, ExtraFestiveDay, ExtraFestiveNight}

// IsOvertime reports whether the category applies beyond the 190h baseline.
func (c Category) IsOvertime() bool {
	switch c {
	case ExtraDay, ExtraNight, ExtraFestiveDay, ExtraFestiveNight:
		return true
	}
	return false
}

// =============================================================================
// CATEGORY MINUTES - Per-category minute counters
// =============================================================================

// CategoryMinutes holds a (possibly fractional) minute count per category.
// Counts are whole minutes except at the single cap-crossing minute, where
// the paid and compensatory shares of one minute are split fractionally.
type CategoryMinutes map[Category]decimal.Decimal

func NewCategoryMinutes() CategoryMinutes {
	return make(CategoryMinutes)
}

// Get returns the minutes for a category (zero when absent).
func (cm CategoryMinutes) Get(c Category) decimal.Decimal {
	return cm[c]
}

// Add increments a category by the given minutes.
func (cm CategoryMinutes) Add(c Category, minutes decimal.Decimal) {
	cm[c] = cm[c].Add(minutes)
}

// Total sums all category minutes.
func (cm CategoryMinutes) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range cm {
		total = total.Add(v)
	}
	return total
}

// Clone returns an independent copy.
func (cm CategoryMinutes) Clone() CategoryMinutes {
	out := make(CategoryMinutes, len(cm))
	for k, v := range cm {
		out[k] = v
	}
	return out
}

// =============================================================================
// ACCUMULATOR - Running monthly state, reset per Allocate call
// =============================================================================

// Accumulator is the running state of one chronological walk. It is scoped
// strictly to a single Allocate invocation and never persisted.
type Accumulator struct {
	// TotalMinutes is the count of all worked minutes walked so far,
	// including ordinary (non-premium) minutes.
	TotalMinutes int

	// ExtraPayAccrued is the monetary value of paid overtime so far.
	// Monotonically non-decreasing; never exceeds the cap.
	ExtraPayAccrued decimal.Decimal

	// CapReached is set the first (and only) time ExtraPayAccrued hits the
	// 50%-of-salary cap.
	CapReached bool

	// CapReachedAt is the wall-clock instant of the minute that filled the
	// cap. Zero when CapReached is false.
	CapReachedAt time.Time
}

// =============================================================================
// DAY SNAPSHOT - Cumulative progress at end of day (reporting only)
// =============================================================================

// DaySnapshot records cumulative totals through the end of one processed
// day plus that day's own category breakdown. Derived, read-only; the
// category totals in Result remain the source of truth.
type DaySnapshot struct {
	Date                   time.Time
	CumulativeMinutes      int
	CumulativeExtraMinutes int
	ExtraPayAccrued        decimal.Decimal
	BaselineReached        bool
	CapReached             bool
	Categories             CategoryMinutes // this day's deltas only
}

// =============================================================================
// RESULT - Everything one allocation run produces
// =============================================================================

// Result is the output of Allocate for a full pay period.
type Result struct {
	// Categories holds paid minutes per category (premiums and overtime).
	Categories CategoryMinutes

	// Compensatory holds minutes converted to time off after the cap,
	// keyed by the overtime category they would have been paid under.
	Compensatory CategoryMinutes

	// Accumulator is the final running state.
	Accumulator Accumulator

	// Snapshots has one entry per processed day, in chronological order.
	Snapshots []DaySnapshot

	// Rates are the derived rates used for the walk.
	Rates Rates
}
