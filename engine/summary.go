/*
summary.go - Monetary projection of category minutes

PURPOSE:
  Converts the minute totals an allocation run produced into currency
  amounts, using the fixed per-category multipliers. Pure arithmetic over
  Result; introduces no new classification logic.

ROUNDING:
  None. Amounts keep full decimal precision; display formatting (two
  decimals, thousands separators) is a presentation concern.

SEE ALSO:
  - allocate.go: Produces the Result this projects
  - types.go: Multipliers
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// SUMMARY TYPES
// =============================================================================

// CompensatoryLine values one overtime category's compensatory time at that
// category's own rate, preserving the rate for time-off valuation.
type CompensatoryLine struct {
	Minutes decimal.Decimal
	Value   decimal.Decimal
}

// Summary is the monetary breakdown of one allocation run.
type Summary struct {
	// PerCategory is the paid amount per category. For NightOrdinary this
	// is the surcharge amount; for overtime it is the full minute value.
	PerCategory map[Category]decimal.Decimal

	// TotalPremiums sums the three baseline premium categories.
	TotalPremiums decimal.Decimal

	// TotalOvertimePaid sums the four paid overtime categories. Equals the
	// cap whenever the cap was reached.
	TotalOvertimePaid decimal.Decimal

	// TotalPay is premiums plus paid overtime.
	TotalPay decimal.Decimal

	// Compensatory values the post-cap time off per overtime category.
	Compensatory map[Category]CompensatoryLine

	// CompensatoryMinutes and CompensatoryValue aggregate the above.
	CompensatoryMinutes decimal.Decimal
	CompensatoryValue   decimal.Decimal
}

// =============================================================================
// SUMMARIZE
// =============================================================================

// Summarize projects a Result into currency using the given minute rate.
// amount = minutes * minuteRate * multiplier, per category.
func Summarize(res Result, minuteRate decimal.Decimal) Summary {
	s := Summary{
		PerCategory:         make(map[Category]decimal.Decimal, len(Multipliers)),
		Compensatory:        make(map[Category]CompensatoryLine, len(OvertimeCategories)),
		TotalPremiums:       decimal.Zero,
		TotalOvertimePaid:   decimal.Zero,
		CompensatoryMinutes: decimal.Zero,
		CompensatoryValue:   decimal.Zero,
	}

	for _, cat := range PremiumCategories {
		amount := categoryAmount(res.Categories.Get(cat), minuteRate, cat)
		s.PerCategory[cat] = amount
		s.TotalPremiums = s.TotalPremiums.Add(amount)
	}

	for _, cat := range OvertimeCategories {
		amount := categoryAmount(res.Categories.Get(cat), minuteRate, cat)
		s.PerCategory[cat] = amount
		s.TotalOvertimePaid = s.TotalOvertimePaid.Add(amount)

		minutes := res.Compensatory.Get(cat)
		line := CompensatoryLine{
			Minutes: minutes,
			Value:   categoryAmount(minutes, minuteRate, cat),
		}
		s.Compensatory[cat] = line
		s.CompensatoryMinutes = s.CompensatoryMinutes.Add(line.Minutes)
		s.CompensatoryValue = s.CompensatoryValue.Add(line.Value)
	}

	s.TotalPay = s.TotalPremiums.Add(s.TotalOvertimePaid)
	return s
}

func categoryAmount(minutes, minuteRate decimal.Decimal, cat Category) decimal.Decimal {
	return minutes.Mul(minuteRate).Mul(Multipliers[cat])
}
