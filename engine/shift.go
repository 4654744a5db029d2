/*
shift.go - Shift parsing and per-day validation

PURPOSE:
  Turns the raw entry/exit strings the clerk types (up to two shifts per
  calendar day, 24-hour HH:mm) into normalized Shift intervals, or a list
  of blocking faults for that day.

VALIDATION RULES:
  Blocking faults (the day is skipped, its contribution is zero):
  - Missing counterpart half of a turn ("Turno 1: Salida incompleta")
  - Malformed time string
  - Entry chronologically after exit, after midnight normalization
  - The two shifts overlap (touching endpoints are NOT an overlap)
  - Entry equal to exit within one shift (zero-length, duplicate-looking)

  Advisory warnings (never block):
  - Exit earlier than entry means the shift crosses midnight; the exit is
    treated as next-day and the clerk is told so.

PERMISSIVE PERIOD POLICY:
  Faults are collected across all days and surfaced together, but the
  period still computes as long as at least one day anywhere validates.
  Only a period with no valid day at all is rejected (ErrNoValidData).

SEE ALSO:
  - errors.go: DayFault, FaultError, ErrNoValidData
  - allocate.go: Consumes the validated days
*/
package engine

import (
	"fmt"
	"regexp"
	"sort"
	"time"
)

// timePattern accepts 24-hour HH:mm, hours 00-23, minutes 00-59.
var timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// IsValidClock reports whether a string is a well-formed HH:mm time.
func IsValidClock(s string) bool {
	return timePattern.MatchString(s)
}

// =============================================================================
// INPUT AND OUTPUT TYPES
// =============================================================================

// DayEntry is one raw per-day record as captured by the entry form.
// Each (entry, exit) pair is either both-present or both-absent.
type DayEntry struct {
	Date time.Time
	In1  string
	Out1 string
	In2  string
	Out2 string
}

// Shift is a normalized half-open worked interval [Start, End).
// End may fall on the next calendar day when the shift crosses midnight.
type Shift struct {
	Start           time.Time
	End             time.Time
	CrossesMidnight bool
}

// Minutes returns the shift duration in whole minutes.
func (s Shift) Minutes() int {
	return int(s.End.Sub(s.Start) / time.Minute)
}

// ValidatedDay is a day that passed validation, with zero, one, or two
// normalized shifts and any advisory warnings.
type ValidatedDay struct {
	Date     time.Time
	Shifts   []Shift
	Warnings []string
}

// Minutes returns the day's total worked minutes across its shifts.
func (d ValidatedDay) Minutes() int {
	total := 0
	for _, s := range d.Shifts {
		total += s.Minutes()
	}
	return total
}

// =============================================================================
// PER-DAY VALIDATION
// =============================================================================

// ValidateDay validates one raw day entry. It returns the validated day and
// the blocking fault messages; a day with faults must not be allocated.
func ValidateDay(entry DayEntry) (ValidatedDay, []string) {
	day := ValidatedDay{Date: entry.Date}
	var faults []string

	turns := []struct {
		label   string
		in, out string
	}{
		{"Turno 1", entry.In1, entry.Out1},
		{"Turno 2", entry.In2, entry.Out2},
	}

	for _, turn := range turns {
		if turn.in == "" && turn.out == "" {
			continue
		}
		if turn.in != "" && turn.out == "" {
			faults = append(faults, turn.label+": Salida incompleta")
			continue
		}
		if turn.in == "" && turn.out != "" {
			faults = append(faults, turn.label+": Entrada incompleta")
			continue
		}
		if !IsValidClock(turn.in) || !IsValidClock(turn.out) {
			faults = append(faults, turn.label+": Hora inválida")
			continue
		}
		if turn.in == turn.out {
			faults = append(faults, "Entrada y Salida del mismo turno son idénticas")
			continue
		}

		shift := normalizeShift(entry.Date, turn.in, turn.out)
		if shift.Start.After(shift.End) {
			faults = append(faults, turn.label+": Entrada después de Salida")
			continue
		}
		if shift.CrossesMidnight {
			day.Warnings = append(day.Warnings,
				fmt.Sprintf("%s: la salida %s se interpreta como del día siguiente", turn.label, turn.out))
		}
		day.Shifts = append(day.Shifts, shift)
	}

	// Overlap check only applies when both shifts survived individually.
	// Touching endpoints (shift 1 exit == shift 2 entry) are allowed.
	if len(day.Shifts) == 2 {
		a, b := day.Shifts[0], day.Shifts[1]
		if a.Start.Before(b.End) && b.Start.Before(a.End) && !a.End.Equal(b.Start) {
			faults = append(faults, "Franja horaria duplicada")
		}
	}

	if len(faults) > 0 {
		return ValidatedDay{Date: entry.Date}, dedupe(faults)
	}
	return day, nil
}

// normalizeShift anchors HH:mm strings to the entry's date and rolls the
// exit to the next day when it is earlier than the entry.
func normalizeShift(date time.Time, in, out string) Shift {
	start := clockOn(date, in)
	end := clockOn(date, out)
	crosses := false
	if end.Before(start) {
		end = end.AddDate(0, 0, 1)
		crosses = true
	}
	return Shift{Start: start, End: end, CrossesMidnight: crosses}
}

func clockOn(date time.Time, clock string) time.Time {
	t, _ := time.Parse("15:04", clock)
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location())
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// =============================================================================
// WHOLE-PERIOD VALIDATION
// =============================================================================

// ValidatePeriod validates every day of a period. Faulted days are excluded
// from the returned days; their faults come back aggregated and date-sorted.
// ErrNoValidData is returned only when not a single day in the period has a
// complete valid shift pair.
func ValidatePeriod(entries []DayEntry) ([]ValidatedDay, []DayFault, error) {
	sorted := make([]DayEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	var days []ValidatedDay
	var faults []DayFault
	hasData := false

	for _, entry := range sorted {
		day, msgs := ValidateDay(entry)
		if len(msgs) > 0 {
			faults = append(faults, DayFault{Date: entry.Date, Messages: msgs})
			continue
		}
		if len(day.Shifts) == 0 {
			continue // blank day
		}
		hasData = true
		days = append(days, day)
	}

	if !hasData {
		if len(faults) > 0 {
			return nil, faults, &FaultError{Faults: faults}
		}
		return nil, faults, ErrNoValidData
	}
	return days, faults, nil
}
