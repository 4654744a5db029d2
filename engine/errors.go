/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All engine error types in one place for consistency and discoverability.
  The API layer maps these onto HTTP statuses.

ERROR CATEGORIES:
  1. Period errors   - Nothing computable in the whole period
  2. Contract errors - Malformed input that the validator should have caught
  3. Day faults      - Per-day validation failures (recoverable, aggregated)

USAGE:
  Day faults are values, not Go errors: a faulted day is skipped and the
  rest of the period still computes. FaultError wraps the aggregated list
  for callers that want a single error to surface.
*/
package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoValidData is returned when no day in the period has a complete
	// valid shift pair. Distinct from "validation faults present": faults
	// on some days still allow the remaining days to compute.
	ErrNoValidData = errors.New("no valid shift data in period")

	// ErrNonPositiveSalary is returned when Allocate is called with a zero
	// or negative monthly salary. A contract violation in the caller.
	ErrNonPositiveSalary = errors.New("monthly salary must be positive")
)

// =============================================================================
// DAY FAULTS - Per-day validation failures
// =============================================================================

// DayFault carries the blocking validation messages for one day.
// Messages are user-visible and kept in the payroll clerks' language.
type DayFault struct {
	Date     time.Time
	Messages []string
}

// FaultError aggregates day faults into a single error value.
type FaultError struct {
	Faults []DayFault
}

func (e *FaultError) Error() string {
	return "se encontraron errores en las siguientes fechas: " + FormatFaults(e.Faults)
}

// Unwrap ties a fault aggregate to ErrNoValidData: ValidatePeriod only
// returns a FaultError when the faults left nothing computable.
func (e *FaultError) Unwrap() error {
	return ErrNoValidData
}

// FormatFaults renders faults as "dd/MM/yyyy (message); ..." sorted by date,
// the format the original entry form showed to clerks.
func FormatFaults(faults []DayFault) string {
	sorted := make([]DayFault, len(faults))
	copy(sorted, faults)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	var parts []string
	for _, f := range sorted {
		for _, msg := range f.Messages {
			parts = append(parts, fmt.Sprintf("%s (%s)", f.Date.Format("02/01/2006"), msg))
		}
	}
	return strings.Join(parts, "; ")
}
