/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's decimal-based domain model from the external API contract:
  money and minutes cross the wire as plain numbers, dates as ISO strings.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Request shape validation uses go-playground/validator struct tags;
  handlers run them before touching domain logic. Time-string and shift
  semantics stay in engine.ValidatePeriod — the tags only guard the
  envelope (required fields, date formats, positive salaries).

SEE ALSO:
  - handlers.go: Uses these types
  - engine: The domain types these project
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/brigada/payroll-engine/engine"
	"github.com/brigada/payroll-engine/store"
)

// =============================================================================
// PAYROLL COMPUTATION
// =============================================================================

// DayEntryDTO is one raw day of the entry form: up to two shift pairs.
type DayEntryDTO struct {
	Date  string `json:"date" validate:"required,datetime=2006-01-02"`
	In1   string `json:"entry1"`
	Out1  string `json:"exit1"`
	In2   string `json:"entry2"`
	Out2  string `json:"exit2"`
}

// ValidatePayrollRequest asks for validation only, no computation.
type ValidatePayrollRequest struct {
	Days []DayEntryDTO `json:"days" validate:"required,min=1,dive"`
}

// ComputePayrollRequest runs the full allocation. The salary comes either
// from a stored job title or directly as a number; exactly one is needed.
type ComputePayrollRequest struct {
	JobTitle      string        `json:"job_title" validate:"required_without=MonthlySalary"`
	MonthlySalary float64       `json:"monthly_salary" validate:"required_without=JobTitle,omitempty,gt=0"`
	Days          []DayEntryDTO `json:"days" validate:"required,min=1,dive"`
}

// DayFaultDTO carries one day's blocking validation messages.
type DayFaultDTO struct {
	Date     string   `json:"date"`
	Messages []string `json:"messages"`
}

// ValidatePayrollResponse reports faults and advisory warnings.
type ValidatePayrollResponse struct {
	Valid    bool          `json:"valid"`
	Faults   []DayFaultDTO `json:"faults,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
}

// CategoryLineDTO is one pay category's minutes and money.
type CategoryLineDTO struct {
	Category   string  `json:"category"`
	Minutes    float64 `json:"minutes"`
	Multiplier float64 `json:"multiplier"`
	Amount     float64 `json:"amount"`
}

// DaySnapshotDTO is the cumulative progress at end of one day.
type DaySnapshotDTO struct {
	Date                   string             `json:"date"`
	CumulativeMinutes      int                `json:"cumulative_minutes"`
	CumulativeExtraMinutes int                `json:"cumulative_extra_minutes"`
	ExtraPayAccrued        float64            `json:"extra_pay_accrued"`
	BaselineReached        bool               `json:"baseline_reached"`
	CapReached             bool               `json:"cap_reached"`
	Categories             map[string]float64 `json:"categories,omitempty"`
}

// ComputePayrollResponse is the full allocation result.
type ComputePayrollResponse struct {
	TotalMinutes    int     `json:"total_minutes"`
	BaselineMinutes int     `json:"baseline_minutes"`
	HourlyRate      float64 `json:"hourly_rate"`
	CapAmount       float64 `json:"cap_amount"`

	Premiums     []CategoryLineDTO `json:"premiums"`
	Overtime     []CategoryLineDTO `json:"overtime"`
	Compensatory []CategoryLineDTO `json:"compensatory"`

	TotalPremiums       float64 `json:"total_premiums"`
	TotalOvertimePaid   float64 `json:"total_overtime_paid"`
	TotalPay            float64 `json:"total_pay"`
	CompensatoryMinutes float64 `json:"compensatory_minutes"`
	CompensatoryValue   float64 `json:"compensatory_value"`

	CapReached   bool   `json:"cap_reached"`
	CapReachedAt string `json:"cap_reached_at,omitempty"` // "2006-01-02 15:04"

	Snapshots   []DaySnapshotDTO `json:"snapshots"`
	SkippedDays []DayFaultDTO    `json:"skipped_days,omitempty"`
	Warnings    []string         `json:"warnings,omitempty"`
}

// =============================================================================
// JOB TITLES
// =============================================================================

type JobTitleDTO struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	MonthlySalary float64 `json:"monthly_salary"`
}

type SaveJobTitleRequest struct {
	Name          string  `json:"name" validate:"required"`
	MonthlySalary float64 `json:"monthly_salary" validate:"required,gt=0"`
}

// =============================================================================
// HOLIDAYS
// =============================================================================

type HolidayDTO struct {
	Date string `json:"date"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type CreateHolidayRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Name string `json:"name" validate:"required"`
	Kind string `json:"kind" validate:"required,oneof=FIXED MOVABLE"`
}

// =============================================================================
// ACCESS LOG
// =============================================================================

type AccessEntryDTO struct {
	ID int64  `json:"id"`
	IP string `json:"ip"`
	At string `json:"at"`
}

// AccessSummaryResponse reports how many entries were summarized away.
type AccessSummaryResponse struct {
	TotalAccesses int64  `json:"total_accesses"`
	Message       string `json:"message"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toDayFaultDTOs(faults []engine.DayFault) []DayFaultDTO {
	dtos := make([]DayFaultDTO, len(faults))
	for i, f := range faults {
		dtos[i] = DayFaultDTO{Date: f.Date.Format("2006-01-02"), Messages: f.Messages}
	}
	return dtos
}

func toCategoryLines(cats []engine.Category, minutes engine.CategoryMinutes, amounts map[engine.Category]decimal.Decimal) []CategoryLineDTO {
	lines := make([]CategoryLineDTO, len(cats))
	for i, cat := range cats {
		lines[i] = CategoryLineDTO{
			Category:   string(cat),
			Minutes:    minutes.Get(cat).InexactFloat64(),
			Multiplier: engine.Multipliers[cat].InexactFloat64(),
			Amount:     amounts[cat].InexactFloat64(),
		}
	}
	return lines
}

func toJobTitleDTO(t store.JobTitle) JobTitleDTO {
	return JobTitleDTO{
		ID:            t.ID,
		Name:          t.Name,
		MonthlySalary: t.MonthlySalary.InexactFloat64(),
	}
}

func toHolidayDTO(h store.HolidayRecord) HolidayDTO {
	return HolidayDTO{
		Date: h.Date.Format("2006-01-02"),
		Name: h.Name,
		Kind: string(h.Kind),
	}
}

func toAccessEntryDTO(e store.AccessEntry) AccessEntryDTO {
	return AccessEntryDTO{ID: e.ID, IP: e.IP, At: e.At.Format(time.RFC3339)}
}
