/*
Package store defines the record-store interface backing the payroll app.

PURPOSE:
  Persists the three record kinds that live outside a calculation run:
  job titles (name + monthly salary), declared holiday dates, and the
  access log. The engine itself never writes here; it only consumes the
  salary and holiday snapshots the API layer reads on its behalf.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite store (WAL, auto-migration, seeding)
  - store/memory: In-memory store for tests and dev

SEE ALSO:
  - engine/calendar.go: Holidays become an engine.Calendar
  - api/handlers.go: The only consumer of this interface
*/
package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/brigada/payroll-engine/engine"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrJobTitleNotFound  = errors.New("job title not found")
	ErrDuplicateJobTitle = errors.New("job title already exists")
	ErrHolidayNotFound   = errors.New("holiday not found")
	ErrDuplicateHoliday  = errors.New("holiday already exists on that date")
)

// =============================================================================
// RECORDS
// =============================================================================

// JobTitle is a rank with its fixed monthly salary.
type JobTitle struct {
	ID            int64
	Name          string
	MonthlySalary decimal.Decimal
}

// HolidayRecord is a declared holiday date. Date identifies the record.
type HolidayRecord struct {
	Date time.Time
	Name string
	Kind engine.HolidayKind
}

// AccessEntry is one row of the page access log.
type AccessEntry struct {
	ID int64
	IP string
	At time.Time
}

// Dump is a full export of the store contents.
type Dump struct {
	JobTitles []JobTitle      `json:"cargos"`
	Holidays  []HolidayRecord `json:"festivos"`
	Accesses  []AccessEntry   `json:"accesos"`
}

// =============================================================================
// RECORD STORE INTERFACE
// =============================================================================

// RecordStore is the persistence contract for job titles, holidays, and the
// access log. Implementations must be safe for concurrent use.
type RecordStore interface {
	// Job titles. Names are unique; Create returns the assigned ID.
	ListJobTitles(ctx context.Context) ([]JobTitle, error)
	GetJobTitle(ctx context.Context, name string) (*JobTitle, error)
	CreateJobTitle(ctx context.Context, title JobTitle) (int64, error)
	UpdateJobTitle(ctx context.Context, title JobTitle) error
	DeleteJobTitle(ctx context.Context, id int64) error

	// Holidays. One record per date; year == 0 means all years.
	ListHolidays(ctx context.Context, year int) ([]HolidayRecord, error)
	CreateHoliday(ctx context.Context, h HolidayRecord) error
	DeleteHoliday(ctx context.Context, date time.Time) error

	// Access log.
	RecordAccess(ctx context.Context, ip string) error
	ListAccesses(ctx context.Context) ([]AccessEntry, error)
	ClearAccesses(ctx context.Context) (int64, error)
	PurgeAccessesBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Export returns everything for backup.
	Export(ctx context.Context) (Dump, error)
}

// ToEngineHolidays converts holiday records into the engine's holiday type.
func ToEngineHolidays(records []HolidayRecord) []engine.Holiday {
	out := make([]engine.Holiday, len(records))
	for i, r := range records {
		out[i] = engine.Holiday{Date: r.Date, Name: r.Name, Kind: r.Kind}
	}
	return out
}
