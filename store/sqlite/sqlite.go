/*
Package sqlite provides the SQLite-backed implementation of store.RecordStore.

PURPOSE:
  Persists job titles, declared holidays, and the access log. The original
  deployment kept these in a hosted Postgres; the same patterns apply here
  with only dialect differences, and SQLite keeps the app self-contained.

KEY TABLES:
  job_titles: Rank name + monthly salary (salary stored as TEXT so the
              decimal value round-trips without float drift)
  holidays:   One row per declared holiday date (date is the identity)
  access_log: Append-only page access records

WAL MODE:
  The database is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

SEEDING:
  On first migration, the four standard ranks are inserted so a fresh
  deployment is immediately usable by the clerks.

USAGE:
  st, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

SEE ALSO:
  - store/store.go: Interface definition
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/brigada/payroll-engine/engine"
	"github.com/brigada/payroll-engine/store"
)

// Store implements store.RecordStore on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := s.seedJobTitles(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed job titles: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Job titles (ranks with fixed monthly salaries)
	CREATE TABLE IF NOT EXISTS job_titles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		monthly_salary TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Declared holidays; the date is the identity
	CREATE TABLE IF NOT EXISTS holidays (
		date TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL CHECK (kind IN ('FIXED', 'MOVABLE')),
		created_at TEXT NOT NULL
	);

	-- Access log (append-only)
	CREATE TABLE IF NOT EXISTS access_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ip TEXT NOT NULL,
		at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_access_log_at ON access_log(at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// seedJobTitles inserts the standard ranks when the table is empty.
func (s *Store) seedJobTitles() error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM job_titles").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []store.JobTitle{
		{Name: "BOMBERO", MonthlySalary: decimal.NewFromInt(2054865)},
		{Name: "CABO DE BOMBERO", MonthlySalary: decimal.NewFromInt(2197821)},
		{Name: "SARGENTO DE BOMBERO", MonthlySalary: decimal.NewFromInt(2269299)},
		{Name: "TENIENTE DE BOMBERO", MonthlySalary: decimal.NewFromInt(2510541)},
	}
	for _, t := range defaults {
		if _, err := s.db.Exec(
			"INSERT INTO job_titles (name, monthly_salary, created_at) VALUES (?, ?, ?)",
			t.Name, t.MonthlySalary.String(), nowRFC3339(),
		); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// JOB TITLES
// =============================================================================

func (s *Store) ListJobTitles(ctx context.Context) ([]store.JobTitle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, monthly_salary FROM job_titles ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query job titles: %w", err)
	}
	defer rows.Close()

	var out []store.JobTitle
	for rows.Next() {
		t, err := scanJobTitle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetJobTitle(ctx context.Context, name string) (*store.JobTitle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, monthly_salary FROM job_titles WHERE name = ?", name)

	t, err := scanJobTitle(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrJobTitleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) CreateJobTitle(ctx context.Context, title store.JobTitle) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO job_titles (name, monthly_salary, created_at) VALUES (?, ?, ?)",
		title.Name, title.MonthlySalary.String(), nowRFC3339())
	if err != nil {
		if isUniqueConstraintError(err) {
			return 0, store.ErrDuplicateJobTitle
		}
		return 0, fmt.Errorf("failed to create job title: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) UpdateJobTitle(ctx context.Context, title store.JobTitle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE job_titles SET name = ?, monthly_salary = ? WHERE id = ?",
		title.Name, title.MonthlySalary.String(), title.ID)
	if err != nil {
		if isUniqueConstraintError(err) {
			return store.ErrDuplicateJobTitle
		}
		return fmt.Errorf("failed to update job title: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return store.ErrJobTitleNotFound
	}
	return nil
}

func (s *Store) DeleteJobTitle(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM job_titles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete job title: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return store.ErrJobTitleNotFound
	}
	return nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (s *Store) ListHolidays(ctx context.Context, year int) ([]store.HolidayRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT date, name, kind FROM holidays ORDER BY date ASC"
	args := []any{}
	if year != 0 {
		query = "SELECT date, name, kind FROM holidays WHERE date >= ? AND date < ? ORDER BY date ASC"
		args = []any{fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-01-01", year+1)}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var out []store.HolidayRecord
	for rows.Next() {
		var dateStr, name, kind string
		if err := rows.Scan(&dateStr, &name, &kind); err != nil {
			return nil, err
		}
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt holiday date %q: %w", dateStr, err)
		}
		out = append(out, store.HolidayRecord{Date: date, Name: name, Kind: engine.HolidayKind(kind)})
	}
	return out, rows.Err()
}

func (s *Store) CreateHoliday(ctx context.Context, h store.HolidayRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO holidays (date, name, kind, created_at) VALUES (?, ?, ?, ?)",
		h.Date.Format("2006-01-02"), h.Name, string(h.Kind), nowRFC3339())
	if err != nil {
		if isUniqueConstraintError(err) {
			return store.ErrDuplicateHoliday
		}
		return fmt.Errorf("failed to create holiday: %w", err)
	}
	return nil
}

func (s *Store) DeleteHoliday(ctx context.Context, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM holidays WHERE date = ?", date.Format("2006-01-02"))
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return store.ErrHolidayNotFound
	}
	return nil
}

// =============================================================================
// ACCESS LOG
// =============================================================================

func (s *Store) RecordAccess(ctx context.Context, ip string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO access_log (ip, at) VALUES (?, ?)", ip, nowRFC3339())
	if err != nil {
		return fmt.Errorf("failed to record access: %w", err)
	}
	return nil
}

func (s *Store) ListAccesses(ctx context.Context) ([]store.AccessEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, ip, at FROM access_log ORDER BY at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query access log: %w", err)
	}
	defer rows.Close()

	var out []store.AccessEntry
	for rows.Next() {
		var e store.AccessEntry
		var atStr string
		if err := rows.Scan(&e.ID, &e.IP, &atStr); err != nil {
			return nil, err
		}
		e.At, _ = time.Parse(time.RFC3339, atStr)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) ClearAccesses(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM access_log")
	if err != nil {
		return 0, fmt.Errorf("failed to clear access log: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) PurgeAccessesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM access_log WHERE at < ?", cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to purge access log: %w", err)
	}
	return res.RowsAffected()
}

// =============================================================================
// EXPORT
// =============================================================================

func (s *Store) Export(ctx context.Context) (store.Dump, error) {
	titles, err := s.ListJobTitles(ctx)
	if err != nil {
		return store.Dump{}, err
	}
	holidays, err := s.ListHolidays(ctx, 0)
	if err != nil {
		return store.Dump{}, err
	}
	accesses, err := s.ListAccesses(ctx)
	if err != nil {
		return store.Dump{}, err
	}
	return store.Dump{JobTitles: titles, Holidays: holidays, Accesses: accesses}, nil
}

// =============================================================================
// HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJobTitle(row rowScanner) (store.JobTitle, error) {
	var t store.JobTitle
	var salary string
	if err := row.Scan(&t.ID, &t.Name, &salary); err != nil {
		return store.JobTitle{}, err
	}
	d, err := decimal.NewFromString(salary)
	if err != nil {
		return store.JobTitle{}, fmt.Errorf("corrupt salary %q: %w", salary, err)
	}
	t.MonthlySalary = d
	return t, nil
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
