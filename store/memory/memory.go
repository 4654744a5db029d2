// Package memory provides an in-memory RecordStore (for testing/dev).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/brigada/payroll-engine/store"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	nextID   int64
	titles   map[int64]store.JobTitle
	holidays map[string]store.HolidayRecord // keyed yyyy-mm-dd
	accesses []store.AccessEntry
	accessID int64
}

func New() *Memory {
	return &Memory{
		nextID:   1,
		titles:   make(map[int64]store.JobTitle),
		holidays: make(map[string]store.HolidayRecord),
	}
}

const dateKey = "2006-01-02"

// =============================================================================
// JOB TITLES
// =============================================================================

func (m *Memory) ListJobTitles(_ context.Context) ([]store.JobTitle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]store.JobTitle, 0, len(m.titles))
	for _, t := range m.titles {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetJobTitle(_ context.Context, name string) (*store.JobTitle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, t := range m.titles {
		if t.Name == name {
			cp := t
			return &cp, nil
		}
	}
	return nil, store.ErrJobTitleNotFound
}

func (m *Memory) CreateJobTitle(_ context.Context, title store.JobTitle) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.titles {
		if t.Name == title.Name {
			return 0, store.ErrDuplicateJobTitle
		}
	}
	title.ID = m.nextID
	m.nextID++
	m.titles[title.ID] = title
	return title.ID, nil
}

func (m *Memory) UpdateJobTitle(_ context.Context, title store.JobTitle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.titles[title.ID]; !ok {
		return store.ErrJobTitleNotFound
	}
	for id, t := range m.titles {
		if t.Name == title.Name && id != title.ID {
			return store.ErrDuplicateJobTitle
		}
	}
	m.titles[title.ID] = title
	return nil
}

func (m *Memory) DeleteJobTitle(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.titles[id]; !ok {
		return store.ErrJobTitleNotFound
	}
	delete(m.titles, id)
	return nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (m *Memory) ListHolidays(_ context.Context, year int) ([]store.HolidayRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []store.HolidayRecord
	for _, h := range m.holidays {
		if year == 0 || h.Date.Year() == year {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) CreateHoliday(_ context.Context, h store.HolidayRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := h.Date.Format(dateKey)
	if _, ok := m.holidays[key]; ok {
		return store.ErrDuplicateHoliday
	}
	m.holidays[key] = h
	return nil
}

func (m *Memory) DeleteHoliday(_ context.Context, date time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := date.Format(dateKey)
	if _, ok := m.holidays[key]; !ok {
		return store.ErrHolidayNotFound
	}
	delete(m.holidays, key)
	return nil
}

// =============================================================================
// ACCESS LOG
// =============================================================================

func (m *Memory) RecordAccess(_ context.Context, ip string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.accessID++
	m.accesses = append(m.accesses, store.AccessEntry{ID: m.accessID, IP: ip, At: time.Now().UTC()})
	return nil
}

func (m *Memory) ListAccesses(_ context.Context) ([]store.AccessEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]store.AccessEntry, len(m.accesses))
	copy(out, m.accesses)
	// Newest first, matching the production store's ordering.
	sort.Slice(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	return out, nil
}

func (m *Memory) ClearAccesses(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := int64(len(m.accesses))
	m.accesses = nil
	return n, nil
}

func (m *Memory) PurgeAccessesBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var kept []store.AccessEntry
	var purged int64
	for _, a := range m.accesses {
		if a.At.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, a)
	}
	m.accesses = kept
	return purged, nil
}

// =============================================================================
// EXPORT
// =============================================================================

func (m *Memory) Export(ctx context.Context) (store.Dump, error) {
	titles, _ := m.ListJobTitles(ctx)
	holidays, _ := m.ListHolidays(ctx, 0)
	accesses, _ := m.ListAccesses(ctx)
	return store.Dump{JobTitles: titles, Holidays: holidays, Accesses: accesses}, nil
}
