/*
sweeper.go - Automated access-log retention sweeper

PURPOSE:
  Periodically deletes access-log rows older than the retention window so
  the log never grows without bound. The manual summary endpoint clears
  everything on demand; the sweeper only trims the old tail.

DESIGN:
  - Runs a background goroutine with configurable sweep interval
  - Deletes entries older than Retention on every tick
  - Sweeps once immediately on Start

CONFIGURATION:
  - SweepInterval: How often to sweep (default: 24 hours)
  - Retention: How long entries are kept (default: 90 days)
  - Enabled: Whether the sweeper is active (default: true)

USAGE:
  sweeper := NewAccessLogSweeper(store)
  sweeper.Start()
  // ... later
  sweeper.Stop()

SEE ALSO:
  - handlers.go: SummarizeAccesses (manual count-and-clear)
  - store: PurgeAccessesBefore
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/brigada/payroll-engine/store"
)

// AccessLogSweeper trims old access-log entries on a schedule.
type AccessLogSweeper struct {
	Store         store.RecordStore
	SweepInterval time.Duration
	Retention     time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewAccessLogSweeper creates a sweeper with the default schedule.
func NewAccessLogSweeper(st store.RecordStore) *AccessLogSweeper {
	return &AccessLogSweeper{
		Store:         st,
		SweepInterval: 24 * time.Hour,
		Retention:     90 * 24 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the sweeper.
func (s *AccessLogSweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		log.Println("[Sweeper] Disabled, not starting")
		return
	}

	s.ticker = time.NewTicker(s.SweepInterval)
	s.wg.Add(1)

	go s.run()

	log.Printf("[Sweeper] Started with sweep interval %v, retention %v", s.SweepInterval, s.Retention)
}

// Stop stops the sweeper.
func (s *AccessLogSweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		log.Println("[Sweeper] Stopped")
	}
}

func (s *AccessLogSweeper) run() {
	defer s.wg.Done()

	// Sweep immediately on start
	s.sweep()

	for {
		select {
		case <-s.ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *AccessLogSweeper) sweep() {
	ctx := context.Background()
	cutoff := time.Now().Add(-s.Retention)

	purged, err := s.Store.PurgeAccessesBefore(ctx, cutoff)
	if err != nil {
		log.Printf("[Sweeper] Error purging access log: %v", err)
		return
	}
	if purged > 0 {
		log.Printf("[Sweeper] Purged %d access entries older than %s", purged, cutoff.Format("2006-01-02"))
	}
}

// RunNow triggers an immediate sweep (for testing/admin).
func (s *AccessLogSweeper) RunNow() {
	s.sweep()
}
