/*
scheduler.go - Server-side completion sweep

PURPOSE:
  Commit-on-completion normally fires from the live earnings endpoint,
  which only runs while a client is polling. This scheduler applies the
  same rule server-side on a timer: every sweep, each worker whose shift
  has completed and whose day has no record yet gets the implicit worked
  record. Between sweeps and across restarts, the reconciler's backfill
  covers whatever was missed.

DESIGN:
  - Background goroutine with a configurable check interval
  - Same write-once idempotent insert as the live path; sweeping twice
    or racing a manual edit is harmless

USAGE:
  scheduler := NewCompletionScheduler(handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - earnings/accrual.go: CommitCompletedDay
  - earnings/reconcile.go: the retroactive counterpart
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/tim/earnings-engine/earnings"
)

// CompletionScheduler periodically commits completed unrecorded days.
type CompletionScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewCompletionScheduler creates a new scheduler.
func NewCompletionScheduler(handler *Handler) *CompletionScheduler {
	return &CompletionScheduler{
		Handler:       handler,
		CheckInterval: 1 * time.Minute,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (cs *CompletionScheduler) Start() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if !cs.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	cs.ticker = time.NewTicker(cs.CheckInterval)
	cs.wg.Add(1)

	go cs.run()

	log.Printf("[Scheduler] Started with check interval: %v", cs.CheckInterval)
}

// Stop stops the scheduler.
func (cs *CompletionScheduler) Stop() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.ticker != nil {
		cs.ticker.Stop()
		close(cs.stop)
		cs.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (cs *CompletionScheduler) run() {
	defer cs.wg.Done()

	// Run immediately on start
	cs.sweep()

	for {
		select {
		case <-cs.ticker.C:
			cs.sweep()
		case <-cs.stop:
			return
		}
	}
}

func (cs *CompletionScheduler) sweep() {
	ctx := context.Background()
	now := cs.Handler.Now()

	workers, err := cs.Handler.Store.ListWorkers(ctx)
	if err != nil {
		log.Printf("[Scheduler] Error listing workers: %v", err)
		return
	}

	committed := 0
	for _, worker := range workers {
		inserted, err := earnings.CommitCompletedDay(ctx, cs.Handler.Store, worker.ID, worker.Profile, now)
		if err != nil {
			log.Printf("[Scheduler] Error committing day for %s: %v", worker.ID, err)
			continue
		}
		if inserted {
			committed++
		}
	}

	if committed > 0 {
		log.Printf("[Scheduler] Committed %d completed day(s)", committed)
	}
}

// RunNow triggers an immediate sweep (for testing/admin).
func (cs *CompletionScheduler) RunNow() {
	cs.sweep()
}
