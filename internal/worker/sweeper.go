package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/seatsurge/ticketd/internal/service"
	"github.com/seatsurge/ticketd/pkg/logger"
)

// SweeperConfig contains configuration for the expiry sweeper
type SweeperConfig struct {
	// SweepInterval is the interval between sweep passes
	SweepInterval time.Duration
	// BatchSize caps how many bookings one pass touches
	BatchSize int
}

// DefaultSweeperConfig returns default configuration
func DefaultSweeperConfig() *SweeperConfig {
	return &SweeperConfig{
		SweepInterval: 5 * time.Minute,
		BatchSize:     100,
	}
}

// Sweeper periodically expires lapsed holds and re-commits seats of
// confirmed bookings whose commit write was lost. The ledger already
// excludes lapsed holds at read time; the sweep only settles their stored
// status afterwards, so nothing here is latency-sensitive.
type Sweeper struct {
	bookings service.BookingService
	config   *SweeperConfig
	log      *logger.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool

	// Stats
	totalExpired    int64
	totalReconciled int64
	lastSweepTime   time.Time
	lastSweepCount  int
}

// NewSweeper creates a new Sweeper
func NewSweeper(bookings service.BookingService, config *SweeperConfig) *Sweeper {
	if config == nil {
		config = DefaultSweeperConfig()
	}
	return &Sweeper{
		bookings: bookings,
		config:   config,
		log:      logger.Get(),
		stopCh:   make(chan struct{}),
	}
}

// Start starts the sweeper
func (w *Sweeper) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("sweeper already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting expiry sweeper")

	w.wg.Add(1)
	go w.run(ctx)

	return nil
}

// Stop stops the sweeper and waits for the in-flight pass to finish
func (w *Sweeper) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping expiry sweeper")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Expiry sweeper stopped")
}

func (w *Sweeper) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.SweepInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep runs one pass: expire lapsed holds, then reconcile lost seat
// commits. Each booking fails independently; one bad row never stalls the
// rest of the batch.
func (w *Sweeper) sweep(ctx context.Context) {
	w.mu.Lock()
	w.lastSweepTime = time.Now()
	w.mu.Unlock()

	expired, err := w.bookings.ExpireHolds(ctx, w.config.BatchSize)
	if err != nil {
		w.log.Error(fmt.Sprintf("Sweep pass failed to expire holds: %v", err))
	} else if expired > 0 {
		w.log.Info(fmt.Sprintf("Sweep pass expired %d holds", expired))
	}

	reconciled, err := w.bookings.ReconcileConfirmedSeats(ctx, w.config.BatchSize)
	if err != nil {
		w.log.Error(fmt.Sprintf("Sweep pass failed to reconcile seats: %v", err))
	}

	w.mu.Lock()
	w.totalExpired += int64(expired)
	w.totalReconciled += int64(reconciled)
	w.lastSweepCount = expired
	w.mu.Unlock()
}

// GetStats returns sweeper statistics
func (w *Sweeper) GetStats() *SweeperStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &SweeperStats{
		IsRunning:       w.running,
		TotalExpired:    w.totalExpired,
		TotalReconciled: w.totalReconciled,
		LastSweepTime:   w.lastSweepTime,
		LastSweepCount:  w.lastSweepCount,
	}
}

// SweeperStats contains sweeper statistics
type SweeperStats struct {
	IsRunning       bool      `json:"is_running"`
	TotalExpired    int64     `json:"total_expired"`
	TotalReconciled int64     `json:"total_reconciled"`
	LastSweepTime   time.Time `json:"last_sweep_time"`
	LastSweepCount  int       `json:"last_sweep_count"`
}
