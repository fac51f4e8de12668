package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ReservationFacade exposes the subset of application functionality the
// reaper needs.
type ReservationFacade interface {
	ExpiredReservationOrders(ctx context.Context, limit int) ([]int64, error)
	ReleaseExpired(ctx context.Context, orderID int64) error
}

// Reaper periodically finds orders whose ticket reservations lapsed
// without payment and releases them through a worker pool.
type Reaper struct {
	facade       ReservationFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan int64
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewReaper constructs the reservation reaper pool.
func NewReaper(facade ReservationFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *Reaper {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Reaper{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan int64, batchSize*workers),
	}
}

// Start launches background reaping.
func (r *Reaper) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(runCtx)
	}

	r.wg.Add(1)
	go r.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (r *Reaper) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Reaper) dispatch(ctx context.Context) {
	defer r.wg.Done()
	defer close(r.jobs)
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.fetchAndDispatch(ctx)
		}
	}
}

func (r *Reaper) fetchAndDispatch(ctx context.Context) {
	orderIDs, err := r.facade.ExpiredReservationOrders(ctx, r.batchSize)
	if err != nil {
		r.logger.Error("fetch expired reservations failed", slog.String("error", err.Error()))
		return
	}
	for _, id := range orderIDs {
		select {
		case <-ctx.Done():
			return
		case r.jobs <- id:
		}
	}
}

func (r *Reaper) worker(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case orderID, ok := <-r.jobs:
			if !ok {
				return
			}
			if err := r.facade.ReleaseExpired(ctx, orderID); err != nil {
				r.logger.Error("release expired reservation failed",
					slog.Int64("order_id", orderID),
					slog.String("error", err.Error()),
				)
				continue
			}
			r.logger.Info("expired reservation released", slog.Int64("order_id", orderID))
		}
	}
}
