// internal/app/system/workers/reconcilesweep.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/orgsync/internal/app/system/hierarchy"
	"github.com/dalemusser/orgsync/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Reconciler is the pass the sweep runs.
type Reconciler interface {
	Reconcile(ctx context.Context) (hierarchy.ReconcileResult, error)
}

// ReconcileObserver receives the outcome of each sweep. Optional.
type ReconcileObserver interface {
	ObserveReconcile(resolved, pending int)
}

// ReconcileSweep periodically retries pending manager references, so a
// manager added outside a roster upload still gets linked.
type ReconcileSweep struct {
	rec      Reconciler
	obs      ReconcileObserver
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewReconcileSweep creates a sweep worker. interval must be positive;
// obs may be nil.
func NewReconcileSweep(rec Reconciler, obs ReconcileObserver, logger *zap.Logger, interval time.Duration) *ReconcileSweep {
	return &ReconcileSweep{
		rec:      rec,
		obs:      obs,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background loop.
func (w *ReconcileSweep) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("reconcile sweep worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. Safe to call
// more than once.
func (w *ReconcileSweep) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
	w.log.Info("reconcile sweep worker stopped")
}

func (w *ReconcileSweep) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *ReconcileSweep) sweep() {
	ctx, cancel := timeouts.WithTimeout(context.Background(), timeouts.Sweep(), w.log, "reconcile sweep")
	defer cancel()

	// Stop aborts an in-flight sweep.
	go func() {
		select {
		case <-w.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	res, err := w.rec.Reconcile(ctx)
	if err != nil {
		w.log.Error("reconcile sweep failed", zap.Error(err))
		return
	}
	if w.obs != nil {
		w.obs.ObserveReconcile(res.Resolved, res.Pending)
	}
	if res.Resolved > 0 {
		w.log.Info("reconcile sweep resolved managers",
			zap.Int("count", res.Resolved),
			zap.Int("pending", res.Pending))
	}
}
