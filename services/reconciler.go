package services

import (
	"context"
	"sync"
	"time"

	"MediLedger/utils"

	"go.uber.org/zap"
)

// Reconciler runs deferred follow-up tasks, such as re-reading a
// conversation once the ledger has confirmed a write. Tasks run on their own
// goroutines after a fixed delay and are cancelled by Close.
type Reconciler struct {
	delay  time.Duration
	clock  utils.Clock
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewReconciler(delay time.Duration, clock utils.Clock, logger *zap.Logger) *Reconciler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Reconciler{delay: delay, clock: clock, logger: logger, ctx: ctx, cancel: cancel}
}

// Schedule runs task after the reconciler's delay. A failing task is logged
// and not retried; the next read reconciles again.
func (r *Reconciler) Schedule(name string, task func(ctx context.Context) error) {
	if r.ctx.Err() != nil {
		r.logger.Debug("reconciler closed, dropping task", zap.String("task", name))
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		select {
		case <-r.ctx.Done():
			return
		case <-r.clock.After(r.delay):
		}
		if err := task(r.ctx); err != nil {
			r.logger.Warn("reconciliation task failed", zap.String("task", name), zap.Error(err))
			return
		}
		r.logger.Debug("reconciliation task done", zap.String("task", name))
	}()
}

// Wait blocks until every scheduled task has finished.
func (r *Reconciler) Wait() {
	r.wg.Wait()
}

// Close cancels pending tasks and waits for running ones.
func (r *Reconciler) Close() {
	r.cancel()
	r.wg.Wait()
}
