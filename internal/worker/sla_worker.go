package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/helpdeskops/helpdesk-engine/internal/observability"
	"github.com/helpdeskops/helpdesk-engine/internal/sla"
)

// ResolvedCloser closes tickets that stayed resolved without follow-up.
type ResolvedCloser interface {
	CloseStaleResolved(ctx context.Context, olderThan time.Duration) (int, error)
}

// SLAWorker runs the SLA monitor on a fixed interval until its context is
// cancelled. A cancelled mid-cycle scan simply leaves the remaining tickets
// for the next cycle.
type SLAWorker struct {
	monitor        *sla.Monitor
	closer         ResolvedCloser
	interval       time.Duration
	autoCloseAfter time.Duration
	metrics        *observability.Metrics
	logger         *zap.Logger
}

// SLAWorkerDependencies bundles collaborators for the worker. Closer and
// AutoCloseAfter are optional; leaving either empty disables auto-close.
type SLAWorkerDependencies struct {
	Monitor        *sla.Monitor
	Closer         ResolvedCloser
	Interval       time.Duration
	AutoCloseAfter time.Duration
	Metrics        *observability.Metrics
	Logger         *zap.Logger
}

// NewSLAWorker constructs the worker.
func NewSLAWorker(deps SLAWorkerDependencies) *SLAWorker {
	interval := deps.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	return &SLAWorker{
		monitor:        deps.Monitor,
		closer:         deps.Closer,
		interval:       interval,
		autoCloseAfter: deps.AutoCloseAfter,
		metrics:        deps.Metrics,
		logger:         deps.Logger,
	}
}

// Run blocks until ctx is cancelled.
func (w *SLAWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

func (w *SLAWorker) runCycle(ctx context.Context) {
	stats, err := w.monitor.Scan(ctx)
	w.metrics.RecordScan(stats.Alerts)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			w.logger.Info("sla scan interrupted",
				zap.Int("checked", stats.Checked), zap.Int("alerts", stats.Alerts))
			return
		}
		w.logger.Error("sla scan failed", zap.Error(err))
		return
	}
	w.logger.Debug("sla scan complete",
		zap.Int("checked", stats.Checked),
		zap.Int("alerts", stats.Alerts),
		zap.Int("breaches", stats.Breaches),
		zap.Int("errors", stats.Errors))

	if w.closer != nil && w.autoCloseAfter > 0 {
		closed, err := w.closer.CloseStaleResolved(ctx, w.autoCloseAfter)
		if err != nil {
			w.logger.Error("auto-close pass failed", zap.Error(err))
			return
		}
		if closed > 0 {
			w.logger.Info("auto-closed resolved tickets", zap.Int("count", closed))
		}
	}
}
