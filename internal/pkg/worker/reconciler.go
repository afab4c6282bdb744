package worker

import (
	"context"
	"sync"
	"time"

	"wellness_shop/pkg/logger"

	"go.uber.org/zap"
)

// Sweeper 滞留订单处理，返回本轮发现的数量
type Sweeper interface {
	ReconcileStale(ctx context.Context, olderThan time.Duration, limit int, autoCancel bool) (int, error)
}

type ReconcilerOptions struct {
	Interval       time.Duration
	PendingTimeout time.Duration
	BatchSize      int
	AutoCancel     bool
}

// Reconciler 定时巡检卡在 pending 的订单
type Reconciler struct {
	sweeper Sweeper
	opts    ReconcilerOptions
	running sync.Mutex
}

func NewReconciler(sweeper Sweeper, opts ReconcilerOptions) *Reconciler {
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Minute
	}
	if opts.PendingTimeout <= 0 {
		opts.PendingTimeout = 48 * time.Hour
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	return &Reconciler{sweeper: sweeper, opts: opts}
}

// Start 阻塞运行，启动时先执行一轮，ctx 结束时退出
func (r *Reconciler) Start(ctx context.Context) {
	logger.Log.Info("order reconciler started",
		zap.Duration("interval", r.opts.Interval),
		zap.Duration("pending_timeout", r.opts.PendingTimeout),
		zap.Bool("auto_cancel", r.opts.AutoCancel),
	)

	ticker := time.NewTicker(r.opts.Interval)
	defer ticker.Stop()

	r.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("order reconciler stopped")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep 执行一轮巡检，上一轮未结束时直接跳过
func (r *Reconciler) Sweep(ctx context.Context) int {
	if !r.running.TryLock() {
		logger.Log.Warn("previous reconcile sweep still running, skipping")
		return 0
	}
	defer r.running.Unlock()

	start := time.Now()
	found, err := r.sweeper.ReconcileStale(ctx, r.opts.PendingTimeout, r.opts.BatchSize, r.opts.AutoCancel)
	if err != nil {
		logger.Log.Error("reconcile sweep failed", zap.Error(err))
		return found
	}
	if found > 0 {
		logger.Log.Info("reconcile sweep finished",
			zap.Int("stale_orders", found),
			zap.Duration("cost", time.Since(start)),
		)
	}
	return found
}
