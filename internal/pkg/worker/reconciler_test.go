package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingSweeper struct {
	calls     atomic.Int32
	found     int
	err       error
	olderThan time.Duration
	limit     int
	cancel    bool
}

func (s *countingSweeper) ReconcileStale(_ context.Context, olderThan time.Duration, limit int, autoCancel bool) (int, error) {
	s.calls.Add(1)
	s.olderThan, s.limit, s.cancel = olderThan, limit, autoCancel
	return s.found, s.err
}

func TestSweepPassesOptions(t *testing.T) {
	s := &countingSweeper{found: 3}
	r := NewReconciler(s, ReconcilerOptions{PendingTimeout: 2 * time.Hour, BatchSize: 5, AutoCancel: true})

	assert.Equal(t, 3, r.Sweep(context.Background()))
	assert.Equal(t, 2*time.Hour, s.olderThan)
	assert.Equal(t, 5, s.limit)
	assert.True(t, s.cancel)
}

func TestSweepDefaults(t *testing.T) {
	s := &countingSweeper{}
	r := NewReconciler(s, ReconcilerOptions{})
	r.Sweep(context.Background())

	assert.Equal(t, 48*time.Hour, s.olderThan)
	assert.Equal(t, 100, s.limit)
	assert.False(t, s.cancel)
}

func TestSweepErrorIsSwallowed(t *testing.T) {
	s := &countingSweeper{err: errors.New("db down")}
	r := NewReconciler(s, ReconcilerOptions{})
	assert.Equal(t, 0, r.Sweep(context.Background()))
}

func TestStartRunsUntilCancelled(t *testing.T) {
	s := &countingSweeper{}
	r := NewReconciler(s, ReconcilerOptions{Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return s.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop")
	}
}
