package github

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultLowWater is the remaining-quota mark below which the gate
	// blocks and waits for recovery.
	DefaultLowWater = 100

	// ProactiveRate is the proactive throttle rate (~1.2 req/sec),
	// keeping the harvest comfortably inside the hourly quota even
	// when the remote says plenty remains.
	ProactiveRate = 1.2

	// waitInterval is how long the gate sleeps between quota re-queries
	// while below the low-water mark.
	waitInterval = time.Second
)

// QuotaFunc queries the remote's remaining request quota.
type QuotaFunc func(ctx context.Context) (int, error)

// QuotaGate blocks callers when the remote quota is nearly exhausted.
//
// Ensure queries the quota and, while it sits below the low-water mark,
// sleeps a fixed interval and re-queries until capacity recovers. There
// is no upper bound on the wait: quota exhaustion is handled here, by
// blocking, and is invisible to everything above the gate.
type QuotaGate struct {
	quota    QuotaFunc
	bucket   *rate.Limiter
	lowWater int
	interval time.Duration

	// waiting, when set, is invoked with the remaining quota on every
	// wait iteration so the status line can say what is going on.
	waiting func(remaining int)

	// sleep is injectable for tests. Defaults to a context-aware wait.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewQuotaGate creates a gate over a quota query. lowWater <= 0 selects
// DefaultLowWater.
func NewQuotaGate(quota QuotaFunc, lowWater int) *QuotaGate {
	if lowWater <= 0 {
		lowWater = DefaultLowWater
	}
	return &QuotaGate{
		quota:    quota,
		bucket:   rate.NewLimiter(rate.Limit(ProactiveRate), 1),
		lowWater: lowWater,
		interval: waitInterval,
		sleep:    sleepContext,
	}
}

// OnWait registers a callback invoked on each wait iteration.
func (g *QuotaGate) OnWait(fn func(remaining int)) {
	g.waiting = fn
}

// Ensure blocks until it is safe to make more remote calls. The
// proactive token bucket paces callers first; then the remote quota is
// queried and, if below the low-water mark, waited out.
func (g *QuotaGate) Ensure(ctx context.Context) error {
	if err := g.bucket.Wait(ctx); err != nil {
		return err
	}

	remaining, err := g.quota(ctx)
	if err != nil {
		return err
	}

	for remaining < g.lowWater {
		if g.waiting != nil {
			g.waiting(remaining)
		}
		if err := g.sleep(ctx, g.interval); err != nil {
			return err
		}
		remaining, err = g.quota(ctx)
		if err != nil {
			return err
		}
	}

	return nil
}

// sleepContext sleeps for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
