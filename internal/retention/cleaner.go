// Package retention periodically purges records older than their retention period.
package retention

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bissquit/journal-templates/internal/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var purged = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Subsystem: "retention",
		Name:      "purged_total",
		Help:      "Records deleted by the retention cleaner, by target",
	},
	[]string{"target"},
)

// Purger deletes records created before cutoff and reports how many were removed.
type Purger interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Target is one kind of record under retention.
type Target struct {
	Name      string
	Retention time.Duration
	Purger    Purger
}

// Cleaner runs every target's purge on a fixed interval.
type Cleaner struct {
	interval time.Duration
	targets  []Target
	now      func() time.Time

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewCleaner creates a cleaner. Targets with a non-positive retention are skipped.
func NewCleaner(interval time.Duration, targets ...Target) *Cleaner {
	active := make([]Target, 0, len(targets))
	for _, t := range targets {
		if t.Retention > 0 {
			active = append(active, t)
		}
	}
	return &Cleaner{
		interval: interval,
		targets:  active,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the cleaner goroutine. A first pass runs immediately.
// Without targets or with a non-positive interval nothing is started.
func (c *Cleaner) Start(ctx context.Context) {
	if len(c.targets) == 0 || c.interval <= 0 {
		slog.Info("retention cleaner disabled")
		return
	}
	slog.Info("starting retention cleaner", "interval", c.interval, "targets", len(c.targets))

	c.wg.Add(1)
	go c.run(ctx)
}

// Stop stops the cleaner and waits for a running pass to finish.
func (c *Cleaner) Stop() {
	close(c.stopCh)
	c.wg.Wait()
	slog.Info("retention cleaner stopped")
}

func (c *Cleaner) run(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.RunOnce(ctx)
		}
	}
}

// RunOnce purges every target once. Failures are logged and do not stop other targets.
func (c *Cleaner) RunOnce(ctx context.Context) {
	now := c.now()
	for _, t := range c.targets {
		cutoff := now.Add(-t.Retention)
		n, err := t.Purger.DeleteBefore(ctx, cutoff)
		if err != nil {
			slog.Error("retention purge failed", "target", t.Name, "error", err)
			continue
		}
		purged.WithLabelValues(t.Name).Add(float64(n))
		if n > 0 {
			slog.Info("retention purge", "target", t.Name, "deleted", n, "cutoff", cutoff)
		}
	}
}
