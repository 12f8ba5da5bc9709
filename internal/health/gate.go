// Package health implements the readiness gate that blocks daemon
// startup until the downstream HTTP endpoint reports healthy.
package health

import (
	"context"
	"time"

	"github.com/sqsproxyd/sqsproxyd/internal/downstream"
	"github.com/sqsproxyd/sqsproxyd/internal/logging"
)

// Gate blocks until the configured health URL returns success, retrying
// at a fixed interval. A zero-value URL disables the gate entirely; Wait
// returns immediately.
type Gate struct {
	downstream downstream.Downstream
	url        string
	interval   time.Duration
	logger     logging.Logger
}

// New builds a Gate. If url is empty the gate is a no-op: the health
// check only activates when a health check URL is configured.
func New(d downstream.Downstream, url string, interval time.Duration, logger logging.Logger) *Gate {
	return &Gate{downstream: d, url: url, interval: interval, logger: logger}
}

// Wait blocks until the health URL reports success or ctx is cancelled.
// A cancellation before the first success returns ctx.Err() so the
// daemon can exit cleanly without ever starting the worker pool: a gate
// that fails to terminate must not starve shutdown.
func (g *Gate) Wait(ctx context.Context) error {
	if g.url == "" {
		return nil
	}

	attempt := 0
	for {
		attempt++
		if err := g.downstream.Get(ctx, g.url); err == nil {
			g.logger.WithField("attempts", attempt).Info("health check passed")
			return nil
		} else {
			g.logger.WithField("attempt", attempt).WithError(err).Warn("health check failed, retrying")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(g.interval):
		}
	}
}
