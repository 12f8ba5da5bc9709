// Package dispatch implements the concurrent dispatch engine: the
// dispatcher that long-polls the input queue, the worker pool that
// delivers messages over HTTP, and the lifecycle controller that ties
// them to process signals.
package dispatch

import (
	"context"
	"time"

	"github.com/sqsproxyd/sqsproxyd/internal/logging"
	"github.com/sqsproxyd/sqsproxyd/internal/message"
	"github.com/sqsproxyd/sqsproxyd/internal/metrics"
	"github.com/sqsproxyd/sqsproxyd/internal/queue"
)

// Dispatcher is the single task that owns the input-queue receive loop.
// It never deletes messages; that is a worker responsibility.
type Dispatcher struct {
	queue   queue.Queue
	out     chan<- message.Message
	sleep   time.Duration
	logger  logging.Logger
	metrics *metrics.Counters
}

// NewDispatcher builds a Dispatcher that feeds received messages onto out.
func NewDispatcher(q queue.Queue, out chan<- message.Message, sleep time.Duration, logger logging.Logger, m *metrics.Counters) *Dispatcher {
	return &Dispatcher{queue: q, out: out, sleep: sleep, logger: logger, metrics: m}
}

// Run long-polls the queue until ctx is cancelled. Errors from the queue
// are logged and backed off; they never propagate out.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		type result struct {
			messages []message.Message
			err      error
		}
		resCh := make(chan result, 1)
		go func() {
			messages, err := d.queue.ReceiveMessages(ctx)
			resCh <- result{messages, err}
		}()

		select {
		case res := <-resCh:
			switch {
			case res.err != nil:
				d.logger.WithError(res.err).Warn("receive failed, backing off")
				d.sleepOrDone(ctx)
			case len(res.messages) == 0:
				d.sleepOrDone(ctx)
			default:
				for _, m := range res.messages {
					d.metrics.IncReceived()
					select {
					case d.out <- m:
					case <-ctx.Done():
						return
					}
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

func (d *Dispatcher) sleepOrDone(ctx context.Context) {
	select {
	case <-time.After(d.sleep):
	case <-ctx.Done():
	}
}
