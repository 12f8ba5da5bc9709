package dispatch

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sqsproxyd/sqsproxyd/internal/downstream"
	"github.com/sqsproxyd/sqsproxyd/internal/health"
	"github.com/sqsproxyd/sqsproxyd/internal/logging"
	"github.com/sqsproxyd/sqsproxyd/internal/message"
	"github.com/sqsproxyd/sqsproxyd/internal/metrics"
	"github.com/sqsproxyd/sqsproxyd/internal/queue"
)

// Options configures a Controller.
type Options struct {
	InputQueue         queue.Queue
	OutputQueue        queue.Queue // nil when output_sqs_url is not configured
	Downstream         downstream.Downstream
	HealthCheckURL     string
	HealthCheckInterval time.Duration
	WorkerConcurrency  int
	SleepInterval      time.Duration
	Logger             logging.Logger
	Metrics            *metrics.Counters
}

// Controller owns the shutdown broadcast and worker-drain acknowledgement:
// it constructs the health gate, dispatcher and worker pool, then blocks
// on SIGINT/SIGTERM before tearing everything down in order.
type Controller struct {
	opts Options
}

// NewController builds a Controller from Options.
func NewController(opts Options) *Controller {
	if opts.Metrics == nil {
		opts.Metrics = &metrics.Counters{}
	}
	return &Controller{opts: opts}
}

// Run blocks until a shutdown signal arrives (or the health gate fails to
// become ready), then drains in-flight work and returns. A nil return
// means clean shutdown; a non-nil return means the health gate never
// became ready and the daemon should exit non-zero without ever starting
// the worker pool.
func (c *Controller) Run(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	gate := health.New(c.opts.Downstream, c.opts.HealthCheckURL, c.opts.HealthCheckInterval, c.opts.Logger)

	gateErr := make(chan error, 1)
	go func() { gateErr <- gate.Wait(ctx) }()

	select {
	case err := <-gateErr:
		if err != nil {
			return err
		}
	case sig := <-sigCh:
		c.opts.Logger.WithField("signal", sig.String()).Info("shutdown requested before ready, exiting cleanly")
		cancel()
		return nil
	}

	workerConcurrency := c.opts.WorkerConcurrency
	if workerConcurrency <= 0 {
		workerConcurrency = 1
	}

	// Bounded dispatch channel: capacity = worker_concurrency is the
	// backpressure primitive. Never substitute an unbounded queue here.
	dispatchCh := make(chan message.Message, workerConcurrency)

	var wg sync.WaitGroup
	for i := 1; i <= workerConcurrency; i++ {
		w := NewWorker(i, dispatchCh, c.opts.InputQueue, c.opts.OutputQueue, c.opts.Downstream, c.opts.Logger, c.opts.Metrics)
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Run(ctx)
		}()
	}

	d := NewDispatcher(c.opts.InputQueue, dispatchCh, c.opts.SleepInterval, c.opts.Logger, c.opts.Metrics)
	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		d.Run(ctx)
	}()

	select {
	case sig := <-sigCh:
		c.opts.Logger.WithField("signal", sig.String()).Info("shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	<-dispatcherDone
	wg.Wait()

	snap := c.opts.Metrics.Snapshot()
	c.opts.Logger.WithField("received", snap.Received).
		WithField("posted_ok", snap.PostedOK).
		WithField("posted_fail", snap.PostedFail).
		WithField("deleted", snap.Deleted).
		WithField("dropped_md5", snap.DroppedMD5).
		WithField("forward_fail", snap.ForwardFail).
		Info("Terminated")

	return nil
}
