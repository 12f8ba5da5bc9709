package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqsproxyd/sqsproxyd/internal/downstream/downstreamtesting"
	"github.com/sqsproxyd/sqsproxyd/internal/metrics"
	"github.com/sqsproxyd/sqsproxyd/internal/queue/queuetesting"
)

func TestController_HealthGateRecoversThenStartsWorkers(t *testing.T) {
	input := queuetesting.NewMockQueue()
	ds := downstreamtesting.NewMockDownstream()
	ds.GetErr = errors.New("connection refused")
	ds.GetSucceedsAfter = 2 // fails twice, succeeds on the third attempt
	mx := &metrics.Counters{}

	ctx, cancel := context.WithCancel(context.Background())

	c := NewController(Options{
		InputQueue:          input,
		Downstream:          ds,
		HealthCheckURL:      "http://example.invalid/health",
		HealthCheckInterval: 2 * time.Millisecond,
		WorkerConcurrency:   2,
		SleepInterval:       2 * time.Millisecond,
		Logger:              testLogger(),
		Metrics:             mx,
	})

	runDone := make(chan error, 1)
	go func() { runDone <- c.Run(ctx) }()

	require.Eventually(t, func() bool {
		return ds.GetCallCount() >= 3
	}, time.Second, time.Millisecond, "health gate never reached its third attempt")

	require.Eventually(t, func() bool {
		return input.ReceiveCallCount() > 0
	}, time.Second, time.Millisecond, "dispatcher never started receiving after the gate opened")

	cancel()
	select {
	case err := <-runDone:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("controller did not return after shutdown")
	}

	assert.Equal(t, 3, ds.GetCallCount())
}

func TestController_GracefulShutdownDrainsIdleWorkers(t *testing.T) {
	input := queuetesting.NewMockQueue() // every receive returns empty, workers stay idle
	ds := downstreamtesting.NewMockDownstream()

	ctx, cancel := context.WithCancel(context.Background())

	c := NewController(Options{
		InputQueue:        input,
		Downstream:        ds,
		WorkerConcurrency: 4,
		SleepInterval:     time.Hour, // never fires during the test
		Logger:            testLogger(),
	})

	runDone := make(chan error, 1)
	go func() { runDone <- c.Run(ctx) }()

	require.Eventually(t, func() bool {
		return input.ReceiveCallCount() > 0
	}, time.Second, time.Millisecond, "dispatcher never started")

	cancel()
	select {
	case err := <-runDone:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("controller did not drain and return within a reasonable time")
	}
}

func TestController_ParentCancellationBeforeHealthGateReadyReturnsError(t *testing.T) {
	input := queuetesting.NewMockQueue()
	ds := downstreamtesting.NewMockDownstream()
	ds.GetErr = errors.New("still starting up")
	ds.GetSucceedsAfter = 1 << 20 // never succeeds within the test

	ctx, cancel := context.WithCancel(context.Background())

	c := NewController(Options{
		InputQueue:          input,
		Downstream:          ds,
		HealthCheckURL:      "http://example.invalid/health",
		HealthCheckInterval: time.Hour,
		WorkerConcurrency:   1,
		Logger:              testLogger(),
	})

	runDone := make(chan error, 1)
	go func() { runDone <- c.Run(ctx) }()

	require.Eventually(t, func() bool {
		return ds.GetCallCount() >= 1
	}, time.Second, time.Millisecond, "health gate never made its first attempt")

	cancel()
	select {
	case err := <-runDone:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("controller did not return after shutdown during the health gate")
	}

	assert.Equal(t, 0, input.ReceiveCallCount())
}
