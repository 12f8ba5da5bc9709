// Package metrics tracks per-message outcome counters for the daemon,
// exposed for logging and operational visibility. It is additive
// instrumentation and never influences delivery semantics.
package metrics

import "sync/atomic"

// Counters tracks outcomes across the lifetime of the daemon. The zero
// value is ready to use. All fields are safe for concurrent increment
// from multiple workers.
type Counters struct {
	Received   int64
	PostedOK   int64
	PostedFail int64
	Deleted    int64
	DroppedMD5 int64
	ForwardFail int64
}

func (c *Counters) IncReceived()   { atomic.AddInt64(&c.Received, 1) }
func (c *Counters) IncPostedOK()   { atomic.AddInt64(&c.PostedOK, 1) }
func (c *Counters) IncPostedFail() { atomic.AddInt64(&c.PostedFail, 1) }
func (c *Counters) IncDeleted()    { atomic.AddInt64(&c.Deleted, 1) }
func (c *Counters) IncDroppedMD5() { atomic.AddInt64(&c.DroppedMD5, 1) }
func (c *Counters) IncForwardFail() { atomic.AddInt64(&c.ForwardFail, 1) }

// Snapshot is a point-in-time copy of Counters suitable for logging.
type Snapshot struct {
	Received    int64
	PostedOK    int64
	PostedFail  int64
	Deleted     int64
	DroppedMD5  int64
	ForwardFail int64
}

// Snapshot reads all counters atomically.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Received:    atomic.LoadInt64(&c.Received),
		PostedOK:    atomic.LoadInt64(&c.PostedOK),
		PostedFail:  atomic.LoadInt64(&c.PostedFail),
		Deleted:     atomic.LoadInt64(&c.Deleted),
		DroppedMD5:  atomic.LoadInt64(&c.DroppedMD5),
		ForwardFail: atomic.LoadInt64(&c.ForwardFail),
	}
}
