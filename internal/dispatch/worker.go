package dispatch

import (
	"context"

	"github.com/sqsproxyd/sqsproxyd/internal/downstream"
	"github.com/sqsproxyd/sqsproxyd/internal/logging"
	"github.com/sqsproxyd/sqsproxyd/internal/message"
	"github.com/sqsproxyd/sqsproxyd/internal/metrics"
	"github.com/sqsproxyd/sqsproxyd/internal/queue"
)

// Worker is one of N independent tasks that consumes from the dispatch
// channel, validates integrity, invokes the downstream HTTP endpoint,
// optionally forwards the response to an output queue, and deletes from
// the input queue on success. The queue, downstream and metrics values
// passed to NewWorker are used as given, not copied: the workers a
// Controller starts all share the same instances of each.
type Worker struct {
	id          int
	in          <-chan message.Message
	inputQueue  queue.Queue
	outputQueue queue.Queue // nil when output_sqs_url is not configured
	downstream  downstream.Downstream
	logger      logging.Logger
	metrics     *metrics.Counters
}

// NewWorker builds a Worker. outputQueue may be nil.
func NewWorker(id int, in <-chan message.Message, inputQueue, outputQueue queue.Queue, d downstream.Downstream, logger logging.Logger, m *metrics.Counters) *Worker {
	return &Worker{
		id:          id,
		in:          in,
		inputQueue:  inputQueue,
		outputQueue: outputQueue,
		downstream:  d,
		logger:      logger,
		metrics:     m,
	}
}

// Run consumes messages until ctx is cancelled. A message already pulled
// off the channel is processed with a background context, not ctx: a
// worker must not abandon a message mid-HTTP-POST on shutdown, it finishes
// processMessage then exits.
func (w *Worker) Run(ctx context.Context) {
	log := w.logger.WithField("worker", w.id)
	for {
		select {
		case m, ok := <-w.in:
			if !ok {
				return
			}
			w.processMessage(context.Background(), m)
		case <-ctx.Done():
			log.Info("worker shutting down")
			return
		}
	}
}

// processMessage runs the fixed sequence of hash check, POST, optional
// forward, delete. The order is the basis for the at-least-once contract:
// nothing is acknowledged until every prior step has succeeded.
func (w *Worker) processMessage(ctx context.Context, m message.Message) {
	log := w.logger.WithField("worker", w.id).WithField("message_id", m.ID)

	if !m.CheckHash() {
		w.metrics.IncDroppedMD5()
		log.Warn("message failed integrity check, dropping without ack")
		return
	}

	success, body, err := w.downstream.Post(ctx, m.Body, m.ID)
	if err != nil {
		w.metrics.IncPostedFail()
		log.WithError(err).Warn("downstream call failed, message will redeliver")
		return
	}
	if !success {
		w.metrics.IncPostedFail()
		log.WithField("response", body).Warn("downstream returned non-2xx, not acknowledging")
		return
	}
	w.metrics.IncPostedOK()

	if w.outputQueue != nil {
		if err := w.outputQueue.SendMessage(ctx, body); err != nil {
			w.metrics.IncForwardFail()
			log.WithError(err).Warn("forwarding response to output queue failed, not acknowledging input")
			return
		}
	}

	if err := w.inputQueue.DeleteMessage(ctx, m.ReceiptHandle); err != nil {
		log.WithError(err).Warn("delete failed, message will redeliver")
		return
	}
	w.metrics.IncDeleted()
}
