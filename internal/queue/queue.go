// Package queue defines the Queue Port: the abstraction sqsproxyd uses to
// receive, send and delete messages against an AWS-SQS-shaped message
// queue, plus the reference adapter that speaks to the real service (or a
// local emulator via a custom endpoint).
package queue

import (
	"context"

	"github.com/sqsproxyd/sqsproxyd/internal/message"
)

// Queue is the capability set a message queue must expose. The dispatcher
// only ever calls ReceiveMessages; workers call SendMessage (on the
// optional output queue) and DeleteMessage (on the input queue).
type Queue interface {
	// ReceiveMessages long-polls for a batch of messages. A nil slice (with
	// a nil error) means the poll yielded nothing; callers must not treat
	// that as an error.
	ReceiveMessages(ctx context.Context) ([]message.Message, error)
	// SendMessage publishes body verbatim, with no additional framing.
	SendMessage(ctx context.Context, body string) error
	// DeleteMessage removes a message by receipt handle. Idempotent at the queue level.
	DeleteMessage(ctx context.Context, receiptHandle string) error
}
