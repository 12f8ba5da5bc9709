// Package message defines the Message value object shared by the queue
// port, the dispatcher and the worker pool.
package message

import (
	"crypto/md5"
	"encoding/hex"
)

// Message is a single unit of work received from the input queue. It
// carries everything a worker needs to validate, deliver and acknowledge
// one queue message, per the source queue's envelope.
type Message struct {
	// Body is the opaque payload, UTF-8 text by convention (often JSON).
	Body string
	// ReceiptHandle is the opaque token required to delete this specific delivery.
	ReceiptHandle string
	// ID is the server-assigned message identifier, propagated to the downstream HTTP call.
	ID string
	// MD5OfBody is the lower-case hex MD5 of Body as reported by the queue.
	MD5OfBody string
}

// CheckHash reports whether the hex MD5 of Body matches MD5OfBody. A
// mismatch means the body was corrupted in transit or the envelope lied
// about its own digest; either way the message must not be delivered.
func (m Message) CheckHash() bool {
	sum := md5.Sum([]byte(m.Body))
	return hex.EncodeToString(sum[:]) == m.MD5OfBody
}
