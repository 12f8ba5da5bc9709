// Package queuetesting provides a stub Queue Port for unit tests: no
// mocking framework, just a struct that records every call and lets the
// test script canned responses in sequence.
package queuetesting

import (
	"context"
	"sync"

	"github.com/sqsproxyd/sqsproxyd/internal/message"
)

// ReceiveResult is one scripted response to a ReceiveMessages call.
type ReceiveResult struct {
	Messages []message.Message
	Err      error
}

// MockQueue records every ReceiveMessages/SendMessage/DeleteMessage call
// and plays back scripted, sequenced results. Safe for concurrent use by
// a worker pool.
type MockQueue struct {
	mu sync.Mutex

	// ReceiveResults are returned in order, one per ReceiveMessages call; the
	// last entry repeats once exhausted.
	ReceiveResults []ReceiveResult
	receiveCalls   int

	SendErr    error
	DeleteErr  error
	SentBodies []string
	Deleted    []string
}

// NewMockQueue returns a MockQueue with no scripted behavior; ReceiveMessages
// will return (nil, nil) until ReceiveResults is populated.
func NewMockQueue() *MockQueue {
	return &MockQueue{}
}

// ReceiveMessages satisfies queue.Queue.
func (m *MockQueue) ReceiveMessages(ctx context.Context) ([]message.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.ReceiveResults) == 0 {
		m.receiveCalls++
		return nil, nil
	}

	idx := m.receiveCalls
	if idx >= len(m.ReceiveResults) {
		idx = len(m.ReceiveResults) - 1
	}
	m.receiveCalls++
	res := m.ReceiveResults[idx]
	return res.Messages, res.Err
}

// SendMessage satisfies queue.Queue.
func (m *MockQueue) SendMessage(ctx context.Context, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SendErr != nil {
		return m.SendErr
	}
	m.SentBodies = append(m.SentBodies, body)
	return nil
}

// DeleteMessage satisfies queue.Queue.
func (m *MockQueue) DeleteMessage(ctx context.Context, receiptHandle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.Deleted = append(m.Deleted, receiptHandle)
	return nil
}

// ReceiveCallCount reports how many times ReceiveMessages has been called.
func (m *MockQueue) ReceiveCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.receiveCalls
}

// SendCallCount reports how many times SendMessage succeeded in recording a body.
func (m *MockQueue) SendCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SentBodies)
}

// DeleteCallCount reports how many times DeleteMessage succeeded in recording a receipt handle.
func (m *MockQueue) DeleteCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Deleted)
}
