package messaging

import (
	"context"
	"io"
	"strconv"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// Memory is an in-process broker. Consumers of one topic share its queue, so
// each message is handled once. A nack puts the message back at the tail.
type Memory struct {
	buffer int
	seq    atomic.Int64

	mu     sync.Mutex
	topics map[string]chan memoryMessage
	done   chan struct{}
	closed bool
}

type memoryMessage struct {
	msg      OutgoingMessage
	id       string
	ts       time.Time
	attempts int
}

// NewMemory returns an in-process broker with the given per-topic buffer.
func NewMemory(buffer int) *Memory {
	if buffer <= 0 {
		buffer = 64
	}
	return &Memory{
		buffer: buffer,
		topics: map[string]chan memoryMessage{},
		done:   make(chan struct{}),
	}
}

func (m *Memory) queue(topic string) (chan memoryMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, io.ErrClosedPipe
	}
	q, ok := m.topics[topic]
	if !ok {
		q = make(chan memoryMessage, m.buffer)
		m.topics[topic] = q
	}
	return q, nil
}

// Close stops all consumers. Queued messages are dropped.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

// Publish enqueues msg on destination, blocking while the queue is full.
func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrDestinationRequired
	}
	if msg.Delay > 0 {
		return PublishResult{}, ErrUnsupported
	}

	q, err := m.queue(destination)
	if err != nil {
		return PublishResult{}, err
	}

	mm := memoryMessage{
		msg:      msg,
		id:       strconv.FormatInt(m.seq.Inc(), 10),
		ts:       time.Now(),
		attempts: 1,
	}

	select {
	case q <- mm:
		return PublishResult{MessageID: mm.id, Topic: destination, Timestamp: mm.ts}, nil
	case <-ctx.Done():
		return PublishResult{}, ctx.Err()
	case <-m.done:
		return PublishResult{}, io.ErrClosedPipe
	}
}

// Consume handles messages from source until ctx is done or the broker is closed.
func (m *Memory) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if err := validateConsume(ctx, source, handler); err != nil {
		return err
	}

	q, err := m.queue(source)
	if err != nil {
		return err
	}

	co := newConsumeOptions(opts...)

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-m.done:
					return
				case mm := <-q:
					_ = dispatch(ctx, "memory", handler, m.delivery(source, q, mm), co.autoAck)
				}
			}
		})
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

func (m *Memory) delivery(topic string, q chan memoryMessage, mm memoryMessage) *delivery {
	return &delivery{
		body:     mm.msg.Body,
		key:      mm.msg.Key,
		headers:  mm.msg.Headers,
		id:       mm.id,
		topic:    topic,
		ts:       mm.ts,
		attempts: mm.attempts,
		nack: func(ctx context.Context) error {
			mm.attempts++
			select {
			case q <- mm:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			case <-m.done:
				return io.ErrClosedPipe
			}
		},
	}
}
