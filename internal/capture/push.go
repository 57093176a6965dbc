package capture

import (
	"fmt"
	"sync"

	"github.com/murmur-app/murmur/internal/model"
)

// PushStream is a Stream fed by an external producer, typically a remote
// client relaying microphone frames over a WebSocket. The producer calls
// Push for each fragment; chunk cadence is the producer's.
type PushStream struct {
	mu     sync.Mutex
	ch     chan []byte
	closed bool
}

// NewPushStream returns a push-fed stream buffering up to depth chunks.
func NewPushStream(depth int) *PushStream {
	if depth <= 0 {
		depth = 64
	}
	return &PushStream{ch: make(chan []byte, depth)}
}

// Push delivers one fragment to the consumer. Fails once the stream is
// closed; a full buffer drops the fragment rather than blocking the
// producer's read loop.
func (p *PushStream) Push(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("%w: push on closed stream", model.ErrInvalidState)
	}
	select {
	case p.ch <- data:
		return nil
	default:
		return fmt.Errorf("capture buffer full, dropped %d bytes", len(data))
	}
}

// Chunks returns the consumer side of the stream.
func (p *PushStream) Chunks() <-chan []byte { return p.ch }

// Flush is a no-op: pushed fragments are delivered immediately.
func (p *PushStream) Flush() error { return nil }

// Close stops the stream. Safe to call more than once.
func (p *PushStream) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.ch)
	return nil
}

// Closed reports whether Close has been called.
func (p *PushStream) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
