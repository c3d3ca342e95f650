package watch

import (
	"context"
	"sync"

	"github.com/fsmkit/fsmkit"
)

// Subscription delivers machine events over a channel. Events are sent
// non-blocking: when the buffer is full, new events are dropped for this
// subscription rather than stalling the machine's synchronous notification.
// All methods are safe for concurrent use.
type Subscription[C any] struct {
	ch     chan fsmkit.Event[C]
	stop   func()
	closed bool
	mu     sync.RWMutex
}

// Events subscribes to all events of the machine and returns a channel-backed
// subscription. The subscription is closed automatically when the provided
// context is cancelled.
func Events[C any](ctx context.Context, m *fsmkit.Machine[C], opts ...Option) *Subscription[C] {
	options := &options{
		// Minimum buffer size of 1 keeps sends non-blocking
		buffer: defaultBuffer,
	}
	for _, opt := range opts {
		opt(options)
	}

	s := &Subscription[C]{
		ch: make(chan fsmkit.Event[C], max(options.buffer, 1)),
	}
	s.stop = m.On(func(e fsmkit.Event[C]) {
		s.send(e)
	})

	// Auto-cleanup on context cancellation
	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			_ = s.Close()
		}()
	}

	return s
}

// C returns the receive channel. It is closed when the subscription closes.
func (s *Subscription[C]) C() <-chan fsmkit.Event[C] {
	return s.ch
}

// Close unsubscribes from the machine and closes the channel.
// It is safe to call Close multiple times.
func (s *Subscription[C]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.stop()
	close(s.ch)
	return nil
}

func (s *Subscription[C]) send(e fsmkit.Event[C]) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return
	}

	select {
	case s.ch <- e:
	default:
	}
}

const defaultBuffer = 16

// Option configures a subscription.
type Option func(*options)

type options struct {
	buffer int
}

// WithBuffer sets the channel buffer size. Values below 1 are raised to 1.
func WithBuffer(n int) Option {
	return func(o *options) {
		o.buffer = n
	}
}
