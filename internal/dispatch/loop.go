// Package dispatch moves blocking work off the UI context and brings results back to it.
//
// A Loop is the single UI context: everything posted to it runs serially on the goroutine
// that calls Run. A Pool runs blocking work on a bounded set of workers. Dispatch ties the
// two together: the work runs on a worker and exactly one of its continuations runs on the
// UI context afterwards.
package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// DefaultLoopCapacity is the number of callbacks a Loop buffers before Post blocks.
const DefaultLoopCapacity = 256

// UIContext is the execution context presentation state may be mutated on.
type UIContext interface {
	// Post schedules fn to run on the UI context. It never drops fn silently:
	// either fn will run or an error is returned.
	Post(fn func()) error
}

// Loop is a serialized UI event dispatcher. Callbacks run one at a time, in post order,
// on the goroutine executing Run.
type Loop struct {
	queue   chan func()
	closing chan struct{}
	stopped chan struct{}
	logger  *slog.Logger

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	stopOnce  sync.Once
	running   atomic.Bool
}

// NewLoop creates a loop buffering up to capacity callbacks.
func NewLoop(capacity int) *Loop {
	if capacity <= 0 {
		capacity = DefaultLoopCapacity
	}
	return &Loop{
		queue:   make(chan func(), capacity),
		closing: make(chan struct{}),
		stopped: make(chan struct{}),
		logger:  slog.Default().With(slog.String("component", "ui-loop")),
	}
}

// Post enqueues fn. It blocks while the queue is full and fails with ErrLoopClosed
// once the loop is closed or Run has returned.
func (l *Loop) Post(fn func()) error {
	if fn == nil {
		return nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrLoopClosed
	}
	select {
	case <-l.stopped:
		return ErrLoopClosed
	default:
	}

	select {
	case l.queue <- fn:
		return nil
	case <-l.closing:
		return ErrLoopClosed
	case <-l.stopped:
		return ErrLoopClosed
	}
}

// Run executes posted callbacks on the calling goroutine until ctx is done or Close is called.
// After Close, callbacks already queued are run before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer l.stopOnce.Do(func() { close(l.stopped) })

	for {
		select {
		case <-ctx.Done():
			if pending := len(l.queue); pending > 0 {
				l.logger.Warn("ui loop stopped with pending callbacks", slog.Int("pending", pending))
			}
			return ctx.Err()
		case <-l.closing:
			// wait for posts racing with Close before the final drain
			l.mu.Lock()
			l.mu.Unlock() //nolint:staticcheck

			l.Drain()
			return nil
		case fn := <-l.queue:
			l.invoke(fn)
		}
	}
}

// Drain runs every callback queued right now without waiting for more and returns how many ran.
// It is for shells that own their event loop and must only be called from the UI goroutine,
// never alongside Run.
func (l *Loop) Drain() int {
	n := 0
	for {
		select {
		case fn := <-l.queue:
			l.invoke(fn)
			n++
		default:
			return n
		}
	}
}

// Close stops accepting callbacks. It is safe to call more than once.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		close(l.closing)
		l.mu.Lock()
		l.closed = true
		l.mu.Unlock()
	})
}

// Done is closed when Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.stopped
}

func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("ui callback panic recovered", slog.Any("error", r))
		}
	}()
	fn()
}
