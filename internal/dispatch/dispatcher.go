package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"

	"github.com/akilcn01-oss/Inventory-Management/internal/metrics"
)

// Handlers are the UI continuations of a dispatched task. Any of them may be nil.
// Exactly one of OnSuccess and OnFailure runs, followed by OnSettled.
type Handlers[T any] struct {
	OnSuccess func(T)
	OnFailure func(error)
	OnSettled func()
}

// Dispatcher runs work on a Pool and posts its continuations to a UIContext.
type Dispatcher struct {
	pool *Pool
	ui   UIContext
}

// NewDispatcher creates a dispatcher over a started pool and a UI context.
func NewDispatcher(pool *Pool, ui UIContext) *Dispatcher {
	return &Dispatcher{pool: pool, ui: ui}
}

// Dispatch runs work on a worker and then posts the matching handlers to the UI context.
// It never blocks, so it may be called from a UI callback: when the pool queue is full the task
// is handed over from a separate goroutine. A panic in work is reported to OnFailure as a *PanicError.
// If the pool no longer accepts work the handlers still run, with OnFailure receiving the submit error.
func Dispatch[T any](ctx context.Context, d *Dispatcher, work func(context.Context) (T, error), h Handlers[T]) *Future[T] {
	f := newFuture[T]()
	metrics.DispatchInFlight.Inc()

	task := func() {
		value, err := runWork(ctx, work)
		f.resolve(value, err)
		settle(d, h, value, err)
	}
	reject := func(err error) {
		var zero T
		f.resolve(zero, err)
		settle(d, h, zero, err)
	}

	switch err := d.pool.TrySubmit(task); {
	case err == nil:
	case errors.Is(err, ErrPoolBusy):
		go func() {
			if err := d.pool.Submit(ctx, task); err != nil {
				reject(err)
			}
		}()
	default:
		var zero T
		f.resolve(zero, err)
		go settle(d, h, zero, err)
	}
	return f
}

// Fail returns an already failed future and posts OnFailure and OnSettled to the UI context.
// It is for work rejected before it reaches a worker. Like Dispatch it never blocks the caller.
func Fail[T any](d *Dispatcher, err error, h Handlers[T]) *Future[T] {
	f := newFuture[T]()
	metrics.DispatchInFlight.Inc()

	var zero T
	f.resolve(zero, err)
	go settle(d, h, zero, err)
	return f
}

func runWork[T any](ctx context.Context, work func(context.Context) (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return work(ctx)
}

func settle[T any](d *Dispatcher, h Handlers[T], value T, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}
	metrics.DispatchCompleted.WithLabelValues(outcome).Inc()

	continuation := func() {
		defer metrics.DispatchInFlight.Dec()
		defer func() {
			if h.OnSettled != nil {
				h.OnSettled()
			}
		}()

		if err != nil {
			if h.OnFailure != nil {
				h.OnFailure(err)
			}
			return
		}
		if h.OnSuccess != nil {
			h.OnSuccess(value)
		}
	}

	if postErr := d.ui.Post(continuation); postErr != nil {
		metrics.DispatchInFlight.Dec()
		level := slog.LevelWarn
		if errors.Is(postErr, ErrLoopClosed) {
			level = slog.LevelDebug
		}
		slog.Log(context.Background(), level, "Dropping UI continuation", slog.Any("err", postErr), slog.Any("task_err", err))
	}
}
