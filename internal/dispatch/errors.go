package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrLoopClosed is returned when posting to a loop that has been closed or stopped.
	ErrLoopClosed = errors.New("ui loop closed")
	// ErrLoopRunning is returned when Run is called on a loop that is already running.
	ErrLoopRunning = errors.New("ui loop already running")
	// ErrPoolStopped is returned when submitting to a pool that is not running.
	ErrPoolStopped = errors.New("worker pool is not running")
	// ErrPoolBusy is returned by TrySubmit when the task cannot be queued without blocking.
	ErrPoolBusy = errors.New("worker pool is busy")
	// ErrPoolStarted is returned when starting a pool twice.
	ErrPoolStarted = errors.New("worker pool already started")
)

// PanicError carries a panic recovered from a dispatched task.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}
