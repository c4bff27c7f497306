package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// PoolConfig holds worker pool configuration.
type PoolConfig struct {
	NumWorkers int
	QueueSize  int
}

// DefaultPoolConfig returns the default pool configuration.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		NumWorkers: 5,
		QueueSize:  64,
	}
}

// Pool runs submitted tasks on a fixed set of worker goroutines.
type Pool struct {
	config PoolConfig
	tasks  chan func()
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.RWMutex

	running bool
	started bool
}

// NewPool creates a new worker pool. Non-positive settings fall back to the defaults.
func NewPool(cfg PoolConfig) *Pool {
	def := DefaultPoolConfig()
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = def.NumWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	return &Pool{
		config: cfg,
		tasks:  make(chan func(), cfg.QueueSize),
	}
}

// Start launches the workers. A pool can be started once.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return ErrPoolStarted
	}
	p.started = true
	p.running = true

	workerCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.config.NumWorkers; i++ {
		workerID := fmt.Sprintf("worker-%d", i+1)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.work(workerCtx, workerID)
		}()
	}

	slog.Debug("Worker pool started", slog.Int("workers", p.config.NumWorkers), slog.Int("queue_size", p.config.QueueSize))
	return nil
}

// Submit queues task for execution. It blocks while the queue is full.
func (p *Pool) Submit(ctx context.Context, task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.running {
		return ErrPoolStopped
	}

	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySubmit queues task without blocking. It fails with ErrPoolStopped when the pool is not running
// and with ErrPoolBusy when the task cannot be queued right now, in which case Submit may still succeed.
func (p *Pool) TrySubmit(task func()) error {
	if !p.mu.TryRLock() {
		// Start or Stop holds or waits for the write lock
		return ErrPoolBusy
	}
	defer p.mu.RUnlock()
	if !p.running {
		return ErrPoolStopped
	}

	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolBusy
	}
}

// Stop stops accepting tasks and waits for queued ones to finish.
// If ctx expires first the workers are abandoned and ctx.Err is returned.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	close(p.tasks)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		slog.Debug("Worker pool stopped")
		return nil
	case <-ctx.Done():
		p.cancel()
		slog.Warn("Timeout waiting for workers to stop")
		return ctx.Err()
	}
}

// IsRunning reports whether the pool accepts tasks.
func (p *Pool) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

func (p *Pool) work(ctx context.Context, workerID string) {
	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			p.run(workerID, task)
		}
	}
}

func (p *Pool) run(workerID string, task func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Worker task panic recovered", slog.String("worker", workerID), slog.Any("error", r))
		}
	}()
	task()
}
