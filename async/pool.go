// Package async provides the worker pool the language server schedules
// parse and format work on. The request-handling front end never runs that
// work on its own goroutine: it submits a task and awaits the returned
// handle, so a large reparse of one document cannot head-of-line block
// requests for unrelated documents.
package async

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/toonlang/toon-ls/errors"
)

// stopTimeout bounds how long Stop waits for in-flight tasks.
const stopTimeout = 30 * time.Second

// PoolConfig contains configuration for the worker pool.
type PoolConfig struct {
	Workers   int `json:"workers" mapstructure:"workers"`
	QueueSize int `json:"queue_size" mapstructure:"queue_size"`
}

// DefaultPoolConfig returns sensible defaults: a small fixed pool sized for
// interactive editing, with enough queue to absorb a burst of change
// notifications.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Workers:   4,
		QueueSize: 64,
	}
}

func (c PoolConfig) normalized() PoolConfig {
	if c.Workers <= 0 {
		c.Workers = DefaultPoolConfig().Workers
	}
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultPoolConfig().QueueSize
	}
	return c
}

// TaskFunc is the unit of work a task runs on a worker.
type TaskFunc func(ctx context.Context) (any, error)

// Task is the awaitable handle for submitted work.
type Task struct {
	fn     TaskFunc
	done   chan struct{}
	result any
	err    error
}

// Wait blocks until the task completes or the context is done, and returns
// the task's result.
func (t *Task) Wait(ctx context.Context) (any, error) {
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "awaiting task")
	}
}

// Pool is a fixed-size worker pool with a bounded queue.
type Pool struct {
	config    PoolConfig
	queue     chan *Task
	parentCtx context.Context
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	logger    *zap.SugaredLogger
	mu        sync.Mutex
	running   bool
}

// NewPool creates a pool. Workers do not run until Start is called.
func NewPool(ctx context.Context, cfg PoolConfig, logger *zap.SugaredLogger) *Pool {
	cfg = cfg.normalized()
	workerCtx, cancel := context.WithCancel(ctx)
	return &Pool{
		config:    cfg,
		queue:     make(chan *Task, cfg.QueueSize),
		parentCtx: ctx,
		ctx:       workerCtx,
		cancel:    cancel,
		logger:    logger.Named("pool"),
	}
}

// Start spins up the workers. Calling Start after Stop recreates the worker
// context from the parent so the pool can be reused.
func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}

	select {
	case <-p.ctx.Done():
		p.ctx, p.cancel = context.WithCancel(p.parentCtx)
		p.queue = make(chan *Task, p.config.QueueSize)
	default:
	}

	p.running = true
	for i := 0; i < p.config.Workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Debugw("Worker pool started", "workers", p.config.Workers, "queue_size", p.config.QueueSize)
}

// Stop cancels the workers and waits for in-flight tasks, bounded by a
// timeout so shutdown never hangs on a pathological document.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Debugw("Worker pool stopped cleanly")
	case <-time.After(stopTimeout):
		p.logger.Warnw("Worker pool stop timed out", "timeout", stopTimeout)
	}
}

// Submit queues work and returns its awaitable handle. It fails fast when
// the pool is stopped or the queue is full rather than blocking the caller.
func (p *Pool) Submit(fn TaskFunc) (*Task, error) {
	task := &Task{fn: fn, done: make(chan struct{})}

	select {
	case <-p.ctx.Done():
		return nil, errors.ErrPoolStopped
	default:
	}

	select {
	case p.queue <- task:
		return task, nil
	default:
		return nil, errors.ErrQueueFull
	}
}

// Run is Submit followed by Wait: the calling goroutine suspends until a
// worker has produced the result.
func (p *Pool) Run(ctx context.Context, fn TaskFunc) (any, error) {
	task, err := p.Submit(fn)
	if err != nil {
		return nil, err
	}
	return task.Wait(ctx)
}

// Workers returns the configured worker count.
func (p *Pool) Workers() int {
	return p.config.Workers
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case task := <-p.queue:
			p.execute(id, task)
		}
	}
}

func (p *Pool) execute(id int, task *Task) {
	defer func() {
		if r := recover(); r != nil {
			task.err = errors.Newf("task panicked: %v", r)
			p.logger.Errorw("Worker recovered from panic", "worker_id", id, "panic", r)
		}
		close(task.done)
	}()
	task.result, task.err = task.fn(p.ctx)
}
