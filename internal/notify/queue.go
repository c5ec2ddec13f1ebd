package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned by Pool.Enqueue when no buffer slot is free.
	ErrQueueFull = errors.New("notification queue is full")
	// ErrQueueClosed is returned when enqueueing after Close.
	ErrQueueClosed = errors.New("notification queue is closed")
)

// Handler processes one job.
type Handler func(ctx context.Context, job Job) error

// Queue accepts jobs for asynchronous delivery. Enqueue never waits for delivery.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Close() error
}

// Pool is a bounded in-process queue drained by a fixed set of workers.
type Pool struct {
	jobs    chan Job
	handler Handler
	timeout time.Duration
	log     *zap.SugaredLogger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool starts workers goroutines reading from a buffer of size jobs.
// Each job runs with its own context bounded by timeout.
func NewPool(handler Handler, workers, size int, timeout time.Duration, log *zap.SugaredLogger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if size < 0 {
		size = 0
	}
	p := &Pool{
		jobs:    make(chan Job, size),
		handler: handler,
		timeout: timeout,
		log:     log,
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.work()
	}
	return p
}

// Enqueue implements Queue. It fails fast with ErrQueueFull instead of blocking.
func (p *Pool) Enqueue(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrQueueClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case p.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting jobs, drains the buffer and waits for the workers.
func (p *Pool) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()
	p.wg.Wait()
	return nil
}

func (p *Pool) work() {
	defer p.wg.Done()
	for job := range p.jobs {
		if err := p.run(job); err != nil {
			p.log.Errorw("notification job failed", "kind", job.Kind, "user_id", job.Recipient.UserID, "error", err)
		}
	}
}

func (p *Pool) run(job Job) (err error) {
	ctx := context.Background()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in notification handler: %v", r)
		}
	}()
	return p.handler(ctx, job)
}

// Dispatch hands a job to q and logs, rather than returns, any failure.
func Dispatch(ctx context.Context, q Queue, job Job, log *zap.SugaredLogger) {
	if q == nil {
		return
	}
	if err := q.Enqueue(ctx, job); err != nil {
		log.Warnw("notification dropped", "kind", job.Kind, "user_id", job.Recipient.UserID, "error", err)
	}
}
