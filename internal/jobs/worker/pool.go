package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yungbote/consciousness-backend/internal/observability"
	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

var (
	ErrQueueFull  = errors.New("worker queue full")
	ErrPoolClosed = errors.New("worker pool closed")
)

type Job struct {
	Type    string
	Payload any
}

type Config struct {
	Concurrency int
	QueueSize   int
}

// Pool runs jobs on a fixed number of goroutines fed by a bounded queue. Jobs
// are in-memory only: a full queue or a process exit drops them.
type Pool struct {
	log      *logger.Logger
	registry *Registry
	cfg      Config

	queue chan Job
	wg    sync.WaitGroup

	mu      sync.RWMutex
	closed  bool
	started bool

	runCtx     context.Context
	cancelRuns context.CancelFunc
}

func NewPool(baseLog *logger.Logger, registry *Registry, cfg Config) *Pool {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	return &Pool{
		log:      baseLog.With("component", "WorkerPool"),
		registry: registry,
		cfg:      cfg,
		queue:    make(chan Job, cfg.QueueSize),
	}
}

// Start launches the workers. Jobs run on a context that keeps ctx's values
// but not its cancellation; only Close can abort them.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true
	p.runCtx, p.cancelRuns = context.WithCancel(context.WithoutCancel(ctx))

	p.log.Info("Starting worker pool", "concurrency", p.cfg.Concurrency, "queue_size", p.cfg.QueueSize)
	for i := 0; i < p.cfg.Concurrency; i++ {
		p.wg.Add(1)
		go p.runLoop(i + 1)
	}
}

// Submit enqueues job without blocking.
func (p *Pool) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.queue <- job:
		observability.Current().SetWorkerQueueDepth(len(p.queue))
		return nil
	default:
		observability.Current().IncWorkerTask(job.Type, "dropped")
		p.log.Warn("Worker queue full, dropping job", "job_type", job.Type, "queue_size", p.cfg.QueueSize)
		return ErrQueueFull
	}
}

// Close stops intake and waits for queued and running jobs to finish. If ctx
// ends first, running jobs are cancelled and ctx's error is returned once
// they return.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	started := p.started
	p.mu.Unlock()

	if !started {
		return nil
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancelRuns()
		p.log.Info("Worker pool drained")
		return nil
	case <-ctx.Done():
		p.cancelRuns()
		<-done
		p.log.Warn("Worker pool drain interrupted", "error", ctx.Err())
		return ctx.Err()
	}
}

func (p *Pool) runLoop(workerID int) {
	defer p.wg.Done()
	for job := range p.queue {
		observability.Current().SetWorkerQueueDepth(len(p.queue))
		p.runOne(workerID, job)
	}
	p.log.Debug("Worker loop stopped", "worker_id", workerID)
}

func (p *Pool) runOne(workerID int, job Job) {
	h, ok := p.registry.Get(job.Type)
	if !ok {
		p.log.Warn("No handler registered for job_type", "worker_id", workerID, "job_type", job.Type)
		observability.Current().IncWorkerTask(job.Type, "unhandled")
		return
	}

	defer func() {
		if r := recover(); r != nil {
			p.log.Error("Job handler panic",
				"worker_id", workerID,
				"job_type", job.Type,
				"panic", fmt.Sprint(r),
			)
			observability.Current().IncWorkerTask(job.Type, "panic")
		}
	}()

	if err := h.Run(p.runCtx, job.Payload); err != nil {
		p.log.Warn("Job failed", "worker_id", workerID, "job_type", job.Type, "error", err)
		observability.Current().IncWorkerTask(job.Type, "failed")
		return
	}
	observability.Current().IncWorkerTask(job.Type, "succeeded")
}
