package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/pdfinsight/internal/config"
)

// ErrShuttingDown is returned by Submit once Stop has been called.
var ErrShuttingDown = errors.New("orchestrator is shutting down")

// Orchestrator queues batch outline jobs onto a pool of workers.
type Orchestrator struct {
	jobs    *JobStore
	queue   chan *Job
	svc     *Service
	log     *slog.Logger
	workers int
	sweep   time.Duration

	mu      sync.RWMutex // guards stopped and the queue close
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewOrchestrator wires the job store and queue. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, svc *Service, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:    NewJobStore(cfg.JobTTL),
		queue:   make(chan *Job, max(cfg.MaxQueueSize, 1)),
		svc:     svc,
		log:     log,
		workers: max(cfg.WorkerCount, 1),
		sweep:   sweepInterval(cfg.JobTTL),
	}
}

// sweepInterval checks for expired jobs four times per TTL, at most every
// five minutes.
func sweepInterval(ttl time.Duration) time.Duration {
	d := ttl / 4
	switch {
	case d <= 0 || d > 5*time.Minute:
		return 5 * time.Minute
	case d < time.Second:
		return time.Second
	}
	return d
}

// Start launches the workers and the expired-job sweeper.
func (o *Orchestrator) Start(ctx context.Context) {
	ctx, o.cancel = context.WithCancel(ctx)

	for id := range o.workers {
		o.wg.Add(1)
		go o.runWorker(ctx, id)
	}

	o.wg.Add(1)
	go o.runSweeper(ctx)

	o.log.Info("outline workers started", "workers", o.workers, "queue_size", cap(o.queue))
}

func (o *Orchestrator) runWorker(ctx context.Context, id int) {
	defer o.wg.Done()
	w := NewWorker(o.svc, o.log.With("worker", id))
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-o.queue:
			if !ok {
				return
			}
			w.Process(ctx, job)
		}
	}
}

func (o *Orchestrator) runSweeper(ctx context.Context) {
	defer o.wg.Done()
	ticker := time.NewTicker(o.sweep)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			before := o.jobs.Len()
			o.jobs.Cleanup()
			if n := before - o.jobs.Len(); n > 0 {
				o.log.Debug("expired jobs removed", "count", n)
			}
		}
	}
}

// Stop cancels in-flight jobs and waits for the workers to exit. Jobs still
// queued are left in the queued state.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit tracks the job and queues it without blocking.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		job.SetStatus(StatusFailed, "shutdown")
		return ErrShuttingDown
	}

	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", cap(o.queue))
	}
}

// GetJob returns a tracked job, or nil if unknown or expired.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth is the number of jobs waiting for a worker.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// TrackedJobs is the number of jobs held in the store.
func (o *Orchestrator) TrackedJobs() int {
	return o.jobs.Len()
}

func (o *Orchestrator) Service() *Service {
	return o.svc
}
