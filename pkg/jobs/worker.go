package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/artem13815/career/pkg/logger"
)

type WorkerOptions struct {
	Concurrency  int
	PollInterval time.Duration
	MaxAttempts  int
	// Visibility is how long a running job may go without a heartbeat before
	// another worker may claim it again.
	Visibility time.Duration
	RetryBase  time.Duration
}

func (o *WorkerOptions) defaults() {
	if o.Concurrency < 1 {
		o.Concurrency = 1
	}
	if o.PollInterval <= 0 {
		o.PollInterval = time.Second
	}
	if o.MaxAttempts < 1 {
		o.MaxAttempts = 3
	}
	if o.Visibility <= 0 {
		o.Visibility = 5 * time.Minute
	}
	if o.RetryBase <= 0 {
		o.RetryBase = 30 * time.Second
	}
}

type Worker struct {
	queue    Queue
	registry *Registry
	log      *logger.Logger
	opts     WorkerOptions
	now      func() time.Time
}

func NewWorker(q Queue, reg *Registry, baseLog *logger.Logger, opts WorkerOptions) *Worker {
	opts.defaults()
	return &Worker{
		queue:    q,
		registry: reg,
		log:      baseLog.With("component", "JobWorker"),
		opts:     opts,
		now:      time.Now,
	}
}

// Run polls the queue with Concurrency loops until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("Starting job worker pool", "concurrency", w.opts.Concurrency)
	var wg sync.WaitGroup
	for i := 0; i < w.opts.Concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w.runLoop(ctx, workerID)
		}(i + 1)
	}
	wg.Wait()
	return nil
}

func (w *Worker) runLoop(ctx context.Context, workerID int) {
	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info("Worker loop stopped", "worker_id", workerID)
			return
		case <-ticker.C:
			// drain while there is work
			for {
				ran, err := w.RunOnce(ctx)
				if err != nil {
					w.log.Warn("Claim failed", "worker_id", workerID, "error", err)
				}
				if !ran || ctx.Err() != nil {
					break
				}
			}
		}
	}
}

// RunOnce claims and runs at most one job. It reports whether a job was claimed.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	job, err := w.queue.Claim(ctx, w.opts.Visibility)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}
	log := w.log.With("job_id", job.ID, "kind", job.Task.Kind, "target_id", job.Task.TargetID, "attempt", job.Attempts)

	h, ok := w.registry.Get(job.Task.Kind)
	if !ok {
		log.Warn("No handler registered for job kind")
		return true, w.queue.Fail(ctx, job.ID, "no handler registered for "+string(job.Task.Kind), nil)
	}

	stopBeat := w.heartbeat(ctx, job)
	runErr := w.invoke(ctx, h, job.Task)
	stopBeat()

	if runErr == nil {
		log.Debug("Job done")
		return true, w.queue.Complete(ctx, job.ID)
	}
	if job.Attempts >= w.opts.MaxAttempts {
		log.Error("Job failed permanently", "error", runErr)
		return true, w.queue.Fail(ctx, job.ID, runErr.Error(), nil)
	}
	retryAt := w.now().Add(w.backoff(job.Attempts))
	log.Warn("Job failed, will retry", "error", runErr, "retry_at", retryAt)
	return true, w.queue.Fail(ctx, job.ID, runErr.Error(), &retryAt)
}

func (w *Worker) invoke(ctx context.Context, h Handler, t Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h(ctx, t)
}

func (w *Worker) heartbeat(ctx context.Context, job *Job) (stop func()) {
	beatCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		t := time.NewTicker(w.opts.Visibility / 3)
		defer t.Stop()
		for {
			select {
			case <-beatCtx.Done():
				return
			case <-t.C:
				if err := w.queue.Heartbeat(beatCtx, job.ID); err != nil && beatCtx.Err() == nil {
					w.log.Warn("Heartbeat failed", "job_id", job.ID, "error", err)
				}
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

func (w *Worker) backoff(attempt int) time.Duration {
	d := w.opts.RetryBase
	for i := 1; i < attempt; i++ {
		d *= 2
		if d > 30*time.Minute {
			return 30 * time.Minute
		}
	}
	return d
}
