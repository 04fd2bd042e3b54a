package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/artem13815/career/pkg/logger"
)

// QueueDispatcher persists tasks into the job table for the worker pool.
type QueueDispatcher struct {
	queue Queue
	log   *logger.Logger
}

func NewQueueDispatcher(q Queue, log *logger.Logger) *QueueDispatcher {
	return &QueueDispatcher{queue: q, log: log.With("component", "QueueDispatcher")}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, t Task) error {
	job, err := d.queue.Enqueue(ctx, t)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", t.Kind, err)
	}
	d.log.Debug("Task enqueued", "job_id", job.ID, "kind", t.Kind, "target_id", t.TargetID)
	return nil
}

// InlineDispatcher runs tasks on a detached goroutine in this process.
// Work is lost if the process exits first; use it for development only.
type InlineDispatcher struct {
	registry *Registry
	log      *logger.Logger
	timeout  time.Duration
}

func NewInlineDispatcher(reg *Registry, log *logger.Logger, timeout time.Duration) *InlineDispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &InlineDispatcher{registry: reg, log: log.With("component", "InlineDispatcher"), timeout: timeout}
}

func (d *InlineDispatcher) Dispatch(_ context.Context, t Task) error {
	h, ok := d.registry.Get(t.Kind)
	if !ok {
		return fmt.Errorf("no handler registered for %s", t.Kind)
	}
	go func() {
		// The request context ends with the response; the task must outlive it.
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				d.log.Error("Inline task panic", "kind", t.Kind, "target_id", t.TargetID, "panic", r)
			}
		}()
		if err := h(ctx, t); err != nil {
			d.log.Error("Inline task failed", "kind", t.Kind, "target_id", t.TargetID, "error", err)
		}
	}()
	return nil
}
