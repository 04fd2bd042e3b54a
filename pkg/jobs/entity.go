package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindExtraction       Kind = "extraction.execute"
	KindDiagnosis        Kind = "diagnosis.execute"
	KindLegacyStepDetail Kind = "legacy.step_detail"
)

// Task is a unit of deferred work.
type Task struct {
	Kind     Kind            `json:"kind"`
	TargetID uuid.UUID       `json:"targetId"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Job is a persisted Task with delivery bookkeeping.
type Job struct {
	ID          uuid.UUID
	Task        Task
	Status      Status
	Attempts    int
	LastError   string
	RunAfter    time.Time
	HeartbeatAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Dispatcher hands a task to whatever executes it. Dispatch returns once the
// task is accepted; it never waits for the task to run.
type Dispatcher interface {
	Dispatch(ctx context.Context, t Task) error
}

// Queue is the durable job table.
type Queue interface {
	Enqueue(ctx context.Context, t Task) (Job, error)
	// Claim marks the oldest runnable job as running and returns it, or nil.
	// A running job whose heartbeat is older than visibility is runnable again.
	Claim(ctx context.Context, visibility time.Duration) (*Job, error)
	Heartbeat(ctx context.Context, id uuid.UUID) error
	Complete(ctx context.Context, id uuid.UUID) error
	// Fail requeues the job at retryAt, or fails it for good when retryAt is nil.
	Fail(ctx context.Context, id uuid.UUID, reason string, retryAt *time.Time) error
}
