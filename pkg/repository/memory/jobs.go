package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/career/pkg/apperr"
	"github.com/artem13815/career/pkg/jobs"
)

// Jobs is an in-process jobs.Queue with the same claim rules as the
// Postgres table.
type Jobs struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]jobs.Job

	Now func() time.Time
}

var _ jobs.Queue = (*Jobs)(nil)

func NewJobs() *Jobs {
	return &Jobs{jobs: map[uuid.UUID]jobs.Job{}, Now: time.Now}
}

func (q *Jobs) now() time.Time { return q.Now().UTC() }

func (q *Jobs) Enqueue(_ context.Context, t jobs.Task) (jobs.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.now()
	j := jobs.Job{ID: uuid.New(), Task: t, Status: jobs.StatusQueued, RunAfter: now, CreatedAt: now, UpdatedAt: now}
	q.jobs[j.ID] = j
	return j, nil
}

func (q *Jobs) Claim(_ context.Context, visibility time.Duration) (*jobs.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.now()
	var candidates []jobs.Job
	for _, j := range q.jobs {
		switch {
		case j.Status == jobs.StatusQueued && !j.RunAfter.After(now):
			candidates = append(candidates, j)
		case j.Status == jobs.StatusRunning && j.HeartbeatAt != nil && j.HeartbeatAt.Before(now.Add(-visibility)):
			candidates = append(candidates, j)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, k int) bool { return candidates[i].CreatedAt.Before(candidates[k].CreatedAt) })
	j := candidates[0]
	j.Status = jobs.StatusRunning
	j.Attempts++
	j.HeartbeatAt = &now
	j.UpdatedAt = now
	q.jobs[j.ID] = j
	return &j, nil
}

func (q *Jobs) Heartbeat(_ context.Context, id uuid.UUID) error {
	return q.update(id, func(j *jobs.Job, now time.Time) { j.HeartbeatAt = &now })
}

func (q *Jobs) Complete(_ context.Context, id uuid.UUID) error {
	return q.update(id, func(j *jobs.Job, _ time.Time) {
		j.Status = jobs.StatusDone
		j.HeartbeatAt = nil
	})
}

func (q *Jobs) Fail(_ context.Context, id uuid.UUID, reason string, retryAt *time.Time) error {
	return q.update(id, func(j *jobs.Job, _ time.Time) {
		j.LastError = reason
		j.HeartbeatAt = nil
		if retryAt == nil {
			j.Status = jobs.StatusFailed
			return
		}
		j.Status = jobs.StatusQueued
		j.RunAfter = retryAt.UTC()
	})
}

func (q *Jobs) update(id uuid.UUID, fn func(*jobs.Job, time.Time)) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	j, ok := q.jobs[id]
	if !ok {
		return apperr.NotFound("job")
	}
	now := q.now()
	fn(&j, now)
	j.UpdatedAt = now
	q.jobs[id] = j
	return nil
}

// Snapshot returns all jobs ordered by creation.
func (q *Jobs) Snapshot() []jobs.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]jobs.Job, 0, len(q.jobs))
	for _, j := range q.jobs {
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.Before(out[k].CreatedAt) })
	return out
}
