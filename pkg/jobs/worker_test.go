package jobs_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/career/pkg/jobs"
	"github.com/artem13815/career/pkg/logger"
	"github.com/artem13815/career/pkg/repository/memory"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock { return &clock{t: time.Now().UTC()} }

func task(kind jobs.Kind) jobs.Task { return jobs.Task{Kind: kind, TargetID: uuid.New()} }

func opts(maxAttempts int) jobs.WorkerOptions {
	return jobs.WorkerOptions{Concurrency: 1, MaxAttempts: maxAttempts, Visibility: time.Minute, RetryBase: time.Second}
}

func TestWorkerCompletesJob(t *testing.T) {
	ctx := context.Background()
	q := memory.NewJobs()
	reg := jobs.NewRegistry()
	var got jobs.Task
	reg.Register(jobs.KindExtraction, func(_ context.Context, tk jobs.Task) error {
		got = tk
		return nil
	})
	want := task(jobs.KindExtraction)
	require.NoError(t, jobs.NewQueueDispatcher(q, logger.Nop()).Dispatch(ctx, want))

	w := jobs.NewWorker(q, reg, logger.Nop(), opts(3))
	ran, err := w.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, want.TargetID, got.TargetID)

	snap := q.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, jobs.StatusDone, snap[0].Status)
	assert.Equal(t, 1, snap[0].Attempts)

	ran, err = w.RunOnce(ctx)
	require.NoError(t, err)
	assert.False(t, ran, "queue should be empty")
}

func TestWorkerRetriesThenGivesUp(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	q := memory.NewJobs()
	q.Now = clk.now
	reg := jobs.NewRegistry()
	var calls int32
	reg.Register(jobs.KindDiagnosis, func(context.Context, jobs.Task) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("db down")
	})
	_, err := q.Enqueue(ctx, task(jobs.KindDiagnosis))
	require.NoError(t, err)

	w := jobs.NewWorker(q, reg, logger.Nop(), opts(2))
	ran, err := w.RunOnce(ctx)
	require.NoError(t, err)
	require.True(t, ran)
	snap := q.Snapshot()
	assert.Equal(t, jobs.StatusQueued, snap[0].Status)
	assert.Equal(t, "db down", snap[0].LastError)

	// retry delay has not passed on the queue clock yet
	ran, err = w.RunOnce(ctx)
	require.NoError(t, err)
	assert.False(t, ran)

	clk.advance(time.Hour)
	ran, err = w.RunOnce(ctx)
	require.NoError(t, err)
	require.True(t, ran)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, jobs.StatusFailed, q.Snapshot()[0].Status)
}

func TestWorkerRecoversPanicAndUnknownKind(t *testing.T) {
	ctx := context.Background()
	q := memory.NewJobs()
	reg := jobs.NewRegistry()
	reg.Register(jobs.KindExtraction, func(context.Context, jobs.Task) error { panic("boom") })
	_, err := q.Enqueue(ctx, task(jobs.KindExtraction))
	require.NoError(t, err)

	w := jobs.NewWorker(q, reg, logger.Nop(), opts(1))
	ran, err := w.RunOnce(ctx)
	require.NoError(t, err)
	require.True(t, ran)
	j := q.Snapshot()[0]
	assert.Equal(t, jobs.StatusFailed, j.Status)
	assert.Contains(t, j.LastError, "boom")

	_, err = q.Enqueue(ctx, task(jobs.KindLegacyStepDetail))
	require.NoError(t, err)
	ran, err = w.RunOnce(ctx)
	require.NoError(t, err)
	require.True(t, ran)
	assert.Contains(t, q.Snapshot()[1].LastError, "no handler")
}

func TestQueueReclaimsJobWithStaleHeartbeat(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	q := memory.NewJobs()
	q.Now = clk.now
	_, err := q.Enqueue(ctx, task(jobs.KindExtraction))
	require.NoError(t, err)

	first, err := q.Claim(ctx, time.Minute)
	require.NoError(t, err)
	require.NotNil(t, first)

	again, err := q.Claim(ctx, time.Minute)
	require.NoError(t, err)
	assert.Nil(t, again, "running job with a fresh heartbeat is invisible")

	clk.advance(2 * time.Minute)
	again, err = q.Claim(ctx, time.Minute)
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 2, again.Attempts)
}

func TestInlineDispatcherRunsDetached(t *testing.T) {
	reg := jobs.NewRegistry()
	done := make(chan uuid.UUID, 1)
	reg.Register(jobs.KindDiagnosis, func(ctx context.Context, tk jobs.Task) error {
		// the request context is already cancelled, the task context is not
		if ctx.Err() != nil {
			return ctx.Err()
		}
		done <- tk.TargetID
		return nil
	})
	d := jobs.NewInlineDispatcher(reg, logger.Nop(), time.Minute)

	reqCtx, cancel := context.WithCancel(context.Background())
	want := task(jobs.KindDiagnosis)
	require.NoError(t, d.Dispatch(reqCtx, want))
	cancel()

	select {
	case got := <-done:
		assert.Equal(t, want.TargetID, got)
	case <-time.After(2 * time.Second):
		t.Fatal("inline task did not run")
	}

	assert.Error(t, d.Dispatch(context.Background(), task(jobs.KindExtraction)))
}

func TestSweeperRunsAllSweeps(t *testing.T) {
	s := jobs.NewSweeper(time.Minute, logger.Nop())
	var a, b int32
	s.Add("a", func(context.Context) (int64, error) {
		atomic.AddInt32(&a, 1)
		return 2, nil
	})
	s.Add("b", func(context.Context) (int64, error) {
		atomic.AddInt32(&b, 1)
		return 0, errors.New("x")
	})
	s.SweepOnce(context.Background())
	assert.Equal(t, int32(1), atomic.LoadInt32(&a))
	assert.Equal(t, int32(1), atomic.LoadInt32(&b))
}
