package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/career/pkg/apperr"
	"github.com/artem13815/career/pkg/jobs"
)

// JobRepository is the durable queue behind jobs.Worker.
type JobRepository struct {
	pool *pgxpool.Pool
}

var _ jobs.Queue = (*JobRepository)(nil)

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

const jobColumns = `id, kind, target_id, payload, status, attempts, last_error, run_after, heartbeat_at, created_at, updated_at`

func scanJob(row pgx.Row) (jobs.Job, error) {
	var j jobs.Job
	var kind, status string
	var payload []byte
	err := row.Scan(&j.ID, &kind, &j.Task.TargetID, &payload, &status, &j.Attempts, &j.LastError,
		&j.RunAfter, &j.HeartbeatAt, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return jobs.Job{}, err
	}
	j.Task.Kind = jobs.Kind(kind)
	j.Task.Payload = payload
	j.Status = jobs.Status(status)
	return j, nil
}

func (r *JobRepository) Enqueue(ctx context.Context, t jobs.Task) (jobs.Job, error) {
	var payload []byte
	if len(t.Payload) > 0 {
		payload = t.Payload
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO jobs (id, kind, target_id, payload, status)
		VALUES ($1, $2, $3, $4, 'queued')
		RETURNING `+jobColumns, uuid.New(), string(t.Kind), t.TargetID, payload)
	return scanJob(row)
}

// Claim uses SKIP LOCKED so concurrent workers never pick the same row.
func (r *JobRepository) Claim(ctx context.Context, visibility time.Duration) (*jobs.Job, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE jobs
		SET status = 'running', attempts = attempts + 1, heartbeat_at = now(), updated_at = now()
		WHERE id = (
			SELECT id FROM jobs
			WHERE (status = 'queued' AND run_after <= now())
			   OR (status = 'running' AND heartbeat_at < now() - make_interval(secs => $1))
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+jobColumns, visibility.Seconds())
	j, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &j, nil
}

func (r *JobRepository) Heartbeat(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `UPDATE jobs SET heartbeat_at = now() WHERE id = $1 AND status = 'running'`, id)
}

func (r *JobRepository) Complete(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `
		UPDATE jobs SET status = 'done', heartbeat_at = NULL, updated_at = now()
		WHERE id = $1
	`, id)
}

func (r *JobRepository) Fail(ctx context.Context, id uuid.UUID, reason string, retryAt *time.Time) error {
	if retryAt == nil {
		return r.exec(ctx, `
			UPDATE jobs SET status = 'failed', last_error = $2, heartbeat_at = NULL, updated_at = now()
			WHERE id = $1
		`, id, reason)
	}
	return r.exec(ctx, `
		UPDATE jobs SET status = 'queued', last_error = $2, run_after = $3, heartbeat_at = NULL, updated_at = now()
		WHERE id = $1
	`, id, reason, *retryAt)
}

func (r *JobRepository) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("job")
	}
	return nil
}
