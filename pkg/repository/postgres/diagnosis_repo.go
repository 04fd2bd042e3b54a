package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/career/pkg/apperr"
	"github.com/artem13815/career/pkg/diagnosis"
)

type DiagnosisRepository struct {
	pool *pgxpool.Pool
}

var _ diagnosis.Repository = (*DiagnosisRepository)(nil)

func NewDiagnosisRepository(pool *pgxpool.Pool) *DiagnosisRepository {
	return &DiagnosisRepository{pool: pool}
}

const analysisColumns = `id, profile_id, diagnosis_status, summary, strengths, advice,
		skill_gap_analysis, experience_methods, error, created_at, updated_at`

func scanAnalysis(row pgx.Row) (diagnosis.Analysis, error) {
	var a diagnosis.Analysis
	var status string
	err := row.Scan(&a.ID, &a.ProfileID, &status, &a.Summary, &a.Strengths, &a.Advice,
		&a.SkillGapAnalysis, &a.ExperienceMethods, &a.Error, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return diagnosis.Analysis{}, err
	}
	a.Status = diagnosis.Status(status)
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	a.Steps = []diagnosis.Step{}
	return a, nil
}

func (r *DiagnosisRepository) CreateProcessing(ctx context.Context, profileID uuid.UUID) (diagnosis.Analysis, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO analysis_results (id, profile_id, diagnosis_status)
		VALUES ($1, $2, 'PROCESSING')
		RETURNING `+analysisColumns, uuid.New(), profileID)
	return scanAnalysis(row)
}

func (r *DiagnosisRepository) Get(ctx context.Context, id uuid.UUID) (diagnosis.Analysis, error) {
	a, err := scanAnalysis(r.pool.QueryRow(ctx, `SELECT `+analysisColumns+` FROM analysis_results WHERE id = $1`, id))
	if err != nil {
		return diagnosis.Analysis{}, notFound(err, "analysis")
	}
	return r.attachSteps(ctx, a)
}

func (r *DiagnosisRepository) GetForProfile(ctx context.Context, profileID, id uuid.UUID) (diagnosis.Analysis, error) {
	a, err := scanAnalysis(r.pool.QueryRow(ctx, `
		SELECT `+analysisColumns+` FROM analysis_results WHERE id = $1 AND profile_id = $2
	`, id, profileID))
	if err != nil {
		return diagnosis.Analysis{}, notFound(err, "analysis")
	}
	return r.attachSteps(ctx, a)
}

func (r *DiagnosisRepository) ListByProfile(ctx context.Context, profileID uuid.UUID, limit, offset int) ([]diagnosis.Analysis, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+analysisColumns+` FROM analysis_results
		WHERE profile_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, profileID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := []diagnosis.Analysis{}
	index := map[uuid.UUID]int{}
	ids := []uuid.UUID{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[a.ID] = len(out)
		ids = append(ids, a.ID)
		out = append(out, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}
	steps, err := r.loadSteps(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, st := range steps {
		i := index[st.AnalysisID]
		out[i].Steps = append(out[i].Steps, st)
	}
	return out, nil
}

func (r *DiagnosisRepository) attachSteps(ctx context.Context, a diagnosis.Analysis) (diagnosis.Analysis, error) {
	steps, err := r.loadSteps(ctx, []uuid.UUID{a.ID})
	if err != nil {
		return diagnosis.Analysis{}, err
	}
	a.Steps = steps
	return a, nil
}

const stepColumns = `s.id, s.analysis_id, s.step_number, s.title, s.details, s.full_content, s.completed`

func scanStep(row pgx.Row) (diagnosis.Step, error) {
	var st diagnosis.Step
	var details []byte
	if err := row.Scan(&st.ID, &st.AnalysisID, &st.StepNumber, &st.Title, &details, &st.FullContent, &st.Completed); err != nil {
		return diagnosis.Step{}, err
	}
	if err := json.Unmarshal(details, &st.Details); err != nil {
		return diagnosis.Step{}, err
	}
	if st.Details.RecommendedActions == nil {
		st.Details.RecommendedActions = []string{}
	}
	if st.Details.ReferenceResources == nil {
		st.Details.ReferenceResources = []string{}
	}
	return st, nil
}

func (r *DiagnosisRepository) loadSteps(ctx context.Context, analysisIDs []uuid.UUID) ([]diagnosis.Step, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+stepColumns+` FROM learning_roadmap_steps s
		WHERE s.analysis_id = ANY($1)
		ORDER BY s.analysis_id, s.step_number
	`, analysisIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []diagnosis.Step{}
	for rows.Next() {
		st, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// Complete inserts the roadmap and flips the status in one transaction; the
// status guard makes a second execution roll back with ErrNotProcessing.
func (r *DiagnosisRepository) Complete(ctx context.Context, id uuid.UUID, res diagnosis.Result, steps []diagnosis.Step) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE analysis_results
		SET diagnosis_status = 'COMPLETED', summary = $2, strengths = $3, advice = $4,
			skill_gap_analysis = $5, experience_methods = $6, error = NULL, updated_at = now()
		WHERE id = $1 AND diagnosis_status = 'PROCESSING'
	`, id, res.Summary, res.Strengths, res.Advice, res.SkillGapAnalysis, res.ExperienceMethods)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM analysis_results WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return apperr.NotFound("analysis")
		}
		return diagnosis.ErrNotProcessing
	}

	for _, st := range steps {
		if st.ID == uuid.Nil {
			st.ID = uuid.New()
		}
		details, err := json.Marshal(st.Details)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO learning_roadmap_steps (id, analysis_id, step_number, title, details, full_content, completed)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, st.ID, id, st.StepNumber, st.Title, details, st.FullContent, st.Completed)
		if err != nil {
			if isUniqueViolation(err) {
				return apperr.Conflict("duplicate step number")
			}
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *DiagnosisRepository) Fail(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE analysis_results
		SET diagnosis_status = 'FAILED', error = $2, updated_at = now()
		WHERE id = $1 AND diagnosis_status IN ('PENDING', 'PROCESSING')
	`, id, reason)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *DiagnosisRepository) FailStale(ctx context.Context, before time.Time, reason string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE analysis_results
		SET diagnosis_status = 'FAILED', error = $2, updated_at = now()
		WHERE diagnosis_status = 'PROCESSING' AND updated_at < $1
	`, before, reason)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *DiagnosisRepository) GetStepForProfile(ctx context.Context, profileID, stepID uuid.UUID) (diagnosis.Step, error) {
	st, err := scanStep(r.pool.QueryRow(ctx, `
		SELECT `+stepColumns+`
		FROM learning_roadmap_steps s
		JOIN analysis_results a ON a.id = s.analysis_id
		WHERE s.id = $1 AND a.profile_id = $2
	`, stepID, profileID))
	if err != nil {
		return diagnosis.Step{}, notFound(err, "step")
	}
	return st, nil
}

// CacheStepContent keeps the first stored content when two requests race.
func (r *DiagnosisRepository) CacheStepContent(ctx context.Context, stepID uuid.UUID, content string) (string, error) {
	var stored string
	err := r.pool.QueryRow(ctx, `
		UPDATE learning_roadmap_steps
		SET full_content = $2
		WHERE id = $1 AND (full_content IS NULL OR full_content = '')
		RETURNING full_content
	`, stepID, content).Scan(&stored)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}
	err = r.pool.QueryRow(ctx, `SELECT COALESCE(full_content, '') FROM learning_roadmap_steps WHERE id = $1`, stepID).Scan(&stored)
	if err != nil {
		return "", notFound(err, "step")
	}
	return stored, nil
}

func (r *DiagnosisRepository) SetStepCompleted(ctx context.Context, stepID uuid.UUID, completed bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE learning_roadmap_steps SET completed = $2 WHERE id = $1`, stepID, completed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("step")
	}
	return nil
}
