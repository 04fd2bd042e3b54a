package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/career/pkg/apperr"
	"github.com/artem13815/career/pkg/interview"
	"github.com/artem13815/career/pkg/llm"
)

type InterviewRepository struct {
	pool *pgxpool.Pool
}

var _ interview.Repository = (*InterviewRepository)(nil)

func NewInterviewRepository(pool *pgxpool.Pool) *InterviewRepository {
	return &InterviewRepository{pool: pool}
}

const interviewColumns = `id, profile_id, status, extraction_status, extraction_error, created_at, updated_at`

func scanInterview(row pgx.Row) (interview.Interview, error) {
	var iv interview.Interview
	var status, extraction string
	if err := row.Scan(&iv.ID, &iv.ProfileID, &status, &extraction, &iv.ExtractionError, &iv.CreatedAt, &iv.UpdatedAt); err != nil {
		return interview.Interview{}, notFound(err, "interview")
	}
	iv.Status = interview.Status(status)
	iv.ExtractionStatus = interview.ExtractionStatus(extraction)
	iv.CreatedAt = iv.CreatedAt.UTC()
	iv.UpdatedAt = iv.UpdatedAt.UTC()
	return iv, nil
}

// FindOrCreateInProgress relies on the partial unique index
// skill_interviews_one_in_progress: concurrent callers insert at most one row
// and all of them read it back.
func (r *InterviewRepository) FindOrCreateInProgress(ctx context.Context, profileID uuid.UUID) (interview.Interview, error) {
	_, err := r.pool.Exec(ctx, `
INSERT INTO skill_interviews (id, profile_id, status, extraction_status)
VALUES ($1, $2, 'IN_PROGRESS', 'NONE')
ON CONFLICT (profile_id) WHERE status = 'IN_PROGRESS' DO NOTHING
`, uuid.New(), profileID)
	if err != nil {
		return interview.Interview{}, err
	}
	return r.GetInProgress(ctx, profileID)
}

func (r *InterviewRepository) GetInProgress(ctx context.Context, profileID uuid.UUID) (interview.Interview, error) {
	return scanInterview(r.pool.QueryRow(ctx, `SELECT `+interviewColumns+`
FROM skill_interviews WHERE profile_id = $1 AND status = 'IN_PROGRESS'`, profileID))
}

func (r *InterviewRepository) Get(ctx context.Context, id uuid.UUID) (interview.Interview, error) {
	return scanInterview(r.pool.QueryRow(ctx, `SELECT `+interviewColumns+` FROM skill_interviews WHERE id = $1`, id))
}

func (r *InterviewRepository) GetForProfile(ctx context.Context, profileID, id uuid.UUID) (interview.Interview, error) {
	return scanInterview(r.pool.QueryRow(ctx, `SELECT `+interviewColumns+`
FROM skill_interviews WHERE id = $1 AND profile_id = $2`, id, profileID))
}

func (r *InterviewRepository) LatestCompleted(ctx context.Context, profileID uuid.UUID) (interview.Interview, error) {
	return scanInterview(r.pool.QueryRow(ctx, `SELECT `+interviewColumns+`
FROM skill_interviews WHERE profile_id = $1 AND status = 'COMPLETED'
ORDER BY updated_at DESC LIMIT 1`, profileID))
}

func (r *InterviewRepository) Archive(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE skill_interviews SET status = 'ARCHIVED', updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("interview")
	}
	return nil
}

// AppendMessage locks the interview row so sequence numbers are assigned
// one writer at a time.
func (r *InterviewRepository) AppendMessage(ctx context.Context, m interview.Message) (interview.Message, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return interview.Message{}, err
	}
	defer tx.Rollback(ctx)

	var locked uuid.UUID
	if err := tx.QueryRow(ctx, `SELECT id FROM skill_interviews WHERE id = $1 FOR UPDATE`, m.InterviewID).Scan(&locked); err != nil {
		return interview.Message{}, notFound(err, "interview")
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	err = tx.QueryRow(ctx, `
INSERT INTO skill_interview_messages (id, interview_id, seq, role, content)
SELECT $1, $2, COALESCE(MAX(seq), 0) + 1, $3, $4 FROM skill_interview_messages WHERE interview_id = $2
RETURNING seq, created_at
`, m.ID, m.InterviewID, string(m.Role), m.Content).Scan(&m.Seq, &m.CreatedAt)
	if err != nil {
		return interview.Message{}, err
	}
	if _, err := tx.Exec(ctx, `UPDATE skill_interviews SET updated_at = now() WHERE id = $1`, m.InterviewID); err != nil {
		return interview.Message{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return interview.Message{}, err
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return m, nil
}

func (r *InterviewRepository) ListMessages(ctx context.Context, interviewID uuid.UUID) ([]interview.Message, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, interview_id, seq, role, content, created_at
FROM skill_interview_messages WHERE interview_id = $1 ORDER BY seq
`, interviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []interview.Message{}
	for rows.Next() {
		var m interview.Message
		var role string
		if err := rows.Scan(&m.ID, &m.InterviewID, &m.Seq, &role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Role = llm.Role(role)
		m.CreatedAt = m.CreatedAt.UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *InterviewRepository) BeginExtraction(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
UPDATE skill_interviews
SET extraction_status = 'PROCESSING', extraction_error = NULL, updated_at = now()
WHERE id = $1 AND extraction_status <> 'PROCESSING'
`, id)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}
	if _, err := r.Get(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (r *InterviewRepository) CompleteExtraction(ctx context.Context, id uuid.UUID, skills []interview.ExtractedSkill) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
UPDATE skill_interviews
SET status = CASE WHEN status = 'ARCHIVED' THEN status ELSE 'COMPLETED' END,
    extraction_status = 'COMPLETED', extraction_error = NULL, updated_at = now()
WHERE id = $1 AND extraction_status = 'PROCESSING'
`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return interview.ErrNotProcessing
	}
	if err := replaceSkills(ctx, tx, id, skills); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *InterviewRepository) FailExtraction(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
UPDATE skill_interviews
SET extraction_status = 'FAILED', extraction_error = $2, updated_at = now()
WHERE id = $1 AND extraction_status = 'PROCESSING'
`, id, reason)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *InterviewRepository) FailStaleExtractions(ctx context.Context, before time.Time, reason string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
UPDATE skill_interviews
SET extraction_status = 'FAILED', extraction_error = $2, updated_at = now()
WHERE extraction_status = 'PROCESSING' AND updated_at < $1
`, before, reason)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *InterviewRepository) ListSkills(ctx context.Context, interviewID uuid.UUID) ([]interview.ExtractedSkill, error) {
	return listSkills(ctx, r.pool, interviewID)
}

func listSkills(ctx context.Context, q querier, interviewID uuid.UUID) ([]interview.ExtractedSkill, error) {
	rows, err := q.Query(ctx, `
SELECT id, interview_id, skill_name, category, level
FROM ai_extracted_skills WHERE interview_id = $1 ORDER BY skill_name
`, interviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []interview.ExtractedSkill{}
	for rows.Next() {
		var s interview.ExtractedSkill
		var category string
		if err := rows.Scan(&s.ID, &s.InterviewID, &s.SkillName, &category, &s.Level); err != nil {
			return nil, err
		}
		s.Category = interview.Category(category)
		out = append(out, s)
	}
	return out, rows.Err()
}

// replaceSkills is delete-then-insert, so repeated runs never duplicate rows.
func replaceSkills(ctx context.Context, q querier, interviewID uuid.UUID, skills []interview.ExtractedSkill) error {
	if _, err := q.Exec(ctx, `DELETE FROM ai_extracted_skills WHERE interview_id = $1`, interviewID); err != nil {
		return err
	}
	for _, s := range skills {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		if _, err := q.Exec(ctx, `
INSERT INTO ai_extracted_skills (id, interview_id, skill_name, category, level)
VALUES ($1, $2, $3, $4, $5)
`, s.ID, interviewID, s.SkillName, string(s.Category), s.Level); err != nil {
			return err
		}
	}
	return nil
}

func (r *InterviewRepository) ReplaceSkills(ctx context.Context, interviewID uuid.UUID, skills []interview.ExtractedSkill) ([]interview.ExtractedSkill, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var locked uuid.UUID
	if err := tx.QueryRow(ctx, `SELECT id FROM skill_interviews WHERE id = $1 FOR UPDATE`, interviewID).Scan(&locked); err != nil {
		return nil, notFound(err, "interview")
	}
	if err := replaceSkills(ctx, tx, interviewID, skills); err != nil {
		return nil, err
	}
	out, err := listSkills(ctx, tx, interviewID)
	if err != nil {
		return nil, err
	}
	return out, tx.Commit(ctx)
}

func (r *InterviewRepository) DeleteSkill(ctx context.Context, interviewID, skillID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ai_extracted_skills WHERE id = $1 AND interview_id = $2`, skillID, interviewID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("skill")
	}
	return nil
}
