package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/career/pkg/apperr"
	"github.com/artem13815/career/pkg/talent"
)

// TalentRepository stores profiles; skills and certifications live in
// ordered join tables.
type TalentRepository struct {
	pool *pgxpool.Pool
}

var _ talent.Repository = (*TalentRepository)(nil)

func NewTalentRepository(pool *pgxpool.Pool) *TalentRepository {
	return &TalentRepository{pool: pool}
}

const profileColumns = `id, user_id, desired_job_titles, career_summary, needs_career_suggestion,
	is_public, scouting_enabled, talent_type, school_name, graduation_year,
	internship_interest, created_at, updated_at`

func (r *TalentRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (talent.Profile, error) {
	return r.load(ctx, `SELECT `+profileColumns+` FROM talent_profiles WHERE user_id = $1`, userID)
}

func (r *TalentRepository) GetByID(ctx context.Context, id uuid.UUID) (talent.Profile, error) {
	return r.load(ctx, `SELECT `+profileColumns+` FROM talent_profiles WHERE id = $1`, id)
}

func (r *TalentRepository) load(ctx context.Context, query string, arg uuid.UUID) (talent.Profile, error) {
	var p talent.Profile
	var talentType string
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&p.ID, &p.UserID, &p.DesiredJobTitles, &p.CareerSummary, &p.NeedsCareerSuggestion,
		&p.IsPublic, &p.ScoutingEnabled, &talentType, &p.SchoolName, &p.GraduationYear,
		&p.InternshipInterest, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return talent.Profile{}, notFound(err, "profile")
	}
	p.TalentType = talent.Type(talentType)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	if p.DesiredJobTitles == nil {
		p.DesiredJobTitles = []string{}
	}
	if p.Skills, err = listNames(ctx, r.pool, "talent_skills", p.ID); err != nil {
		return talent.Profile{}, err
	}
	if p.Certifications, err = listNames(ctx, r.pool, "talent_certifications", p.ID); err != nil {
		return talent.Profile{}, err
	}
	return p, nil
}

func listNames(ctx context.Context, q querier, table string, profileID uuid.UUID) ([]string, error) {
	rows, err := q.Query(ctx, fmt.Sprintf(`SELECT name FROM %s WHERE profile_id = $1 ORDER BY position`, table), profileID)
	if err != nil {
		return nil, err
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (r *TalentRepository) Save(ctx context.Context, p talent.Profile) (talent.Profile, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return talent.Profile{}, err
	}
	defer tx.Rollback(ctx)

	titles := p.DesiredJobTitles
	if titles == nil {
		titles = []string{}
	}
	_, err = tx.Exec(ctx, `
INSERT INTO talent_profiles (`+profileColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (id) DO UPDATE SET
	desired_job_titles = EXCLUDED.desired_job_titles,
	career_summary = EXCLUDED.career_summary,
	needs_career_suggestion = EXCLUDED.needs_career_suggestion,
	is_public = EXCLUDED.is_public,
	scouting_enabled = EXCLUDED.scouting_enabled,
	talent_type = EXCLUDED.talent_type,
	school_name = EXCLUDED.school_name,
	graduation_year = EXCLUDED.graduation_year,
	internship_interest = EXCLUDED.internship_interest,
	updated_at = EXCLUDED.updated_at
`, p.ID, p.UserID, titles, p.CareerSummary, p.NeedsCareerSuggestion,
		p.IsPublic, p.ScoutingEnabled, string(p.TalentType), p.SchoolName, p.GraduationYear,
		p.InternshipInterest, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return talent.Profile{}, apperr.Conflict("profile already exists")
		}
		return talent.Profile{}, err
	}
	if err := replaceNames(ctx, tx, "talent_skills", p.ID, p.Skills); err != nil {
		return talent.Profile{}, err
	}
	if err := replaceNames(ctx, tx, "talent_certifications", p.ID, p.Certifications); err != nil {
		return talent.Profile{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return talent.Profile{}, err
	}
	return r.GetByID(ctx, p.ID)
}

func replaceNames(ctx context.Context, q querier, table string, profileID uuid.UUID, names []string) error {
	if _, err := q.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE profile_id = $1`, table), profileID); err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}
	_, err := q.Exec(ctx, fmt.Sprintf(`
INSERT INTO %s (profile_id, position, name)
SELECT $1, t.ord, t.name FROM unnest($2::text[]) WITH ORDINALITY AS t(name, ord)`, table), profileID, names)
	return err
}
