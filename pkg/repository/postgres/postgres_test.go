package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/career/pkg/apperr"
	"github.com/artem13815/career/pkg/diagnosis"
	"github.com/artem13815/career/pkg/interview"
	"github.com/artem13815/career/pkg/jobs"
	"github.com/artem13815/career/pkg/llm"
	"github.com/artem13815/career/pkg/repository/postgres"
	storage "github.com/artem13815/career/pkg/storage/postgres"
	"github.com/artem13815/career/pkg/talent"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := storage.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, storage.Migrate(ctx, pool))
	return pool
}

func newProfile(t *testing.T, pool *pgxpool.Pool) talent.Profile {
	t.Helper()
	repo := postgres.NewTalentRepository(pool)
	now := time.Now().UTC()
	p, err := repo.Save(context.Background(), talent.Profile{
		ID:               uuid.New(),
		UserID:           uuid.New(),
		DesiredJobTitles: []string{"Backend Engineer"},
		TalentType:       talent.TypeProfessional,
		Skills:           []string{"Go", "SQL"},
		Certifications:   []string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	require.NoError(t, err)
	return p
}

func TestTalentRepository_RoundTrip(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := postgres.NewTalentRepository(pool)
	p := newProfile(t, pool)

	p.Skills = []string{"Rust", "Go"}
	_, err := repo.Save(ctx, p)
	require.NoError(t, err)

	got, err := repo.GetByUserID(ctx, p.UserID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rust", "Go"}, got.Skills)
	assert.Equal(t, []string{}, got.Certifications)

	_, err = repo.GetByUserID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestInterviewRepository_SingleInProgress(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := postgres.NewInterviewRepository(pool)
	p := newProfile(t, pool)

	ids := make([]uuid.UUID, 8)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			iv, err := repo.FindOrCreateInProgress(ctx, p.ID)
			assert.NoError(t, err)
			ids[i] = iv.ID
		}(i)
	}
	wg.Wait()
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestInterviewRepository_MessagesAndExtraction(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := postgres.NewInterviewRepository(pool)
	p := newProfile(t, pool)

	iv, err := repo.FindOrCreateInProgress(ctx, p.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.AppendMessage(ctx, interview.Message{InterviewID: iv.ID, Role: llm.RoleUser, Content: "answer"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	msgs, err := repo.ListMessages(ctx, iv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 5)
	for i, m := range msgs {
		assert.Equal(t, int64(i+1), m.Seq)
	}

	ok, err := repo.BeginExtraction(ctx, iv.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.BeginExtraction(ctx, iv.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	level := 4
	skills := []interview.ExtractedSkill{{SkillName: "Go", Category: interview.CategoryTechnical, Level: &level}}
	require.NoError(t, repo.CompleteExtraction(ctx, iv.ID, skills))
	assert.ErrorIs(t, repo.CompleteExtraction(ctx, iv.ID, skills), interview.ErrNotProcessing)

	got, err := repo.ListSkills(ctx, iv.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Go", got[0].SkillName)

	latest, err := repo.LatestCompleted(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, iv.ID, latest.ID)
	assert.Equal(t, interview.ExtractionCompleted, latest.ExtractionStatus)
}

func TestInterviewRepository_CompleteKeepsArchived(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := postgres.NewInterviewRepository(pool)
	p := newProfile(t, pool)

	iv, err := repo.FindOrCreateInProgress(ctx, p.ID)
	require.NoError(t, err)
	ok, err := repo.BeginExtraction(ctx, iv.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, repo.Archive(ctx, iv.ID))

	require.NoError(t, repo.CompleteExtraction(ctx, iv.ID, nil))
	got, err := repo.Get(ctx, iv.ID)
	require.NoError(t, err)
	assert.Equal(t, interview.StatusArchived, got.Status)
	assert.Equal(t, interview.ExtractionCompleted, got.ExtractionStatus)

	_, err = repo.LatestCompleted(ctx, p.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDiagnosisRepository_CompleteOnce(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := postgres.NewDiagnosisRepository(pool)
	p := newProfile(t, pool)

	a, err := repo.CreateProcessing(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, diagnosis.StatusProcessing, a.Status)

	steps := []diagnosis.Step{
		{ID: uuid.New(), StepNumber: 2, Title: "Second", Details: diagnosis.Details{Description: "b"}},
		{ID: uuid.New(), StepNumber: 1, Title: "First", Details: diagnosis.Details{Description: "a", RecommendedActions: []string{"read"}}},
	}
	require.NoError(t, repo.Complete(ctx, a.ID, diagnosis.Result{Summary: "ok"}, steps))
	assert.ErrorIs(t, repo.Complete(ctx, a.ID, diagnosis.Result{}, steps), diagnosis.ErrNotProcessing)

	got, err := repo.GetForProfile(ctx, p.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, diagnosis.StatusCompleted, got.Status)
	require.Len(t, got.Steps, 2)
	assert.Equal(t, "First", got.Steps[0].Title)
	assert.Equal(t, []string{"read"}, got.Steps[0].Details.RecommendedActions)

	_, err = repo.GetForProfile(ctx, uuid.New(), a.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	stored, err := repo.CacheStepContent(ctx, got.Steps[0].ID, "guide one")
	require.NoError(t, err)
	assert.Equal(t, "guide one", stored)
	stored, err = repo.CacheStepContent(ctx, got.Steps[0].ID, "guide two")
	require.NoError(t, err)
	assert.Equal(t, "guide one", stored)
}

func TestJobRepository_ClaimOnce(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := postgres.NewJobRepository(pool)

	job, err := repo.Enqueue(ctx, jobs.Task{Kind: jobs.Kind("test." + uuid.NewString()), TargetID: uuid.New()})
	require.NoError(t, err)

	var claimed []uuid.UUID
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				j, err := repo.Claim(ctx, time.Minute)
				if !assert.NoError(t, err) || j == nil {
					return
				}
				mu.Lock()
				claimed = append(claimed, j.ID)
				mu.Unlock()
				assert.NoError(t, repo.Complete(ctx, j.ID))
			}
		}()
	}
	wg.Wait()

	count := 0
	for _, id := range claimed {
		if id == job.ID {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
