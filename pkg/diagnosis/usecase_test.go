package diagnosis_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/career/pkg/apperr"
	"github.com/artem13815/career/pkg/diagnosis"
	"github.com/artem13815/career/pkg/interview"
	"github.com/artem13815/career/pkg/jobs"
	"github.com/artem13815/career/pkg/llm"
	"github.com/artem13815/career/pkg/logger"
	"github.com/artem13815/career/pkg/repository/memory"
	"github.com/artem13815/career/pkg/talent"
)

const diagnosisReply = "```json\n" + `{
  "summary": "Solid backend engineer",
  "strengths": "Go, SQL",
  "advice": "Learn Kubernetes",
  "skillGapAnalysis": "No cloud experience",
  "experienceMethods": "Side projects",
  "roadmap": [
    {"stepNumber": 2, "title": "Deploy to Kubernetes", "details": {"description": "Run a service on k8s", "recommendedActions": ["Install kind"]}},
    {"stepNumber": 1, "title": "Containers", "details": {"description": "Learn Docker", "recommendedActions": [], "referenceResources": ["docs.docker.com"]}}
  ]
}` + "\n```"

type scriptedModel struct {
	mu      sync.Mutex
	prompts []string
	inputs  []string
	reply   func(system string) (string, error)
	calls   int32
}

func (m *scriptedModel) Complete(_ context.Context, system string, history []llm.Message) (string, error) {
	atomic.AddInt32(&m.calls, 1)
	m.mu.Lock()
	m.prompts = append(m.prompts, system)
	if len(history) > 0 {
		m.inputs = append(m.inputs, history[len(history)-1].Content)
	}
	m.mu.Unlock()
	return m.reply(system)
}

func replyWith(diag, detail string) func(string) (string, error) {
	return func(system string) (string, error) {
		if strings.Contains(system, "study guide") {
			return detail, nil
		}
		return diag, nil
	}
}

type dispatcher struct{ tasks []jobs.Task }

func (d *dispatcher) Dispatch(_ context.Context, t jobs.Task) error {
	d.tasks = append(d.tasks, t)
	return nil
}

type skillsFunc func(ctx context.Context, profileID uuid.UUID) ([]interview.ExtractedSkill, error)

func (f skillsFunc) LatestCompletedSkills(ctx context.Context, profileID uuid.UUID) ([]interview.ExtractedSkill, error) {
	return f(ctx, profileID)
}

type roadmapLog struct{ steps map[uuid.UUID][]diagnosis.Step }

func (l *roadmapLog) SaveRoadmap(_ context.Context, userID uuid.UUID, steps []diagnosis.Step) error {
	l.steps[userID] = steps
	return nil
}

type env struct {
	talents *memory.Talents
	repo    *memory.Diagnoses
	model   *scriptedModel
	disp    *dispatcher
	mirror  *roadmapLog
	svc     *diagnosis.Service
	userID  uuid.UUID
	profile talent.Profile
}

func newEnv(t *testing.T, p talent.Profile) *env {
	t.Helper()
	e := &env{
		talents: memory.NewTalents(),
		repo:    memory.NewDiagnoses(),
		model:   &scriptedModel{reply: replyWith(diagnosisReply, "## Containers\nLearn images and volumes.")},
		disp:    &dispatcher{},
		mirror:  &roadmapLog{steps: map[uuid.UUID][]diagnosis.Step{}},
		userID:  uuid.New(),
	}
	p.ID = uuid.New()
	p.UserID = e.userID
	saved, err := e.talents.Save(context.Background(), p)
	require.NoError(t, err)
	e.profile = saved
	skills := skillsFunc(func(context.Context, uuid.UUID) ([]interview.ExtractedSkill, error) {
		lvl := 4
		return []interview.ExtractedSkill{{SkillName: "Go", Category: interview.CategoryTechnical, Level: &lvl}}, nil
	})
	e.svc = diagnosis.NewService(e.repo, e.talents, skills, e.model, e.disp, e.mirror, logger.Nop(), 10*time.Minute)
	return e
}

func (e *env) run(t *testing.T) {
	t.Helper()
	for _, task := range e.disp.tasks {
		require.Equal(t, jobs.KindDiagnosis, task.Kind)
		require.NoError(t, e.svc.HandleTask(context.Background(), task))
	}
}

func gapProfile() talent.Profile {
	return talent.Profile{
		TalentType:       talent.TypeProfessional,
		DesiredJobTitles: []string{"Platform Engineer"},
		Skills:           []string{"Go", "PostgreSQL"},
	}
}

func TestGapAnalysisDiagnosis(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, gapProfile())
	assert.Equal(t, diagnosis.StrategyGapAnalysis, diagnosis.ChooseStrategy(e.profile))

	a, err := e.svc.Start(ctx, e.userID)
	require.NoError(t, err)
	assert.Equal(t, diagnosis.StatusProcessing, a.Status)
	require.Len(t, e.disp.tasks, 1)
	assert.Equal(t, a.ID, e.disp.tasks[0].TargetID)

	e.run(t)

	got, err := e.svc.Get(ctx, e.userID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, diagnosis.StatusCompleted, got.Status)
	assert.Equal(t, "Solid backend engineer", got.Summary)
	require.Len(t, got.Steps, 2)
	assert.Equal(t, 1, got.Steps[0].StepNumber)
	assert.Equal(t, "Containers", got.Steps[0].Title)
	assert.Equal(t, []string{}, got.Steps[0].Details.RecommendedActions)
	assert.Equal(t, []string{}, got.Steps[1].Details.ReferenceResources)

	require.Len(t, e.model.prompts, 1)
	assert.Contains(t, e.model.prompts[0], "desiredJobTitles")
	assert.NotContains(t, e.model.prompts[0], "three viable career paths")
	assert.Contains(t, e.model.inputs[0], "Platform Engineer")
	assert.Contains(t, e.model.inputs[0], `"interviewSkills":[{"skillName":"Go"`)

	assert.Len(t, e.mirror.steps[e.userID], 2)
}

func TestCareerSuggestionStrategy(t *testing.T) {
	p := gapProfile()
	p.NeedsCareerSuggestion = true
	e := newEnv(t, p)
	assert.Equal(t, diagnosis.StrategyCareerSuggestion, diagnosis.ChooseStrategy(e.profile))

	_, err := e.svc.Start(context.Background(), e.userID)
	require.NoError(t, err)
	e.run(t)
	require.Len(t, e.model.prompts, 1)
	assert.Contains(t, e.model.prompts[0], "three viable career paths")
}

func TestDiagnosisFailures(t *testing.T) {
	cases := map[string]func(string) (string, error){
		"not json":       replyWith("I cannot answer that", ""),
		"empty roadmap":  replyWith(`{"summary":"x","roadmap":[]}`, ""),
		"untitled steps": replyWith(`{"summary":"x","roadmap":[{"stepNumber":1,"title":"  "}]}`, ""),
		"upstream": func(string) (string, error) {
			return "", apperr.TransientUpstream(errors.New("503"))
		},
		"panic": func(string) (string, error) { panic("boom") },
	}
	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			e := newEnv(t, gapProfile())
			e.model.reply = reply
			a, err := e.svc.Start(ctx, e.userID)
			require.NoError(t, err)
			e.run(t)

			got, err := e.svc.Get(ctx, e.userID, a.ID)
			require.NoError(t, err)
			assert.Equal(t, diagnosis.StatusFailed, got.Status)
			require.NotNil(t, got.Error)
			assert.Empty(t, got.Steps)
		})
	}
}

func TestRoadmapRenumbering(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, gapProfile())
	e.model.reply = replyWith(`{"summary":"s","roadmap":[
		{"stepNumber":3,"title":"A"},{"stepNumber":3,"title":"B"},{"title":"C"}]}`, "")
	a, err := e.svc.Start(ctx, e.userID)
	require.NoError(t, err)
	e.run(t)

	got, err := e.svc.Get(ctx, e.userID, a.ID)
	require.NoError(t, err)
	require.Len(t, got.Steps, 3)
	for i, title := range []string{"A", "B", "C"} {
		assert.Equal(t, i+1, got.Steps[i].StepNumber)
		assert.Equal(t, title, got.Steps[i].Title)
	}
}

func TestStartWithoutProfile(t *testing.T) {
	e := newEnv(t, gapProfile())
	_, err := e.svc.Start(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Empty(t, e.disp.tasks)
}

func TestExecuteIsSingleWriter(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, gapProfile())
	a, err := e.svc.Start(ctx, e.userID)
	require.NoError(t, err)
	e.run(t)
	e.run(t)

	got, err := e.svc.Get(ctx, e.userID, a.ID)
	require.NoError(t, err)
	assert.Len(t, got.Steps, 2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&e.model.calls))
}

func TestStepDetailIsCached(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, gapProfile())
	a, err := e.svc.Start(ctx, e.userID)
	require.NoError(t, err)
	e.run(t)
	got, err := e.svc.Get(ctx, e.userID, a.ID)
	require.NoError(t, err)
	stepID := got.Steps[0].ID

	before := atomic.LoadInt32(&e.model.calls)
	first, err := e.svc.StepDetail(ctx, e.userID, stepID)
	require.NoError(t, err)
	second, err := e.svc.StepDetail(ctx, e.userID, stepID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, "## Containers")
	assert.Equal(t, before+1, atomic.LoadInt32(&e.model.calls))
	assert.Contains(t, e.model.inputs[len(e.model.inputs)-1], "Learn Docker")
}

func TestStepDetailOfAnotherUserIsNotFound(t *testing.T) {
	ctx := context.Background()
	owner := newEnv(t, gapProfile())
	a, err := owner.svc.Start(ctx, owner.userID)
	require.NoError(t, err)
	owner.run(t)
	got, err := owner.svc.Get(ctx, owner.userID, a.ID)
	require.NoError(t, err)
	stepID := got.Steps[0].ID

	intruder := uuid.New()
	_, err = owner.talents.Save(ctx, talent.Profile{ID: uuid.New(), UserID: intruder, TalentType: talent.TypeProfessional})
	require.NoError(t, err)

	calls := atomic.LoadInt32(&owner.model.calls)
	_, err = owner.svc.StepDetail(ctx, intruder, stepID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = owner.svc.StepDetail(ctx, uuid.New(), stepID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = owner.svc.Get(ctx, intruder, a.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = owner.svc.SetStepCompleted(ctx, intruder, stepID, true)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, calls, atomic.LoadInt32(&owner.model.calls), "no AI call for foreign steps")
}

func TestSetStepCompletedAndList(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, gapProfile())
	a, err := e.svc.Start(ctx, e.userID)
	require.NoError(t, err)
	e.run(t)
	got, err := e.svc.Get(ctx, e.userID, a.ID)
	require.NoError(t, err)

	st, err := e.svc.SetStepCompleted(ctx, e.userID, got.Steps[1].ID, true)
	require.NoError(t, err)
	assert.True(t, st.Completed)

	list, err := e.svc.List(ctx, e.userID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Steps[1].Completed)

	empty, err := e.svc.List(ctx, uuid.New(), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStaleDiagnosis(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, gapProfile())
	e.repo.Now = func() time.Time { return time.Now().Add(-time.Hour) }
	a, err := e.svc.Start(ctx, e.userID)
	require.NoError(t, err)
	b, err := e.svc.Start(ctx, e.userID)
	require.NoError(t, err)
	e.repo.Now = time.Now

	got, err := e.svc.Get(ctx, e.userID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, diagnosis.StatusFailed, got.Status)

	n, err := e.svc.SweepStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "only the analysis not already failed on read")

	e.run(t)
	got, err = e.svc.Get(ctx, e.userID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, diagnosis.StatusFailed, got.Status)
}
