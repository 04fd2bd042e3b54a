package legacy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/artem13815/career/pkg/apperr"
	"github.com/artem13815/career/pkg/diagnosis"
	"github.com/artem13815/career/pkg/docstore"
	"github.com/artem13815/career/pkg/jobs"
	"github.com/artem13815/career/pkg/llm"
	"github.com/artem13815/career/pkg/logger"
)

const stepDetailPrompt = `You are a mentor writing a study guide.
Expand the learning plan stage below into a practical explanation in Markdown: what to learn, in which order, exercises, and how to tell the stage is done.
Reply with Markdown only.`

// pendingTTL bounds how long a queued generation blocks new dispatches; past
// it a poll queues the stage again.
const pendingTTL = 10 * time.Minute

type PlanStep struct {
	Stage              int      `json:"stage"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	RecommendedActions []string `json:"recommendedActions"`
	ReferenceResources []string `json:"referenceResources"`
}

type Plan struct {
	Steps     []PlanStep `json:"steps"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// StepDetail is either cached markdown or a pending generation.
type StepDetail struct {
	Content string
	Pending bool
}

type stepDetailPayload struct {
	UserID uuid.UUID `json:"userId"`
	Stage  int       `json:"stage"`
}

// Plans keeps learning-plans documents and their per-stage explanations.
type Plans struct {
	store      docstore.Store
	provider   string
	model      llm.ChatModel
	dispatcher jobs.Dispatcher
	log        *logger.Logger
	now        func() time.Time
	inflight   singleflight.Group
}

func NewPlans(store docstore.Store, provider string, model llm.ChatModel, dispatcher jobs.Dispatcher, log *logger.Logger) *Plans {
	return &Plans{
		store:      store,
		provider:   provider,
		model:      model,
		dispatcher: dispatcher,
		log:        log.With("component", "LegacyPlans"),
		now:        time.Now,
	}
}

var _ diagnosis.RoadmapMirror = (*Plans)(nil)

// SaveRoadmap replaces the user's plan and drops explanations cached for the
// previous one.
func (p *Plans) SaveRoadmap(ctx context.Context, userID uuid.UUID, steps []diagnosis.Step) error {
	old, err := p.Get(ctx, userID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	plan := Plan{Steps: make([]PlanStep, 0, len(steps)), UpdatedAt: p.now().UTC()}
	for _, st := range steps {
		plan.Steps = append(plan.Steps, PlanStep{
			Stage:              st.StepNumber,
			Title:              st.Title,
			Description:        st.Details.Description,
			RecommendedActions: st.Details.RecommendedActions,
			ReferenceResources: st.Details.ReferenceResources,
		})
	}
	if err := docstore.PutJSON(ctx, p.store, docstore.ContainerPlans, docstore.Key(p.provider, userID), plan); err != nil {
		return err
	}
	for _, st := range old.Steps {
		if err := p.store.Delete(ctx, docstore.ContainerPlanDetails, docstore.DetailName(userID, st.Stage)); err != nil {
			p.log.Warn("Failed to drop cached step detail", "stage", st.Stage, "error", err)
		}
	}
	return nil
}

func (p *Plans) Get(ctx context.Context, userID uuid.UUID) (Plan, error) {
	var plan Plan
	err := docstore.GetJSON(ctx, p.store, docstore.ContainerPlans, docstore.Key(p.provider, userID), &plan)
	if errors.Is(err, docstore.ErrNotFound) {
		return Plan{}, apperr.NotFound("learning plan")
	}
	if err != nil {
		return Plan{}, err
	}
	return plan, nil
}

func (p *Plans) step(ctx context.Context, userID uuid.UUID, stage int) (PlanStep, error) {
	plan, err := p.Get(ctx, userID)
	if err != nil {
		return PlanStep{}, err
	}
	for _, st := range plan.Steps {
		if st.Stage == stage {
			return st, nil
		}
	}
	return PlanStep{}, apperr.NotFound("learning plan stage")
}

// StepDetail returns the cached explanation of a stage of the caller's own
// plan, or schedules its generation and reports it pending. Only the poll
// that takes the stage's pending marker dispatches.
func (p *Plans) StepDetail(ctx context.Context, userID uuid.UUID, stage int) (StepDetail, error) {
	if _, err := p.step(ctx, userID, stage); err != nil {
		return StepDetail{}, err
	}
	text, err := docstore.GetText(ctx, p.store, docstore.ContainerPlanDetails, docstore.DetailName(userID, stage))
	if err == nil {
		return StepDetail{Content: text}, nil
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return StepDetail{}, err
	}
	pending := docstore.PendingName(userID, stage)
	leased, err := p.store.Lease(ctx, docstore.ContainerPlanDetails, pending, pendingTTL)
	if err != nil {
		return StepDetail{}, err
	}
	if !leased {
		return StepDetail{Pending: true}, nil
	}
	payload, err := json.Marshal(stepDetailPayload{UserID: userID, Stage: stage})
	if err != nil {
		return StepDetail{}, err
	}
	if err := p.dispatcher.Dispatch(ctx, jobs.Task{Kind: jobs.KindLegacyStepDetail, TargetID: userID, Payload: payload}); err != nil {
		p.release(ctx, userID, stage)
		return StepDetail{}, fmt.Errorf("dispatch step detail: %w", err)
	}
	return StepDetail{Pending: true}, nil
}

func (p *Plans) release(ctx context.Context, userID uuid.UUID, stage int) {
	if err := p.store.Delete(ctx, docstore.ContainerPlanDetails, docstore.PendingName(userID, stage)); err != nil {
		p.log.Warn("Failed to release pending step detail", "stage", stage, "error", err)
	}
}

// HandleTask generates and caches one stage explanation. Already cached
// stages are left alone.
func (p *Plans) HandleTask(ctx context.Context, t jobs.Task) error {
	var in stepDetailPayload
	if err := json.Unmarshal(t.Payload, &in); err != nil {
		p.log.Error("Bad step detail payload", "error", err)
		return nil
	}
	return p.GenerateStepDetail(ctx, in.UserID, in.Stage)
}

// GenerateStepDetail asks the model once per stage. Concurrent runs for the
// same stage share one call; the pending marker is dropped once the result
// is cached.
func (p *Plans) GenerateStepDetail(ctx context.Context, userID uuid.UUID, stage int) error {
	name := docstore.DetailName(userID, stage)
	_, err, _ := p.inflight.Do(name, func() (any, error) {
		return nil, p.generateStepDetail(ctx, userID, stage, name)
	})
	return err
}

func (p *Plans) generateStepDetail(ctx context.Context, userID uuid.UUID, stage int, name string) error {
	log := p.log.With("user_id", userID, "stage", stage)
	st, err := p.step(ctx, userID, stage)
	if errors.Is(err, apperr.ErrNotFound) {
		log.Warn("Plan stage vanished")
		p.release(ctx, userID, stage)
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := p.store.Get(ctx, docstore.ContainerPlanDetails, name); err == nil {
		p.release(ctx, userID, stage)
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Stage %d: %s\n%s\n", st.Stage, st.Title, st.Description)
	if len(st.RecommendedActions) > 0 {
		fmt.Fprintf(&b, "Recommended actions: %s\n", strings.Join(st.RecommendedActions, "; "))
	}
	raw, err := llm.Ask(ctx, p.model, stepDetailPrompt, b.String())
	if err != nil {
		return err
	}
	content := strings.TrimSpace(raw)
	if content == "" {
		return apperr.UpstreamFormat("AI returned empty step detail", nil)
	}
	if err := docstore.PutText(ctx, p.store, docstore.ContainerPlanDetails, name, content); err != nil {
		return err
	}
	p.release(ctx, userID, stage)
	log.Info("Step detail cached")
	return nil
}
