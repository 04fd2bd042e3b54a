package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/career/pkg/apperr"
	"github.com/artem13815/career/pkg/diagnosis"
)

type Diagnoses struct {
	mu       sync.Mutex
	analyses map[uuid.UUID]diagnosis.Analysis
	steps    map[uuid.UUID]diagnosis.Step

	Now func() time.Time
}

var _ diagnosis.Repository = (*Diagnoses)(nil)

func NewDiagnoses() *Diagnoses {
	return &Diagnoses{
		analyses: map[uuid.UUID]diagnosis.Analysis{},
		steps:    map[uuid.UUID]diagnosis.Step{},
		Now:      time.Now,
	}
}

func (r *Diagnoses) now() time.Time { return r.Now().UTC() }

func (r *Diagnoses) CreateProcessing(_ context.Context, profileID uuid.UUID) (diagnosis.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	a := diagnosis.Analysis{
		ID:        uuid.New(),
		ProfileID: profileID,
		Status:    diagnosis.StatusProcessing,
		Steps:     []diagnosis.Step{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.analyses[a.ID] = a
	return a, nil
}

func (r *Diagnoses) withSteps(a diagnosis.Analysis) diagnosis.Analysis {
	a.Steps = []diagnosis.Step{}
	for _, st := range r.steps {
		if st.AnalysisID == a.ID {
			a.Steps = append(a.Steps, st)
		}
	}
	sort.Slice(a.Steps, func(i, j int) bool { return a.Steps[i].StepNumber < a.Steps[j].StepNumber })
	return a
}

func (r *Diagnoses) Get(_ context.Context, id uuid.UUID) (diagnosis.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.analyses[id]
	if !ok {
		return diagnosis.Analysis{}, apperr.NotFound("analysis")
	}
	return r.withSteps(a), nil
}

func (r *Diagnoses) GetForProfile(ctx context.Context, profileID, id uuid.UUID) (diagnosis.Analysis, error) {
	a, err := r.Get(ctx, id)
	if err != nil {
		return diagnosis.Analysis{}, err
	}
	if a.ProfileID != profileID {
		return diagnosis.Analysis{}, apperr.NotFound("analysis")
	}
	return a, nil
}

func (r *Diagnoses) ListByProfile(_ context.Context, profileID uuid.UUID, limit, offset int) ([]diagnosis.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []diagnosis.Analysis{}
	for _, a := range r.analyses {
		if a.ProfileID == profileID {
			out = append(out, r.withSteps(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return []diagnosis.Analysis{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *Diagnoses) Complete(_ context.Context, id uuid.UUID, res diagnosis.Result, steps []diagnosis.Step) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.analyses[id]
	if !ok {
		return apperr.NotFound("analysis")
	}
	if a.Status != diagnosis.StatusProcessing {
		return diagnosis.ErrNotProcessing
	}
	seen := map[int]struct{}{}
	for _, st := range steps {
		if _, dup := seen[st.StepNumber]; dup {
			return apperr.Conflict("duplicate step number")
		}
		seen[st.StepNumber] = struct{}{}
	}
	for _, st := range steps {
		st.AnalysisID = id
		r.steps[st.ID] = st
	}
	a.Summary = res.Summary
	a.Strengths = res.Strengths
	a.Advice = res.Advice
	a.SkillGapAnalysis = res.SkillGapAnalysis
	a.ExperienceMethods = res.ExperienceMethods
	a.Status = diagnosis.StatusCompleted
	a.Error = nil
	a.UpdatedAt = r.now()
	r.analyses[id] = a
	return nil
}

func (r *Diagnoses) Fail(_ context.Context, id uuid.UUID, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.analyses[id]
	if !ok {
		return false, apperr.NotFound("analysis")
	}
	if a.Status != diagnosis.StatusProcessing && a.Status != diagnosis.StatusPending {
		return false, nil
	}
	r.fail(a, reason)
	return true, nil
}

func (r *Diagnoses) fail(a diagnosis.Analysis, reason string) {
	a.Status = diagnosis.StatusFailed
	a.Error = &reason
	a.UpdatedAt = r.now()
	r.analyses[a.ID] = a
}

func (r *Diagnoses) FailStale(_ context.Context, before time.Time, reason string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.analyses {
		if a.Status == diagnosis.StatusProcessing && a.UpdatedAt.Before(before) {
			r.fail(a, reason)
			n++
		}
	}
	return n, nil
}

func (r *Diagnoses) GetStepForProfile(_ context.Context, profileID, stepID uuid.UUID) (diagnosis.Step, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.steps[stepID]
	if !ok || r.analyses[st.AnalysisID].ProfileID != profileID {
		return diagnosis.Step{}, apperr.NotFound("step")
	}
	return st, nil
}

func (r *Diagnoses) CacheStepContent(_ context.Context, stepID uuid.UUID, content string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.steps[stepID]
	if !ok {
		return "", apperr.NotFound("step")
	}
	if st.FullContent != nil && *st.FullContent != "" {
		return *st.FullContent, nil
	}
	st.FullContent = &content
	r.steps[stepID] = st
	return content, nil
}

func (r *Diagnoses) SetStepCompleted(_ context.Context, stepID uuid.UUID, completed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.steps[stepID]
	if !ok {
		return apperr.NotFound("step")
	}
	st.Completed = completed
	r.steps[stepID] = st
	return nil
}
