package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/career/pkg/apperr"
	"github.com/artem13815/career/pkg/interview"
)

type Interviews struct {
	mu       sync.Mutex
	items    map[uuid.UUID]interview.Interview
	messages map[uuid.UUID][]interview.Message
	skills   map[uuid.UUID][]interview.ExtractedSkill

	// Now stamps CreatedAt/UpdatedAt; tests move it to simulate stale rows.
	Now func() time.Time
}

var _ interview.Repository = (*Interviews)(nil)

func NewInterviews() *Interviews {
	return &Interviews{
		items:    map[uuid.UUID]interview.Interview{},
		messages: map[uuid.UUID][]interview.Message{},
		skills:   map[uuid.UUID][]interview.ExtractedSkill{},
		Now:      time.Now,
	}
}

func (r *Interviews) now() time.Time { return r.Now().UTC() }

func (r *Interviews) FindOrCreateInProgress(_ context.Context, profileID uuid.UUID) (interview.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if iv, ok := r.inProgress(profileID); ok {
		return iv, nil
	}
	now := r.now()
	iv := interview.Interview{
		ID:               uuid.New(),
		ProfileID:        profileID,
		Status:           interview.StatusInProgress,
		ExtractionStatus: interview.ExtractionNone,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	r.items[iv.ID] = iv
	return iv, nil
}

func (r *Interviews) inProgress(profileID uuid.UUID) (interview.Interview, bool) {
	for _, iv := range r.items {
		if iv.ProfileID == profileID && iv.Status == interview.StatusInProgress {
			return iv, true
		}
	}
	return interview.Interview{}, false
}

func (r *Interviews) GetInProgress(_ context.Context, profileID uuid.UUID) (interview.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if iv, ok := r.inProgress(profileID); ok {
		return iv, nil
	}
	return interview.Interview{}, apperr.NotFound("interview")
}

func (r *Interviews) Get(_ context.Context, id uuid.UUID) (interview.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	iv, ok := r.items[id]
	if !ok {
		return interview.Interview{}, apperr.NotFound("interview")
	}
	return iv, nil
}

func (r *Interviews) GetForProfile(ctx context.Context, profileID, id uuid.UUID) (interview.Interview, error) {
	iv, err := r.Get(ctx, id)
	if err != nil {
		return interview.Interview{}, err
	}
	if iv.ProfileID != profileID {
		return interview.Interview{}, apperr.NotFound("interview")
	}
	return iv, nil
}

func (r *Interviews) LatestCompleted(_ context.Context, profileID uuid.UUID) (interview.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var (
		best  interview.Interview
		found bool
	)
	for _, iv := range r.items {
		if iv.ProfileID != profileID || iv.Status != interview.StatusCompleted {
			continue
		}
		if !found || iv.UpdatedAt.After(best.UpdatedAt) {
			best, found = iv, true
		}
	}
	if !found {
		return interview.Interview{}, apperr.NotFound("interview")
	}
	return best, nil
}

func (r *Interviews) Archive(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	iv, ok := r.items[id]
	if !ok {
		return apperr.NotFound("interview")
	}
	iv.Status = interview.StatusArchived
	iv.UpdatedAt = r.now()
	r.items[id] = iv
	return nil
}

func (r *Interviews) AppendMessage(_ context.Context, m interview.Message) (interview.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[m.InterviewID]; !ok {
		return interview.Message{}, apperr.NotFound("interview")
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.Seq = int64(len(r.messages[m.InterviewID]) + 1)
	m.CreatedAt = r.now()
	r.messages[m.InterviewID] = append(r.messages[m.InterviewID], m)
	return m, nil
}

func (r *Interviews) ListMessages(_ context.Context, interviewID uuid.UUID) ([]interview.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]interview.Message{}, r.messages[interviewID]...), nil
}

func (r *Interviews) BeginExtraction(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	iv, ok := r.items[id]
	if !ok {
		return false, apperr.NotFound("interview")
	}
	if iv.ExtractionStatus == interview.ExtractionProcessing {
		return false, nil
	}
	iv.ExtractionStatus = interview.ExtractionProcessing
	iv.ExtractionError = nil
	iv.UpdatedAt = r.now()
	r.items[id] = iv
	return true, nil
}

func (r *Interviews) CompleteExtraction(_ context.Context, id uuid.UUID, skills []interview.ExtractedSkill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	iv, ok := r.items[id]
	if !ok {
		return apperr.NotFound("interview")
	}
	if iv.ExtractionStatus != interview.ExtractionProcessing {
		return interview.ErrNotProcessing
	}
	r.skills[id] = append([]interview.ExtractedSkill{}, skills...)
	if iv.Status != interview.StatusArchived {
		iv.Status = interview.StatusCompleted
	}
	iv.ExtractionStatus = interview.ExtractionCompleted
	iv.ExtractionError = nil
	iv.UpdatedAt = r.now()
	r.items[id] = iv
	return nil
}

func (r *Interviews) FailExtraction(_ context.Context, id uuid.UUID, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	iv, ok := r.items[id]
	if !ok {
		return false, apperr.NotFound("interview")
	}
	if iv.ExtractionStatus != interview.ExtractionProcessing {
		return false, nil
	}
	r.fail(&iv, reason)
	return true, nil
}

func (r *Interviews) fail(iv *interview.Interview, reason string) {
	iv.ExtractionStatus = interview.ExtractionFailed
	iv.ExtractionError = &reason
	iv.UpdatedAt = r.now()
	r.items[iv.ID] = *iv
}

func (r *Interviews) FailStaleExtractions(_ context.Context, before time.Time, reason string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, iv := range r.items {
		if iv.ExtractionStatus == interview.ExtractionProcessing && iv.UpdatedAt.Before(before) {
			r.fail(&iv, reason)
			n++
		}
	}
	return n, nil
}

func (r *Interviews) ListSkills(_ context.Context, interviewID uuid.UUID) ([]interview.ExtractedSkill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]interview.ExtractedSkill{}, r.skills[interviewID]...), nil
}

func (r *Interviews) ReplaceSkills(_ context.Context, interviewID uuid.UUID, skills []interview.ExtractedSkill) ([]interview.ExtractedSkill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[interviewID]; !ok {
		return nil, apperr.NotFound("interview")
	}
	r.skills[interviewID] = append([]interview.ExtractedSkill{}, skills...)
	return append([]interview.ExtractedSkill{}, skills...), nil
}

func (r *Interviews) DeleteSkill(_ context.Context, interviewID, skillID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.skills[interviewID]
	for i, s := range list {
		if s.ID == skillID {
			r.skills[interviewID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("skill")
}

