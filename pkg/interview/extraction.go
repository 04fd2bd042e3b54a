package interview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/career/pkg/apperr"
	"github.com/artem13815/career/pkg/jobs"
	"github.com/artem13815/career/pkg/llm"
	"github.com/artem13815/career/pkg/llm/llmjson"
	"github.com/artem13815/career/pkg/logger"
	"github.com/artem13815/career/pkg/nlp"
	"github.com/artem13815/career/pkg/talent"
)

const staleExtractionReason = "extraction timed out"

// ProposalApplier merges confirmed data into the talent profile.
type ProposalApplier interface {
	ApplyProposal(ctx context.Context, userID uuid.UUID, proposal map[string]any) (talent.Profile, error)
}

// StatusView is what the client polls.
type StatusView struct {
	InterviewID      uuid.UUID        `json:"interviewId"`
	Status           Status           `json:"status"`
	ExtractionStatus ExtractionStatus `json:"extractionStatus"`
	ExtractionError  *string          `json:"extractionError"`
}

// SkillInput is a user-confirmed skill.
type SkillInput struct {
	SkillName string   `json:"skillName" validate:"required,max=120"`
	Category  Category `json:"category" validate:"required,oneof=technical-skill role-experience soft-skill"`
	Level     *int     `json:"level" validate:"omitempty,min=1,max=5"`
}

// Extraction turns a finished interview transcript into structured skills in
// three phases: Start (fast, flips status and dispatches), Execute (slow, detached)
// and Status (polled by the client).
type Extraction struct {
	repo       Repository
	profiles   ProfileLookup
	proposals  ProposalApplier
	model      llm.ChatModel
	dispatcher jobs.Dispatcher
	log        *logger.Logger
	staleAfter time.Duration
	now        func() time.Time
}

func NewExtraction(repo Repository, profiles ProfileLookup, proposals ProposalApplier, model llm.ChatModel, dispatcher jobs.Dispatcher, log *logger.Logger, staleAfter time.Duration) *Extraction {
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	return &Extraction{
		repo:       repo,
		profiles:   profiles,
		proposals:  proposals,
		model:      model,
		dispatcher: dispatcher,
		log:        log.With("component", "SkillExtraction"),
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

func (e *Extraction) owned(ctx context.Context, userID, interviewID uuid.UUID) (Interview, error) {
	profile, err := e.profiles.GetByUserID(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return Interview{}, apperr.NotFound("interview")
	}
	if err != nil {
		return Interview{}, err
	}
	return e.repo.GetForProfile(ctx, profile.ID, interviewID)
}

// Start marks extraction PROCESSING and dispatches Execute. Calling Start while
// extraction is already PROCESSING is a no-op.
func (e *Extraction) Start(ctx context.Context, userID, interviewID uuid.UUID) error {
	iv, err := e.owned(ctx, userID, interviewID)
	if err != nil {
		return err
	}
	if iv.Status == StatusArchived {
		return apperr.Conflict("interview is archived")
	}
	msgs, err := e.repo.ListMessages(ctx, iv.ID)
	if err != nil {
		return err
	}
	if countUserTurns(msgs) == 0 {
		return apperr.Validation("interview has no answers yet")
	}
	began, err := e.repo.BeginExtraction(ctx, iv.ID)
	if err != nil {
		return err
	}
	if !began {
		e.log.Debug("Extraction already processing", "interview_id", iv.ID)
		return nil
	}
	if err := e.dispatcher.Dispatch(ctx, jobs.Task{Kind: jobs.KindExtraction, TargetID: iv.ID}); err != nil {
		if _, ferr := e.repo.FailExtraction(ctx, iv.ID, "could not schedule extraction"); ferr != nil {
			e.log.Error("Failed to record dispatch failure", "interview_id", iv.ID, "error", ferr)
		}
		return fmt.Errorf("dispatch extraction: %w", err)
	}
	e.log.Info("Extraction started", "interview_id", iv.ID)
	return nil
}

// HandleTask adapts Execute to the job registry.
func (e *Extraction) HandleTask(ctx context.Context, t jobs.Task) error {
	return e.Execute(ctx, t.TargetID)
}

// Execute runs the AI extraction. Every failure of the extraction itself is
// recorded as FAILED on the interview; an error is returned only when that
// record could not be written, so the job can be retried.
func (e *Extraction) Execute(ctx context.Context, interviewID uuid.UUID) (err error) {
	log := e.log.With("interview_id", interviewID)
	iv, err := e.repo.Get(ctx, interviewID)
	if errors.Is(err, apperr.ErrNotFound) {
		log.Warn("Extraction target vanished")
		return nil
	}
	if err != nil {
		return err
	}
	if iv.ExtractionStatus != ExtractionProcessing {
		log.Info("Extraction not processing, skipping", "extraction_status", iv.ExtractionStatus)
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("Extraction panic", "panic", r)
			err = e.fail(ctx, interviewID, fmt.Errorf("internal error: %v", r))
		}
	}()

	started := e.now()
	skills, runErr := e.extract(ctx, interviewID)
	if runErr != nil {
		log.Warn("Extraction failed", "error", runErr)
		return e.fail(ctx, interviewID, runErr)
	}
	if err := e.repo.CompleteExtraction(ctx, interviewID, skills); err != nil {
		if errors.Is(err, ErrNotProcessing) {
			log.Info("Extraction result discarded, status changed meanwhile")
			return nil
		}
		log.Error("Failed to store extracted skills", "error", err)
		return e.fail(ctx, interviewID, err)
	}
	log.Info("Extraction completed", "skills", len(skills), "took", e.now().Sub(started))
	return nil
}

func (e *Extraction) fail(ctx context.Context, interviewID uuid.UUID, cause error) error {
	if _, err := e.repo.FailExtraction(ctx, interviewID, cause.Error()); err != nil {
		return fmt.Errorf("record extraction failure: %w", err)
	}
	return nil
}

func (e *Extraction) extract(ctx context.Context, interviewID uuid.UUID) ([]ExtractedSkill, error) {
	msgs, err := e.repo.ListMessages(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	var answers []string
	for _, m := range msgs {
		if m.Role == llm.RoleUser {
			answers = append(answers, m.Content)
		}
	}
	if len(answers) == 0 {
		return nil, errors.New("transcript has no user answers")
	}
	raw, err := llm.Ask(ctx, e.model, extractionPrompt, strings.Join(answers, "\n\n"))
	if err != nil {
		return nil, err
	}
	skills, err := parseSkills(raw, interviewID)
	if err != nil {
		return nil, err
	}
	if len(skills) == 0 {
		return nil, apperr.UpstreamFormat("AI returned no skills", nil)
	}
	return skills, nil
}

type rawSkill struct {
	SkillName string          `json:"skillName"`
	Name      string          `json:"name"`
	Level     json.RawMessage `json:"level"`
	Category  string          `json:"category"`
}

// parseSkills accepts {"skills":[...]} or a bare array. Items without a name are
// dropped, duplicates (by skill key) keep the first occurrence.
func parseSkills(raw string, interviewID uuid.UUID) ([]ExtractedSkill, error) {
	body, err := llmjson.Extract(raw)
	if err != nil {
		return nil, err
	}
	var items []rawSkill
	if strings.HasPrefix(body, "[") {
		err = json.Unmarshal([]byte(body), &items)
	} else {
		var wrapped struct {
			Skills []rawSkill `json:"skills"`
		}
		err = json.Unmarshal([]byte(body), &wrapped)
		items = wrapped.Skills
	}
	if err != nil {
		return nil, apperr.UpstreamFormat("AI response could not be parsed", err)
	}

	out := make([]ExtractedSkill, 0, len(items))
	seen := map[string]struct{}{}
	for _, it := range items {
		name := strings.TrimSpace(it.SkillName)
		if name == "" {
			name = strings.TrimSpace(it.Name)
		}
		key := nlp.SkillKey(name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cat := Category(strings.ToLower(strings.TrimSpace(it.Category)))
		if !cat.Valid() {
			cat = CategoryTechnical
		}
		out = append(out, ExtractedSkill{
			ID:          uuid.New(),
			InterviewID: interviewID,
			SkillName:   name,
			Category:    cat,
			Level:       coerceLevel(it.Level),
		})
	}
	return out, nil
}

// coerceLevel turns 3, 3.6, "4" or "4/5" into an int clamped to 1..5; anything
// else becomes nil.
func coerceLevel(raw json.RawMessage) *int {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return nil
		}
		str = strings.TrimSpace(str)
		if i := strings.IndexByte(str, '/'); i > 0 {
			str = str[:i]
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return nil
		}
		f = parsed
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	n := int(math.Round(f))
	if n < 1 {
		n = 1
	}
	if n > 5 {
		n = 5
	}
	return &n
}

// Status reports extraction progress. A PROCESSING extraction older than the
// staleness threshold is failed on read so the client can retry.
func (e *Extraction) Status(ctx context.Context, userID, interviewID uuid.UUID) (StatusView, error) {
	iv, err := e.owned(ctx, userID, interviewID)
	if err != nil {
		return StatusView{}, err
	}
	if iv.ExtractionStatus == ExtractionProcessing && e.now().Sub(iv.UpdatedAt) > e.staleAfter {
		if _, err := e.repo.FailExtraction(ctx, iv.ID, staleExtractionReason); err != nil {
			return StatusView{}, err
		}
		e.log.Warn("Stale extraction failed on read", "interview_id", iv.ID)
		if iv, err = e.repo.Get(ctx, iv.ID); err != nil {
			return StatusView{}, err
		}
	}
	return StatusView{
		InterviewID:      iv.ID,
		Status:           iv.Status,
		ExtractionStatus: iv.ExtractionStatus,
		ExtractionError:  iv.ExtractionError,
	}, nil
}

// SweepStale fails every extraction stuck in PROCESSING.
func (e *Extraction) SweepStale(ctx context.Context) (int64, error) {
	return e.repo.FailStaleExtractions(ctx, e.now().Add(-e.staleAfter), staleExtractionReason)
}

func (e *Extraction) ListSkills(ctx context.Context, userID, interviewID uuid.UUID) ([]ExtractedSkill, error) {
	iv, err := e.owned(ctx, userID, interviewID)
	if err != nil {
		return nil, err
	}
	return e.repo.ListSkills(ctx, iv.ID)
}

func (e *Extraction) DeleteSkill(ctx context.Context, userID, interviewID, skillID uuid.UUID) error {
	iv, err := e.owned(ctx, userID, interviewID)
	if err != nil {
		return err
	}
	return e.repo.DeleteSkill(ctx, iv.ID, skillID)
}

// ConfirmSkills re-saves the user's edited skill list and merges the names
// into the talent profile.
func (e *Extraction) ConfirmSkills(ctx context.Context, userID, interviewID uuid.UUID, in []SkillInput) ([]ExtractedSkill, error) {
	iv, err := e.owned(ctx, userID, interviewID)
	if err != nil {
		return nil, err
	}
	if iv.ExtractionStatus != ExtractionCompleted {
		return nil, apperr.Conflict("skills can be confirmed only after extraction completed")
	}
	skills := make([]ExtractedSkill, 0, len(in))
	names := make([]string, 0, len(in))
	for _, s := range in {
		name := strings.TrimSpace(s.SkillName)
		if name == "" {
			return nil, apperr.Validation("skillName must not be empty")
		}
		if !s.Category.Valid() {
			return nil, apperr.Validation("unknown category %q", s.Category)
		}
		if s.Level != nil && (*s.Level < 1 || *s.Level > 5) {
			return nil, apperr.Validation("level must be between 1 and 5")
		}
		skills = append(skills, ExtractedSkill{ID: uuid.New(), InterviewID: iv.ID, SkillName: name, Category: s.Category, Level: s.Level})
		if s.Category == CategoryTechnical {
			names = append(names, name)
		}
	}
	saved, err := e.repo.ReplaceSkills(ctx, iv.ID, skills)
	if err != nil {
		return nil, err
	}
	if len(names) > 0 && e.proposals != nil {
		if _, err := e.proposals.ApplyProposal(ctx, userID, map[string]any{"skills": names}); err != nil {
			return nil, err
		}
	}
	return saved, nil
}

// LatestCompletedSkills returns the skills of the profile's most recent
// completed interview, or none.
func (e *Extraction) LatestCompletedSkills(ctx context.Context, profileID uuid.UUID) ([]ExtractedSkill, error) {
	iv, err := e.repo.LatestCompleted(ctx, profileID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e.repo.ListSkills(ctx, iv.ID)
}
