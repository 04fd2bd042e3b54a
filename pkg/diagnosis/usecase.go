package diagnosis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/career/pkg/apperr"
	"github.com/artem13815/career/pkg/interview"
	"github.com/artem13815/career/pkg/jobs"
	"github.com/artem13815/career/pkg/llm"
	"github.com/artem13815/career/pkg/llm/llmjson"
	"github.com/artem13815/career/pkg/logger"
	"github.com/artem13815/career/pkg/talent"
)

const staleDiagnosisReason = "diagnosis timed out"

// ProfileSource loads talent profiles by owner or by id.
type ProfileSource interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (talent.Profile, error)
	GetByID(ctx context.Context, id uuid.UUID) (talent.Profile, error)
}

// SkillSource yields the skills of the profile's latest completed interview.
type SkillSource interface {
	LatestCompletedSkills(ctx context.Context, profileID uuid.UUID) ([]interview.ExtractedSkill, error)
}

// RoadmapMirror receives completed roadmaps (legacy learning-plans document).
type RoadmapMirror interface {
	SaveRoadmap(ctx context.Context, userID uuid.UUID, steps []Step) error
}

type UseCase interface {
	Start(ctx context.Context, userID uuid.UUID) (Analysis, error)
	Get(ctx context.Context, userID, analysisID uuid.UUID) (Analysis, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Analysis, error)
	StepDetail(ctx context.Context, userID, stepID uuid.UUID) (string, error)
	SetStepCompleted(ctx context.Context, userID, stepID uuid.UUID, completed bool) (Step, error)
}

type Service struct {
	repo       Repository
	profiles   ProfileSource
	skills     SkillSource
	model      llm.ChatModel
	dispatcher jobs.Dispatcher
	mirror     RoadmapMirror
	log        *logger.Logger
	staleAfter time.Duration
	now        func() time.Time
}

var _ UseCase = (*Service)(nil)

func NewService(repo Repository, profiles ProfileSource, skills SkillSource, model llm.ChatModel, dispatcher jobs.Dispatcher, mirror RoadmapMirror, log *logger.Logger, staleAfter time.Duration) *Service {
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	return &Service{
		repo:       repo,
		profiles:   profiles,
		skills:     skills,
		model:      model,
		dispatcher: dispatcher,
		mirror:     mirror,
		log:        log.With("component", "Diagnosis"),
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// ChooseStrategy picks career suggestions for users who have not decided on a
// role, and gap analysis otherwise.
func ChooseStrategy(p talent.Profile) Strategy {
	if p.NeedsCareerSuggestion {
		return StrategyCareerSuggestion
	}
	return StrategyGapAnalysis
}

func systemPrompt(s Strategy) string {
	if s == StrategyCareerSuggestion {
		return careerSuggestionPrompt
	}
	return gapAnalysisPrompt
}

// Start creates a PROCESSING analysis and dispatches Execute.
func (s *Service) Start(ctx context.Context, userID uuid.UUID) (Analysis, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return Analysis{}, err
	}
	a, err := s.repo.CreateProcessing(ctx, profile.ID)
	if err != nil {
		return Analysis{}, err
	}
	if err := s.dispatcher.Dispatch(ctx, jobs.Task{Kind: jobs.KindDiagnosis, TargetID: a.ID}); err != nil {
		if _, ferr := s.repo.Fail(ctx, a.ID, "could not schedule diagnosis"); ferr != nil {
			s.log.Error("Failed to record dispatch failure", "analysis_id", a.ID, "error", ferr)
		}
		return Analysis{}, fmt.Errorf("dispatch diagnosis: %w", err)
	}
	s.log.Info("Diagnosis started", "analysis_id", a.ID)
	return a, nil
}

func (s *Service) HandleTask(ctx context.Context, t jobs.Task) error {
	return s.Execute(ctx, t.TargetID)
}

// Execute asks the model for the diagnosis and stores it. Failures end as
// FAILED on the analysis; an error is returned only when that could not be
// recorded.
func (s *Service) Execute(ctx context.Context, analysisID uuid.UUID) (err error) {
	log := s.log.With("analysis_id", analysisID)
	a, err := s.repo.Get(ctx, analysisID)
	if errors.Is(err, apperr.ErrNotFound) {
		log.Warn("Diagnosis target vanished")
		return nil
	}
	if err != nil {
		return err
	}
	if a.Status != StatusProcessing {
		log.Info("Diagnosis not processing, skipping", "status", a.Status)
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("Diagnosis panic", "panic", r)
			err = s.fail(ctx, analysisID, fmt.Errorf("internal error: %v", r))
		}
	}()

	started := s.now()
	profile, err := s.profiles.GetByID(ctx, a.ProfileID)
	if err != nil {
		log.Warn("Diagnosis profile unavailable", "error", err)
		return s.fail(ctx, analysisID, err)
	}
	res, steps, runErr := s.diagnose(ctx, profile, analysisID)
	if runErr != nil {
		log.Warn("Diagnosis failed", "error", runErr)
		return s.fail(ctx, analysisID, runErr)
	}
	if err := s.repo.Complete(ctx, analysisID, res, steps); err != nil {
		if errors.Is(err, ErrNotProcessing) {
			log.Info("Diagnosis result discarded, status changed meanwhile")
			return nil
		}
		log.Error("Failed to store diagnosis", "error", err)
		return s.fail(ctx, analysisID, err)
	}
	log.Info("Diagnosis completed", "steps", len(steps), "took", s.now().Sub(started))

	if s.mirror != nil {
		if err := s.mirror.SaveRoadmap(ctx, profile.UserID, steps); err != nil {
			log.Warn("Roadmap mirror failed", "error", err)
		}
	}
	return nil
}

func (s *Service) fail(ctx context.Context, analysisID uuid.UUID, cause error) error {
	if _, err := s.repo.Fail(ctx, analysisID, cause.Error()); err != nil {
		return fmt.Errorf("record diagnosis failure: %w", err)
	}
	return nil
}

type skillSummary struct {
	SkillName string             `json:"skillName"`
	Category  interview.Category `json:"category"`
	Level     *int               `json:"level,omitempty"`
}

type profileSummary struct {
	TalentType            talent.Type    `json:"talentType"`
	DesiredJobTitles      []string       `json:"desiredJobTitles"`
	CareerSummary         string         `json:"careerSummary,omitempty"`
	NeedsCareerSuggestion bool           `json:"needsCareerSuggestion"`
	SchoolName            string         `json:"schoolName,omitempty"`
	GraduationYear        *int           `json:"graduationYear,omitempty"`
	Skills                []string       `json:"skills"`
	Certifications        []string       `json:"certifications"`
	InterviewSkills       []skillSummary `json:"interviewSkills"`
}

func (s *Service) summarize(ctx context.Context, p talent.Profile) (profileSummary, error) {
	sum := profileSummary{
		TalentType:            p.TalentType,
		DesiredJobTitles:      nonNil(p.DesiredJobTitles),
		CareerSummary:         p.CareerSummary,
		NeedsCareerSuggestion: p.NeedsCareerSuggestion,
		SchoolName:            p.SchoolName,
		GraduationYear:        p.GraduationYear,
		Skills:                nonNil(p.Skills),
		Certifications:        nonNil(p.Certifications),
		InterviewSkills:       []skillSummary{},
	}
	if s.skills == nil {
		return sum, nil
	}
	extracted, err := s.skills.LatestCompletedSkills(ctx, p.ID)
	if err != nil {
		return profileSummary{}, err
	}
	for _, sk := range extracted {
		sum.InterviewSkills = append(sum.InterviewSkills, skillSummary{SkillName: sk.SkillName, Category: sk.Category, Level: sk.Level})
	}
	return sum, nil
}

func (s *Service) diagnose(ctx context.Context, p talent.Profile, analysisID uuid.UUID) (Result, []Step, error) {
	sum, err := s.summarize(ctx, p)
	if err != nil {
		return Result{}, nil, err
	}
	body, err := json.Marshal(sum)
	if err != nil {
		return Result{}, nil, err
	}
	strategy := ChooseStrategy(p)
	s.log.Debug("Diagnosis prompt chosen", "analysis_id", analysisID, "strategy", strategy.String())

	raw, err := llm.Ask(ctx, s.model, systemPrompt(strategy), "Profile:\n"+string(body))
	if err != nil {
		return Result{}, nil, err
	}
	return parseDiagnosis(raw, analysisID)
}

type rawStep struct {
	StepNumber *int    `json:"stepNumber"`
	Title      string  `json:"title"`
	Details    Details `json:"details"`
}

type rawDiagnosis struct {
	Summary           string    `json:"summary"`
	Strengths         string    `json:"strengths"`
	Advice            string    `json:"advice"`
	SkillGapAnalysis  string    `json:"skillGapAnalysis"`
	ExperienceMethods string    `json:"experienceMethods"`
	Roadmap           []rawStep `json:"roadmap"`
}

// parseDiagnosis validates the model reply. Steps keep the model's numbering
// when it is complete and unique, otherwise they are renumbered 1..n in the
// returned order.
func parseDiagnosis(raw string, analysisID uuid.UUID) (Result, []Step, error) {
	var d rawDiagnosis
	if err := llmjson.Decode(raw, &d); err != nil {
		return Result{}, nil, err
	}
	items := make([]rawStep, 0, len(d.Roadmap))
	for _, it := range d.Roadmap {
		it.Title = strings.TrimSpace(it.Title)
		if it.Title == "" {
			continue
		}
		items = append(items, it)
	}
	if len(items) == 0 {
		return Result{}, nil, apperr.UpstreamFormat("AI returned an empty roadmap", nil)
	}

	numbered := true
	seen := make(map[int]struct{}, len(items))
	for _, it := range items {
		if it.StepNumber == nil || *it.StepNumber < 1 {
			numbered = false
			break
		}
		if _, dup := seen[*it.StepNumber]; dup {
			numbered = false
			break
		}
		seen[*it.StepNumber] = struct{}{}
	}
	if numbered {
		sort.SliceStable(items, func(i, j int) bool { return *items[i].StepNumber < *items[j].StepNumber })
	}

	steps := make([]Step, 0, len(items))
	for i, it := range items {
		n := i + 1
		if numbered {
			n = *it.StepNumber
		}
		steps = append(steps, Step{
			ID:         uuid.New(),
			AnalysisID: analysisID,
			StepNumber: n,
			Title:      it.Title,
			Details: Details{
				Description:        strings.TrimSpace(it.Details.Description),
				RecommendedActions: nonNil(it.Details.RecommendedActions),
				ReferenceResources: nonNil(it.Details.ReferenceResources),
			},
		})
	}
	res := Result{
		Summary:           strings.TrimSpace(d.Summary),
		Strengths:         strings.TrimSpace(d.Strengths),
		Advice:            strings.TrimSpace(d.Advice),
		SkillGapAnalysis:  strings.TrimSpace(d.SkillGapAnalysis),
		ExperienceMethods: strings.TrimSpace(d.ExperienceMethods),
	}
	return res, steps, nil
}

func (s *Service) profileID(ctx context.Context, userID uuid.UUID, what string) (uuid.UUID, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return uuid.Nil, apperr.NotFound(what)
	}
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

// Get returns the caller's analysis with its roadmap. A PROCESSING analysis
// older than the staleness threshold is failed on read.
func (s *Service) Get(ctx context.Context, userID, analysisID uuid.UUID) (Analysis, error) {
	pid, err := s.profileID(ctx, userID, "analysis")
	if err != nil {
		return Analysis{}, err
	}
	a, err := s.repo.GetForProfile(ctx, pid, analysisID)
	if err != nil {
		return Analysis{}, err
	}
	if a.Status == StatusProcessing && s.now().Sub(a.UpdatedAt) > s.staleAfter {
		if _, err := s.repo.Fail(ctx, a.ID, staleDiagnosisReason); err != nil {
			return Analysis{}, err
		}
		s.log.Warn("Stale diagnosis failed on read", "analysis_id", a.ID)
		return s.repo.GetForProfile(ctx, pid, analysisID)
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Analysis, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return []Analysis{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.repo.ListByProfile(ctx, p.ID, limit, offset)
}

// StepDetail returns the long-form explanation of a roadmap step, generating
// and caching it on first request.
func (s *Service) StepDetail(ctx context.Context, userID, stepID uuid.UUID) (string, error) {
	pid, err := s.profileID(ctx, userID, "step")
	if err != nil {
		return "", err
	}
	st, err := s.repo.GetStepForProfile(ctx, pid, stepID)
	if err != nil {
		return "", err
	}
	if st.FullContent != nil && *st.FullContent != "" {
		return *st.FullContent, nil
	}

	raw, err := llm.Ask(ctx, s.model, stepDetailPrompt, describeStep(st))
	if err != nil {
		return "", err
	}
	content := strings.TrimSpace(stripFence(raw))
	if content == "" {
		return "", apperr.UpstreamFormat("AI returned empty step detail", nil)
	}
	stored, err := s.repo.CacheStepContent(ctx, st.ID, content)
	if err != nil {
		return "", err
	}
	s.log.Info("Step detail generated", "step_id", st.ID)
	return stored, nil
}

func (s *Service) SetStepCompleted(ctx context.Context, userID, stepID uuid.UUID, completed bool) (Step, error) {
	pid, err := s.profileID(ctx, userID, "step")
	if err != nil {
		return Step{}, err
	}
	st, err := s.repo.GetStepForProfile(ctx, pid, stepID)
	if err != nil {
		return Step{}, err
	}
	if err := s.repo.SetStepCompleted(ctx, st.ID, completed); err != nil {
		return Step{}, err
	}
	st.Completed = completed
	return st, nil
}

// SweepStale fails every diagnosis stuck in PROCESSING.
func (s *Service) SweepStale(ctx context.Context) (int64, error) {
	return s.repo.FailStale(ctx, s.now().Add(-s.staleAfter), staleDiagnosisReason)
}

func describeStep(st Step) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Step %d: %s\n", st.StepNumber, st.Title)
	if st.Details.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", st.Details.Description)
	}
	if len(st.Details.RecommendedActions) > 0 {
		fmt.Fprintf(&b, "Recommended actions: %s\n", strings.Join(st.Details.RecommendedActions, "; "))
	}
	if len(st.Details.ReferenceResources) > 0 {
		fmt.Fprintf(&b, "Resources: %s\n", strings.Join(st.Details.ReferenceResources, "; "))
	}
	return b.String()
}

// stripFence removes a ```markdown wrapper some models add around the reply.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(s), "```")
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
