package talent

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/career/pkg/apperr"
	"github.com/artem13815/career/pkg/logger"
	"github.com/artem13815/career/pkg/merge"
	"github.com/artem13815/career/pkg/nlp"
)

// DocumentMirror receives a copy of every saved profile (legacy document path).
type DocumentMirror interface {
	Update(ctx context.Context, userID uuid.UUID, incoming map[string]any) (map[string]any, error)
}

type UseCase interface {
	Get(ctx context.Context, userID uuid.UUID) (Profile, error)
	Save(ctx context.Context, userID uuid.UUID, in Input) (Profile, error)
	ApplyProposal(ctx context.Context, userID uuid.UUID, proposal map[string]any) (Profile, error)
}

type Service struct {
	repo   Repository
	mirror DocumentMirror
	log    *logger.Logger
	now    func() time.Time
}

var _ UseCase = (*Service)(nil)

func NewService(repo Repository, mirror DocumentMirror, log *logger.Logger) *Service {
	return &Service{repo: repo, mirror: mirror, log: log.With("component", "TalentService"), now: time.Now}
}

func (s *Service) Get(ctx context.Context, userID uuid.UUID) (Profile, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// Save creates the profile on first call and updates it afterwards.
func (s *Service) Save(ctx context.Context, userID uuid.UUID, in Input) (Profile, error) {
	in, err := normalize(in)
	if err != nil {
		return Profile{}, err
	}
	p, err := s.repo.GetByUserID(ctx, userID)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		p = Profile{ID: uuid.New(), UserID: userID, CreatedAt: s.now().UTC()}
	case err != nil:
		return Profile{}, err
	}
	p.DesiredJobTitles = in.DesiredJobTitles
	p.CareerSummary = in.CareerSummary
	p.NeedsCareerSuggestion = in.NeedsCareerSuggestion
	p.IsPublic = in.IsPublic
	p.ScoutingEnabled = in.ScoutingEnabled
	p.TalentType = in.TalentType
	p.SchoolName = in.SchoolName
	p.GraduationYear = in.GraduationYear
	p.InternshipInterest = in.InternshipInterest
	p.Skills = in.Skills
	p.Certifications = in.Certifications
	p.UpdatedAt = s.now().UTC()

	saved, err := s.repo.Save(ctx, p)
	if err != nil {
		return Profile{}, err
	}
	s.mirrorProfile(ctx, saved)
	return saved, nil
}

// proposalKeys are the profile fields AI output may contribute to.
var proposalKeys = map[string]struct{}{
	"desiredJobTitles": {},
	"careerSummary":    {},
	"skills":           {},
	"certifications":   {},
	"schoolName":       {},
}

// ApplyProposal merges AI-proposed data into the stored profile: empty values are
// ignored, lists are unioned and scalars overwritten.
func (s *Service) ApplyProposal(ctx context.Context, userID uuid.UUID, proposal map[string]any) (Profile, error) {
	p, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	filtered := make(map[string]any, len(proposal))
	for k, v := range proposal {
		if _, ok := proposalKeys[k]; ok {
			filtered[k] = v
		}
	}
	var next Input
	if err := merge.Structs(p.Input(), filtered, &next); err != nil {
		return Profile{}, apperr.Validation("invalid proposal: %v", err)
	}
	return s.Save(ctx, userID, next)
}

func (s *Service) mirrorProfile(ctx context.Context, p Profile) {
	if s.mirror == nil {
		return
	}
	doc := map[string]any{
		"desiredJobTitles":      p.DesiredJobTitles,
		"careerSummary":         p.CareerSummary,
		"needsCareerSuggestion": p.NeedsCareerSuggestion,
		"talentType":            string(p.TalentType),
		"schoolName":            p.SchoolName,
		"skills":                p.Skills,
		"certifications":        p.Certifications,
	}
	if _, err := s.mirror.Update(ctx, p.UserID, doc); err != nil {
		s.log.Warn("profile document mirror failed", "profile_id", p.ID, "error", err)
	}
}

func normalize(in Input) (Input, error) {
	if in.TalentType == "" {
		in.TalentType = TypeProfessional
	}
	switch in.TalentType {
	case TypeProfessional:
		in.SchoolName = ""
		in.GraduationYear = nil
		in.InternshipInterest = false
	case TypeStudent:
		if in.GraduationYear != nil && (*in.GraduationYear < 1950 || *in.GraduationYear > 2100) {
			return Input{}, apperr.Validation("graduationYear must be between 1950 and 2100")
		}
	default:
		return Input{}, apperr.Validation("unknown talentType %q", in.TalentType)
	}
	in.CareerSummary = strings.TrimSpace(in.CareerSummary)
	in.SchoolName = strings.TrimSpace(in.SchoolName)
	in.DesiredJobTitles = uniqueTrimmed(in.DesiredJobTitles)
	in.Certifications = uniqueTrimmed(in.Certifications)
	in.Skills = nlp.DedupeSkills(in.Skills)
	if len(in.DesiredJobTitles) > 10 {
		return Input{}, apperr.Validation("at most 10 desired job titles are allowed")
	}
	return in, nil
}

func uniqueTrimmed(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
