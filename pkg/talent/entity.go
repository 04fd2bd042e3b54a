package talent

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeProfessional Type = "professional"
	TypeStudent      Type = "student"
)

// Profile is the candidate side of the platform, one per user.
type Profile struct {
	ID                    uuid.UUID `json:"id"`
	UserID                uuid.UUID `json:"userId"`
	DesiredJobTitles      []string  `json:"desiredJobTitles"`
	CareerSummary         string    `json:"careerSummary"`
	NeedsCareerSuggestion bool      `json:"needsCareerSuggestion"`
	IsPublic              bool      `json:"isPublic"`
	ScoutingEnabled       bool      `json:"scoutingEnabled"`
	TalentType            Type      `json:"talentType"`
	// student only
	SchoolName         string `json:"schoolName,omitempty"`
	GraduationYear     *int   `json:"graduationYear,omitempty"`
	InternshipInterest bool   `json:"internshipInterest,omitempty"`

	Skills         []string  `json:"skills"`
	Certifications []string  `json:"certifications"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Input is the editable part of a profile.
type Input struct {
	DesiredJobTitles      []string `json:"desiredJobTitles" validate:"max=10,dive,max=120"`
	CareerSummary         string   `json:"careerSummary" validate:"max=4000"`
	NeedsCareerSuggestion bool     `json:"needsCareerSuggestion"`
	IsPublic              bool     `json:"isPublic"`
	ScoutingEnabled       bool     `json:"scoutingEnabled"`
	TalentType            Type     `json:"talentType" validate:"omitempty,oneof=professional student"`
	SchoolName            string   `json:"schoolName,omitempty" validate:"max=200"`
	GraduationYear        *int     `json:"graduationYear,omitempty"`
	InternshipInterest    bool     `json:"internshipInterest,omitempty"`
	Skills                []string `json:"skills" validate:"max=200,dive,max=120"`
	Certifications        []string `json:"certifications" validate:"max=100,dive,max=200"`
}

func (p Profile) Input() Input {
	return Input{
		DesiredJobTitles:      p.DesiredJobTitles,
		CareerSummary:         p.CareerSummary,
		NeedsCareerSuggestion: p.NeedsCareerSuggestion,
		IsPublic:              p.IsPublic,
		ScoutingEnabled:       p.ScoutingEnabled,
		TalentType:            p.TalentType,
		SchoolName:            p.SchoolName,
		GraduationYear:        p.GraduationYear,
		InternshipInterest:    p.InternshipInterest,
		Skills:                p.Skills,
		Certifications:        p.Certifications,
	}
}

// Repository is the persistence port for talent profiles.
// Skills and certifications are stored through join tables and replaced on Save.
type Repository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (Profile, error)
	GetByID(ctx context.Context, id uuid.UUID) (Profile, error)
	Save(ctx context.Context, p Profile) (Profile, error)
}
