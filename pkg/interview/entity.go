package interview

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/career/pkg/llm"
)

type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusArchived   Status = "ARCHIVED"
)

type ExtractionStatus string

const (
	ExtractionNone       ExtractionStatus = "NONE"
	ExtractionProcessing ExtractionStatus = "PROCESSING"
	ExtractionCompleted  ExtractionStatus = "COMPLETED"
	ExtractionFailed     ExtractionStatus = "FAILED"
)

type Category string

const (
	CategoryTechnical Category = "technical-skill"
	CategoryRole      Category = "role-experience"
	CategorySoft      Category = "soft-skill"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryTechnical, CategoryRole, CategorySoft:
		return true
	}
	return false
}

// Interview is one conversational session of a talent profile.
type Interview struct {
	ID               uuid.UUID        `json:"id"`
	ProfileID        uuid.UUID        `json:"profileId"`
	Status           Status           `json:"status"`
	ExtractionStatus ExtractionStatus `json:"extractionStatus"`
	ExtractionError  *string          `json:"extractionError"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// Message is an append-only transcript entry. Seq orders messages within an interview.
type Message struct {
	ID          uuid.UUID `json:"id"`
	InterviewID uuid.UUID `json:"interviewId"`
	Seq         int64     `json:"seq"`
	Role        llm.Role  `json:"role"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ExtractedSkill struct {
	ID          uuid.UUID `json:"id"`
	InterviewID uuid.UUID `json:"interviewId"`
	SkillName   string    `json:"skillName"`
	Category    Category  `json:"category"`
	Level       *int      `json:"level"`
}

// ErrNotProcessing is returned by terminal extraction writes when the
// interview already left PROCESSING (another execution won).
var ErrNotProcessing = errors.New("interview extraction is not processing")

// Repository is the persistence port of the interview pipeline.
type Repository interface {
	// FindOrCreateInProgress returns the profile's IN_PROGRESS interview, creating
	// it if needed. Implementations must guarantee at most one IN_PROGRESS row
	// per profile under concurrent calls.
	FindOrCreateInProgress(ctx context.Context, profileID uuid.UUID) (Interview, error)
	GetInProgress(ctx context.Context, profileID uuid.UUID) (Interview, error)
	Get(ctx context.Context, id uuid.UUID) (Interview, error)
	GetForProfile(ctx context.Context, profileID, id uuid.UUID) (Interview, error)
	LatestCompleted(ctx context.Context, profileID uuid.UUID) (Interview, error)
	Archive(ctx context.Context, id uuid.UUID) error

	AppendMessage(ctx context.Context, m Message) (Message, error)
	ListMessages(ctx context.Context, interviewID uuid.UUID) ([]Message, error)

	// BeginExtraction moves extraction to PROCESSING; false if it already was.
	BeginExtraction(ctx context.Context, id uuid.UUID) (bool, error)
	// CompleteExtraction replaces the interview's skills and marks both the
	// interview and its extraction COMPLETED in one transaction.
	CompleteExtraction(ctx context.Context, id uuid.UUID, skills []ExtractedSkill) error
	// FailExtraction records a failure; false if extraction was not PROCESSING.
	FailExtraction(ctx context.Context, id uuid.UUID, reason string) (bool, error)
	FailStaleExtractions(ctx context.Context, before time.Time, reason string) (int64, error)

	ListSkills(ctx context.Context, interviewID uuid.UUID) ([]ExtractedSkill, error)
	ReplaceSkills(ctx context.Context, interviewID uuid.UUID, skills []ExtractedSkill) ([]ExtractedSkill, error)
	DeleteSkill(ctx context.Context, interviewID, skillID uuid.UUID) error
}
