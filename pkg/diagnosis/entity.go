package diagnosis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// Terminal reports whether polling may stop.
func (s Status) Terminal() bool { return s == StatusCompleted || s == StatusFailed }

// Analysis is one diagnosis run for a talent profile.
type Analysis struct {
	ID                uuid.UUID `json:"id"`
	ProfileID         uuid.UUID `json:"profileId"`
	Status            Status    `json:"diagnosisStatus"`
	Summary           string    `json:"summary"`
	Strengths         string    `json:"strengths"`
	Advice            string    `json:"advice"`
	SkillGapAnalysis  string    `json:"skillGapAnalysis"`
	ExperienceMethods string    `json:"experienceMethods"`
	Error             *string   `json:"error,omitempty"`
	Steps             []Step    `json:"roadmap"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Result holds the text fields written when a run completes.
type Result struct {
	Summary           string
	Strengths         string
	Advice            string
	SkillGapAnalysis  string
	ExperienceMethods string
}

type Details struct {
	Description        string   `json:"description"`
	RecommendedActions []string `json:"recommendedActions"`
	ReferenceResources []string `json:"referenceResources"`
}

// Step is one stage of the learning roadmap. FullContent is generated on first
// detail request and cached.
type Step struct {
	ID          uuid.UUID `json:"id"`
	AnalysisID  uuid.UUID `json:"analysisId"`
	StepNumber  int       `json:"stepNumber"`
	Title       string    `json:"title"`
	Details     Details   `json:"details"`
	FullContent *string   `json:"fullContent,omitempty"`
	Completed   bool      `json:"completed"`
}

var ErrNotProcessing = errors.New("analysis is not processing")

type Repository interface {
	CreateProcessing(ctx context.Context, profileID uuid.UUID) (Analysis, error)
	// Get and GetForProfile include roadmap steps ordered by step number.
	Get(ctx context.Context, id uuid.UUID) (Analysis, error)
	GetForProfile(ctx context.Context, profileID, id uuid.UUID) (Analysis, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID, limit, offset int) ([]Analysis, error)
	// Complete writes the result and the steps and sets COMPLETED in one
	// transaction, only while the analysis is PROCESSING.
	Complete(ctx context.Context, id uuid.UUID, res Result, steps []Step) error
	Fail(ctx context.Context, id uuid.UUID, reason string) (bool, error)
	FailStale(ctx context.Context, before time.Time, reason string) (int64, error)

	// GetStepForProfile finds a step only through an analysis owned by profileID.
	GetStepForProfile(ctx context.Context, profileID, stepID uuid.UUID) (Step, error)
	// CacheStepContent stores content if none is cached yet and returns the
	// content that ends up stored.
	CacheStepContent(ctx context.Context, stepID uuid.UUID, content string) (string, error)
	SetStepCompleted(ctx context.Context, stepID uuid.UUID, completed bool) error
}
