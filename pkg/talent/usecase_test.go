package talent_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/career/pkg/apperr"
	"github.com/artem13815/career/pkg/logger"
	"github.com/artem13815/career/pkg/repository/memory"
	"github.com/artem13815/career/pkg/talent"
)

type mirrorLog struct {
	docs map[uuid.UUID]map[string]any
}

func (m *mirrorLog) Update(_ context.Context, userID uuid.UUID, incoming map[string]any) (map[string]any, error) {
	m.docs[userID] = incoming
	return incoming, nil
}

func newService() (*talent.Service, *mirrorLog) {
	mirror := &mirrorLog{docs: map[uuid.UUID]map[string]any{}}
	return talent.NewService(memory.NewTalents(), mirror, logger.Nop()), mirror
}

func TestSaveCreatesThenUpdates(t *testing.T) {
	ctx := context.Background()
	svc, mirror := newService()
	userID := uuid.New()

	_, err := svc.Get(ctx, userID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	first, err := svc.Save(ctx, userID, talent.Input{
		DesiredJobTitles: []string{" Data Engineer ", "data engineer", "ML Engineer"},
		CareerSummary:    "  analyst  ",
		Skills:           []string{"SQL"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Data Engineer", "ML Engineer"}, first.DesiredJobTitles)
	assert.Equal(t, "analyst", first.CareerSummary)
	assert.Equal(t, talent.TypeProfessional, first.TalentType)
	assert.Contains(t, mirror.docs, userID)

	second, err := svc.Save(ctx, userID, talent.Input{CareerSummary: "engineer"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "engineer", second.CareerSummary)
}

func TestSaveStudentFields(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	year := 2027

	p, err := svc.Save(ctx, uuid.New(), talent.Input{SchoolName: "MIT", GraduationYear: &year})
	require.NoError(t, err)
	assert.Empty(t, p.SchoolName, "professionals carry no school data")
	assert.Nil(t, p.GraduationYear)

	p, err = svc.Save(ctx, uuid.New(), talent.Input{TalentType: talent.TypeStudent, SchoolName: "MIT", GraduationYear: &year})
	require.NoError(t, err)
	assert.Equal(t, "MIT", p.SchoolName)
	require.NotNil(t, p.GraduationYear)
	assert.Equal(t, 2027, *p.GraduationYear)

	bad := 1900
	_, err = svc.Save(ctx, uuid.New(), talent.Input{TalentType: talent.TypeStudent, GraduationYear: &bad})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Save(ctx, uuid.New(), talent.Input{TalentType: "robot"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestApplyProposalMerges(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	userID := uuid.New()
	_, err := svc.Save(ctx, userID, talent.Input{
		DesiredJobTitles: []string{"Backend Engineer"},
		CareerSummary:    "Go developer",
		Skills:           []string{"Go"},
	})
	require.NoError(t, err)

	p, err := svc.ApplyProposal(ctx, userID, map[string]any{
		"skills":           []any{"PostgreSQL", "Go"},
		"careerSummary":    "",
		"desiredJobTitles": []any{},
		"isPublic":         true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, p.Skills)
	assert.Equal(t, "Go developer", p.CareerSummary)
	assert.Equal(t, []string{"Backend Engineer"}, p.DesiredJobTitles)
	assert.False(t, p.IsPublic, "only profile content keys are accepted from proposals")

	_, err = svc.ApplyProposal(ctx, uuid.New(), map[string]any{"skills": []any{"Go"}})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
