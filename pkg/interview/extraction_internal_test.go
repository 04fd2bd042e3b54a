package interview

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/career/pkg/apperr"
)

func TestCoerceLevel(t *testing.T) {
	cases := []struct {
		raw  string
		want *int
	}{
		{`3`, intp(3)},
		{`3.6`, intp(4)},
		{`"4"`, intp(4)},
		{`"4/5"`, intp(4)},
		{`0`, intp(1)},
		{`12`, intp(5)},
		{`"expert"`, nil},
		{`null`, nil},
		{``, nil},
		{`true`, nil},
	}
	for _, tc := range cases {
		got := coerceLevel(json.RawMessage(tc.raw))
		if tc.want == nil {
			assert.Nil(t, got, tc.raw)
			continue
		}
		require.NotNil(t, got, tc.raw)
		assert.Equal(t, *tc.want, *got, tc.raw)
	}
}

func TestParseSkills(t *testing.T) {
	id := uuid.New()

	bare, err := parseSkills(`Here you go: [{"name":"Docker","category":"Technical-Skill","level":2}]`, id)
	require.NoError(t, err)
	require.Len(t, bare, 1)
	assert.Equal(t, "Docker", bare[0].SkillName)
	assert.Equal(t, CategoryTechnical, bare[0].Category)
	assert.Equal(t, id, bare[0].InterviewID)

	wrapped, err := parseSkills(`{"skills":[{"skillName":"k8s"},{"skillName":"Kubernetes"},{"skillName":" "},{"skillName":"Listening","category":"soft-skill"}]}`, id)
	require.NoError(t, err)
	require.Len(t, wrapped, 2)
	assert.Equal(t, "k8s", wrapped[0].SkillName)
	assert.Equal(t, CategorySoft, wrapped[1].Category)

	_, err = parseSkills("no json at all", id)
	assert.ErrorIs(t, err, apperr.ErrUpstreamFormat)

	_, err = parseSkills(`{"skills":"Go"}`, id)
	assert.ErrorIs(t, err, apperr.ErrUpstreamFormat)
}

func intp(n int) *int { return &n }
