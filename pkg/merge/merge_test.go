package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileEmptyIncomingKeepsExisting(t *testing.T) {
	existing := map[string]any{"name": "Ann", "skills": []any{"Go"}}
	assert.Equal(t, existing, Profile(existing, map[string]any{}))
	assert.Equal(t, existing, Profile(existing, nil))
}

func TestProfileSkipsNoInformationValues(t *testing.T) {
	existing := map[string]any{"name": "Ann", "skills": []any{"Go"}, "summary": "x"}
	got := Profile(existing, map[string]any{
		"name":    "",
		"skills":  []any{},
		"summary": nil,
	})
	assert.Equal(t, existing, got)
}

func TestProfileArrayUnion(t *testing.T) {
	got := Profile(
		map[string]any{"skills": []any{"A"}},
		map[string]any{"skills": []any{"A", "B"}},
	)
	assert.Equal(t, map[string]any{"skills": []any{"A", "B"}}, got)
}

func TestProfileArrayUnionTypedSlices(t *testing.T) {
	got := Profile(
		map[string]any{"skills": []string{"Go", "SQL"}},
		map[string]any{"skills": []string{"SQL", "Docker"}},
	)
	assert.ElementsMatch(t, []any{"Go", "SQL", "Docker"}, got["skills"])
}

func TestProfileScalarOverwriteAndNewKeys(t *testing.T) {
	got := Profile(
		map[string]any{"title": "Junior", "years": 1.0},
		map[string]any{"title": "Senior", "city": "Tokyo", "flag": false},
	)
	assert.Equal(t, "Senior", got["title"])
	assert.Equal(t, 1.0, got["years"])
	assert.Equal(t, "Tokyo", got["city"])
	assert.Equal(t, false, got["flag"])
}

func TestProfileDoesNotMutateInputs(t *testing.T) {
	existing := map[string]any{"skills": []any{"A"}}
	incoming := map[string]any{"skills": []any{"B"}}
	_ = Profile(existing, incoming)
	assert.Equal(t, []any{"A"}, existing["skills"])
	assert.Equal(t, []any{"B"}, incoming["skills"])
}

func TestProfileUnionDedupesObjects(t *testing.T) {
	got := Profile(
		map[string]any{"jobs": []any{map[string]any{"company": "A"}}},
		map[string]any{"jobs": []any{map[string]any{"company": "A"}, map[string]any{"company": "B"}}},
	)
	assert.Len(t, got["jobs"], 2)
}

func TestStructs(t *testing.T) {
	type doc struct {
		Name   string   `json:"name,omitempty"`
		Skills []string `json:"skills,omitempty"`
	}
	var out doc
	require.NoError(t, Structs(doc{Name: "Ann", Skills: []string{"Go"}}, map[string]any{"skills": []any{"Rust"}}, &out))
	assert.Equal(t, doc{Name: "Ann", Skills: []string{"Go", "Rust"}}, out)
}
