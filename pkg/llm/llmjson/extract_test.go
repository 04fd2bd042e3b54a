package llmjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/career/pkg/apperr"
)

func TestExtract(t *testing.T) {
	cases := map[string]struct {
		in   string
		want string
	}{
		"plain":        {`{"a":1}`, `{"a":1}`},
		"fenced":       {"```json\n{\"a\": [1, 2]}\n```", `{"a": [1, 2]}`},
		"prose":        {`Sure! Here it is: {"nextQuestion":"Why?","isFinished":false} Hope this helps.`, `{"nextQuestion":"Why?","isFinished":false}`},
		"braces in str": {`{"q":"use { and } freely","n":"\"}"}`, `{"q":"use { and } freely","n":"\"}"}`},
		"array":        {`result: [{"skillName":"Go"}]`, `[{"skillName":"Go"}]`},
		"skips broken": {`{oops} then {"ok":true}`, `{"ok":true}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := Extract(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractFailsWithUpstreamFormat(t *testing.T) {
	for _, in := range []string{"", "no json here", `{"unterminated": true`} {
		_, err := Extract(in)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperr.ErrUpstreamFormat)
	}
}

func TestDecode(t *testing.T) {
	var out struct {
		NextQuestion string `json:"nextQuestion"`
		IsFinished   bool   `json:"isFinished"`
	}
	require.NoError(t, Decode("```\n{\"nextQuestion\":\"Tell me more\",\"isFinished\":true}\n```", &out))
	assert.Equal(t, "Tell me more", out.NextQuestion)
	assert.True(t, out.IsFinished)

	var wrongShape []string
	err := Decode(`{"a":1}`, &wrongShape)
	assert.ErrorIs(t, err, apperr.ErrUpstreamFormat)
}
