package claude

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/career/pkg/apperr"
	"github.com/artem13815/career/pkg/llm"
)

func messageJSON(content string) string {
	return `{"id":"msg_1","type":"message","role":"assistant","model":"m","content":` + content +
		`,"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":1}}`
}

func TestCompleteJoinsTextBlocks(t *testing.T) {
	var got struct {
		System   []struct{ Text string } `json:"system"`
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(messageJSON(`[{"type":"text","text":"{\"a\":"},{"type":"text","text":"1}"}]`)))
	}))
	defer srv.Close()

	c := New("key", "m", option.WithBaseURL(srv.URL))
	out, err := c.Complete(context.Background(), "sys", []llm.Message{
		{Role: llm.RoleUser, Content: "hello"},
		{Role: llm.RoleAssistant, Content: "q1"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)
	require.Len(t, got.System, 1)
	assert.Equal(t, "sys", got.System[0].Text)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "assistant", got.Messages[1].Role)
}

func TestCompleteWithoutHistoryOpensTheTurn(t *testing.T) {
	var n int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []json.RawMessage `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		n = len(body.Messages)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(messageJSON(`[{"type":"text","text":"first question"}]`)))
	}))
	defer srv.Close()

	out, err := New("key", "m", option.WithBaseURL(srv.URL)).Complete(context.Background(), "sys", nil)
	require.NoError(t, err)
	assert.Equal(t, "first question", out)
	assert.Equal(t, 1, n)
}

func TestCompleteClassifiesErrors(t *testing.T) {
	status := http.StatusTooManyRequests
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"x"}}`))
	}))
	defer srv.Close()
	c := New("key", "m", option.WithBaseURL(srv.URL))

	_, err := c.Complete(context.Background(), "sys", nil)
	assert.ErrorIs(t, err, apperr.ErrTransientUpstream)

	status = http.StatusInternalServerError
	_, err = c.Complete(context.Background(), "sys", nil)
	assert.ErrorIs(t, err, apperr.ErrTransientUpstream)

	status = http.StatusBadRequest
	_, err = c.Complete(context.Background(), "sys", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperr.ErrTransientUpstream)
}

func TestCompleteEmptyReplyIsFormatError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(messageJSON(`[]`)))
	}))
	defer srv.Close()

	_, err := New("key", "m", option.WithBaseURL(srv.URL)).Complete(context.Background(), "sys", nil)
	assert.ErrorIs(t, err, apperr.ErrUpstreamFormat)
}

func TestCompleteUnreachableIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New("key", "m", option.WithBaseURL(url)).Complete(context.Background(), "sys", nil)
	assert.ErrorIs(t, err, apperr.ErrTransientUpstream)
}
