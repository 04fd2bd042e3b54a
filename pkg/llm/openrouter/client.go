package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/artem13815/career/pkg/apperr"
	"github.com/artem13815/career/pkg/llm"
)

// Client is a minimal OpenRouter (OpenAI-compatible) chat completions client.
type Client struct {
	APIKey   string
	BaseURL  string
	Model    string
	AppTitle string
	Referer  string
	httpDo   *http.Client
}

var _ llm.ChatModel = (*Client)(nil)

func New(apiKey, baseURL, model, appTitle, referer string) *Client {
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	return &Client{
		APIKey:   apiKey,
		BaseURL:  baseURL,
		Model:    model,
		AppTitle: appTitle,
		Referer:  referer,
		httpDo: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionsRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type chatCompletionsResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

// Complete sends the system prompt followed by the conversation history and
// returns the model reply. Network failures, 429 and 5xx are reported as
// transient so callers may retry them.
func (c *Client) Complete(ctx context.Context, systemPrompt string, history []llm.Message) (string, error) {
	if c.APIKey == "" {
		return "", errors.New("openrouter api key is empty")
	}
	model := c.Model
	if model == "" {
		model = "qwen/qwen2.5-32b-instruct"
	}
	msgs := make([]message, 0, len(history)+1)
	msgs = append(msgs, message{Role: "system", Content: systemPrompt})
	for _, m := range history {
		msgs = append(msgs, message{Role: string(m.Role), Content: m.Content})
	}
	data, err := json.Marshal(chatCompletionsRequest{Model: model, Messages: msgs, Temperature: 0.2})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/chat/completions", c.BaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	if c.Referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.Referer)
	}
	if c.AppTitle != "" {
		httpReq.Header.Set("X-Title", c.AppTitle)
	}

	resp, err := c.httpDo.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", err
		}
		return "", apperr.TransientUpstream(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errMap map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errMap)
		httpErr := fmt.Errorf("openrouter http %d: %v", resp.StatusCode, errMap)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", apperr.TransientUpstream(httpErr)
		}
		return "", httpErr
	}
	var out chatCompletionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperr.UpstreamFormat("openrouter returned malformed body", err)
	}
	if len(out.Choices) == 0 {
		return "", apperr.UpstreamFormat("no choices returned by model", nil)
	}
	return out.Choices[0].Message.Content, nil
}
