package claude

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/artem13815/career/pkg/apperr"
	"github.com/artem13815/career/pkg/llm"
)

// Client implements llm.ChatModel on top of the Anthropic Messages API.
type Client struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

var _ llm.ChatModel = (*Client)(nil)

// New builds a client without SDK retries; the job worker owns retry policy.
// Extra options, such as option.WithBaseURL, are applied last.
func New(apiKey, model string, opts ...option.RequestOption) *Client {
	if model == "" {
		model = string(anthropic.ModelClaude3_7SonnetLatest)
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	return &Client{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: 4096,
	}
}

func (c *Client) Complete(ctx context.Context, systemPrompt string, history []llm.Message) (string, error) {
	msgs := make([]anthropic.MessageParam, 0, len(history))
	for _, m := range history {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == llm.RoleAssistant {
			msgs = append(msgs, anthropic.NewAssistantMessage(block))
		} else {
			msgs = append(msgs, anthropic.NewUserMessage(block))
		}
	}
	// The API requires at least one user turn.
	if len(msgs) == 0 {
		msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock("Begin.")))
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(0.2),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:    msgs,
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			if apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500 {
				return "", apperr.TransientUpstream(err)
			}
			return "", err
		}
		if ctx.Err() != nil {
			return "", err
		}
		return "", apperr.TransientUpstream(err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", apperr.UpstreamFormat("empty response from model", nil)
	}
	return b.String(), nil
}
