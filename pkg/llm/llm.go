package llm

import "context"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// ChatModel is a minimal abstraction for chat-based LLMs used by the domain.
// It intentionally hides concrete providers to preserve dependency direction.
type ChatModel interface {
	Complete(ctx context.Context, systemPrompt string, history []Message) (string, error)
}

// Func adapts a plain function to ChatModel.
type Func func(ctx context.Context, systemPrompt string, history []Message) (string, error)

func (f Func) Complete(ctx context.Context, systemPrompt string, history []Message) (string, error) {
	return f(ctx, systemPrompt, history)
}

// Ask sends a single user prompt.
func Ask(ctx context.Context, m ChatModel, systemPrompt, userPrompt string) (string, error) {
	return m.Complete(ctx, systemPrompt, []Message{{Role: RoleUser, Content: userPrompt}})
}
