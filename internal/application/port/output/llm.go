package output

import (
	"context"

	"screen-agent/internal/domain/entity"
)

// LLMPort is a chat-completion collaborator. Implementations return
// *entity.ProviderError for transport, auth, rate-limit and empty responses.
type LLMPort interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

type ChatRequest struct {
	Messages    []entity.Message
	Temperature float32
	MaxTokens   int
	// JSONMode asks the provider for a single JSON object.
	JSONMode bool
	// Model overrides the adapter's default model when set.
	Model string
}

type ChatResponse struct {
	Message entity.Message
	Usage   entity.Usage
}
