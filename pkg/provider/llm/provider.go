// Package llm defines the Provider interface for language-model backends.
//
// The resolution engine makes exactly two kinds of LLM calls, a bounded
// arbiter disambiguation request and an open-ended conversational fallback,
// both of which are single-shot completions, so the interface is
// deliberately small: one blocking Complete call plus token accounting and
// static capability metadata. Implementors must be safe for concurrent use
// and must propagate context cancellation promptly.
package llm

import "context"

// Message is a single message in a completion conversation.
type Message struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the text content of the message.
	Content string
}

// Usage holds token accounting returned by the backend. Counts are in the
// model's native token unit and may differ between providers for the same
// text.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionRequest carries everything the model needs to produce a
// response. Messages must be non-empty.
type CompletionRequest struct {
	// SystemPrompt is an optional high-priority instruction injected
	// before the conversation. Providers without a dedicated system slot
	// prepend it as a "system"-role message.
	SystemPrompt string

	// Messages is the ordered conversation; the last message drives the
	// response.
	Messages []Message

	// Temperature controls output randomness in [0.0, 2.0]. Zero requests
	// the provider default.
	Temperature float64

	// MaxTokens caps completion length. Zero means the provider default.
	MaxTokens int
}

// CompletionResponse is the full model reply.
type CompletionResponse struct {
	// Content is the text of the assistant's reply.
	Content string

	// Usage contains token accounting for this request/response pair.
	Usage Usage
}

// Capabilities describes static model metadata, assumed constant for the
// lifetime of a Provider instance.
type Capabilities struct {
	// ContextWindow is the maximum token count for input plus output.
	ContextWindow int

	// MaxOutputTokens is the maximum completion length.
	MaxOutputTokens int
}

// Provider is the abstraction over any LLM backend.
type Provider interface {
	// Complete sends req to the model and waits for the full response.
	// Returns an error if the request fails or ctx is cancelled first.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// CountTokens estimates how many tokens messages would consume in the
	// model's context window. The result need not be exact but should not
	// undercount.
	CountTokens(messages []Message) (int, error)

	// Capabilities returns static metadata about the underlying model.
	Capabilities() Capabilities
}
