// Package llm defines the Provider interface for the language model that
// writes caddie recommendations.
//
// A provider wraps a remote or local model API (e.g. OpenAI, Anthropic, or
// a local Ollama instance) behind a single blocking Complete call. The
// recommendation pipeline is strictly one-utterance-at-a-time, so there is
// no streaming surface: the full reply is needed before narration starts.
//
// Implementations must be safe for concurrent use and must propagate
// context cancellation promptly.
package llm

import "context"

// Usage holds token accounting returned by the model backend. Counts are
// in the model's native token unit.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Request carries one prompt to the model.
type Request struct {
	// System is the system-role instruction, e.g. the caddie persona.
	System string

	// Prompt is the user-role content: the composed recommendation prompt.
	Prompt string

	// Temperature controls output randomness in [0.0, 2.0]. Zero means
	// use the provider default.
	Temperature float64

	// MaxTokens caps the completion length. Zero means provider default.
	// Replies are spoken aloud, so callers keep this small.
	MaxTokens int
}

// Response is the model's reply.
type Response struct {
	// Text is the full reply text.
	Text string

	// Model is the backend's reported model identifier, when available.
	Model string

	// Usage contains token accounting for this exchange.
	Usage Usage
}

// Provider is the abstraction over any LLM backend.
type Provider interface {
	// Complete sends req and waits for the full reply. It returns an
	// error if the request fails or ctx is cancelled first.
	Complete(ctx context.Context, req Request) (*Response, error)
}
