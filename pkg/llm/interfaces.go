// Package llm provides clients for the external text-analysis service.
package llm

import "context"

// LLMClient is the surface the classifier needs from a text-analysis
// provider. Use this interface for dependency injection to enable mocking
// in tests.
type LLMClient interface {
	// GenerateResponse generates a single completion for the prompt.
	GenerateResponse(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error)

	// GetModel returns the configured model name.
	GetModel() string

	// GetEndpoint returns the configured endpoint.
	GetEndpoint() string
}

// Ensure implementations satisfy LLMClient at compile time.
var (
	_ LLMClient = (*OpenAIClient)(nil)
	_ LLMClient = (*AnthropicClient)(nil)
	_ LLMClient = (*MockLLMClient)(nil)
)
