package domain

import "context"

// Generator produces text from a system prompt and a user prompt.
// Implemented by the OpenAI, Anthropic and Gemini adapters.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	ModelName() string
}
