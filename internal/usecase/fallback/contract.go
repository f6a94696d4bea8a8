package fallback

import "context"

// Generator produces text from a system prompt and a user prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}
