package haven

import "context"

// Embedder converts text to vector embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Searcher fetches candidate resources for a query. An empty slice is a valid answer.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
}

// Candidate is one search hit. Empty fields are treated as absent.
type Candidate struct {
	Title   string
	Content string
	URL     string
	Score   float64
}

// Generator produces text from a system prompt and a user prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}
