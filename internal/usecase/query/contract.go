package query

import (
	"context"

	"github.com/kailas-cloud/haven/internal/domain"
)

// IntentResolver classifies raw queries and rewrites them for search.
type IntentResolver interface {
	Classify(ctx context.Context, query string) (domain.Intent, error)
	Rewrite(query string, in domain.Intent) string
}

// Searcher fetches candidates from the external search provider.
// An empty result is a valid outcome, distinct from an error.
type Searcher interface {
	Search(ctx context.Context, query string) ([]domain.Candidate, error)
}

// Reranker scores candidates by semantic relevance to the query.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []domain.Candidate) ([]domain.ScoredResult, error)
}

// Formatter renders accepted results as response text.
type Formatter interface {
	Format(results []domain.ScoredResult) string
}

// Fallback answers a query generatively.
type Fallback interface {
	Answer(ctx context.Context, query string, in domain.Intent) (string, error)
}

// OutcomeLogger records the terminal outcome of a query. Fire-and-forget.
type OutcomeLogger interface {
	Record(ctx context.Context, o domain.Outcome)
}
