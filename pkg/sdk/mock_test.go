package haven

import (
	"context"
	"errors"
	"strings"
)

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

// vectorEmbedder returns candidateVec for texts starting with a candidate title and queryVec otherwise.
func vectorEmbedder(queryVec, candidateVec []float32) *mockEmbedder {
	return &mockEmbedder{fn: func(_ context.Context, text string) (EmbeddingResult, error) {
		if strings.HasPrefix(text, "Shelter A") {
			return EmbeddingResult{Embedding: candidateVec, TotalTokens: 3}, nil
		}
		return EmbeddingResult{Embedding: queryVec, TotalTokens: 3}, nil
	}}
}

type healthyEmbedder struct {
	mockEmbedder
	healthErr error
}

func (h *healthyEmbedder) HealthCheck(context.Context) error { return h.healthErr }

type mockSearcher struct {
	hits    []Candidate
	err     error
	queries []string
}

func (m *mockSearcher) Search(_ context.Context, q string) ([]Candidate, error) {
	m.queries = append(m.queries, q)
	return m.hits, m.err
}

// mockGenerator answers the classifier with label and everything else with answer.
type mockGenerator struct {
	label     string
	answer    string
	answerErr error
}

func (m *mockGenerator) Generate(_ context.Context, system, _ string) (string, error) {
	if strings.Contains(system, "Reply with exactly one label") {
		return m.label, nil
	}
	if m.answerErr != nil {
		return "", m.answerErr
	}
	return m.answer, nil
}

var errProviderDown = errors.New("provider down")

func shelterHits() []Candidate {
	return []Candidate{{
		Title:   "Shelter A",
		Content: "Emergency housing for survivors. Call (512) 555-0100.",
		URL:     "https://shelter-a.example.org",
	}}
}

func newTestClient(emb Embedder, search Searcher, gen Generator, opts ...Option) (*Client, error) {
	base := []Option{WithEmbedder(emb), WithSearcher(search), WithGenerator(gen)}
	return New(append(base, opts...)...)
}
