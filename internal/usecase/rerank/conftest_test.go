package rerank

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/haven/internal/domain"
)

// mockEmbedder returns vectors by exact text; unknown texts get fallback.
type mockEmbedder struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	fallback []float32
	failOn   map[string]error
	calls    []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if err, ok := m.failOn[text]; ok {
		return domain.EmbeddingResult{}, err
	}
	if v, ok := m.vectors[text]; ok {
		return domain.EmbeddingResult{Embedding: v}, nil
	}
	return domain.EmbeddingResult{Embedding: m.fallback}, nil
}

func (m *mockEmbedder) called() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func newTestService(t *testing.T, emb *mockEmbedder) *Service {
	t.Helper()
	return New(emb, nil, zap.NewNop())
}

// candidates builds one candidate per title, each with summary "summary".
func candidates(titles ...string) []domain.Candidate {
	out := make([]domain.Candidate, len(titles))
	for i, title := range titles {
		out[i] = domain.NewCandidate(title, "summary", "https://example.org/"+title)
	}
	return out
}
