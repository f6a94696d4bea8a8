package query

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/haven/internal/domain"
)

type mockIntents struct {
	intent      domain.Intent
	err         error
	panicMsg    string
	rewriteArgs []string
}

func (m *mockIntents) Classify(_ context.Context, _ string) (domain.Intent, error) {
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	return m.intent, m.err
}

func (m *mockIntents) Rewrite(query string, in domain.Intent) string {
	m.rewriteArgs = append(m.rewriteArgs, query)
	return query + " " + string(in)
}

type mockSearcher struct {
	results   []domain.Candidate
	err       error
	lastQuery string
	calls     int
}

func (m *mockSearcher) Search(_ context.Context, query string) ([]domain.Candidate, error) {
	m.calls++
	m.lastQuery = query
	return m.results, m.err
}

type mockReranker struct {
	scores    []float64
	unscored  bool
	err       error
	calls     int
	lastQuery string
}

func (m *mockReranker) Rerank(_ context.Context, query string, c []domain.Candidate) ([]domain.ScoredResult, error) {
	m.calls++
	m.lastQuery = query
	if m.err != nil {
		return nil, m.err
	}
	if m.unscored {
		return domain.Unscored(c), nil
	}
	out := make([]domain.ScoredResult, len(c))
	for i := range c {
		out[i] = domain.ScoredResult{Candidate: c[i], RelevanceScore: m.scores[i], Scored: true}
	}
	return out, nil
}

type mockFormatter struct {
	calls int
	panic bool
}

func (m *mockFormatter) Format(results []domain.ScoredResult) string {
	m.calls++
	if m.panic {
		panic("formatter exploded")
	}
	return "listing:" + results[0].TitleText()
}

type mockFallback struct {
	err        error
	calls      int
	lastQuery  string
	lastIntent domain.Intent
}

func (m *mockFallback) Answer(_ context.Context, query string, in domain.Intent) (string, error) {
	m.calls++
	m.lastQuery = query
	m.lastIntent = in
	if m.err != nil {
		return "", m.err
	}
	return "generated answer", nil
}

type mockOutcomes struct {
	mu       sync.Mutex
	outcomes []domain.Outcome
}

func (m *mockOutcomes) Record(_ context.Context, o domain.Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, o)
}

func (m *mockOutcomes) only(t *testing.T) domain.Outcome {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.outcomes) != 1 {
		t.Fatalf("expected exactly one outcome, got %d", len(m.outcomes))
	}
	return m.outcomes[0]
}

type fixture struct {
	intents  *mockIntents
	search   *mockSearcher
	rerank   *mockReranker
	format   *mockFormatter
	fallback *mockFallback
	outcomes *mockOutcomes
}

func newFixture() *fixture {
	return &fixture{
		intents:  &mockIntents{intent: domain.IntentFindShelter},
		search:   &mockSearcher{results: []domain.Candidate{domain.NewCandidate("Shelter A", "Safe housing", "https://a.org")}},
		rerank:   &mockReranker{scores: []float64{0.8}},
		format:   &mockFormatter{},
		fallback: &mockFallback{},
		outcomes: &mockOutcomes{},
	}
}

func (f *fixture) orchestrator(minConfidence float64) *Orchestrator {
	return New(Config{Pipeline: "conversation", MinConfidence: minConfidence}, Deps{
		Intents:  f.intents,
		Search:   f.search,
		Rerank:   f.rerank,
		Format:   f.format,
		Fallback: f.fallback,
		Outcomes: f.outcomes,
	}, zap.NewNop())
}
