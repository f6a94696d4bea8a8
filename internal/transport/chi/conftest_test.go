package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/haven/internal/domain"
	"github.com/kailas-cloud/haven/internal/usecase/format"
	healthuc "github.com/kailas-cloud/haven/internal/usecase/health"
)

type mockResolver struct {
	resp    domain.Response
	err     error
	tokens  []int // embedding calls to report through the request context
	queries []string
}

func (m *mockResolver) Resolve(ctx context.Context, query string) (domain.Response, error) {
	m.queries = append(m.queries, query)
	for _, n := range m.tokens {
		domain.UsageFromContext(ctx).AddTokens(n)
	}
	return m.resp, m.err
}

type mockOutcomes struct {
	items     []domain.Outcome
	err       error
	lastLimit int
}

func (m *mockOutcomes) Recent(_ context.Context, limit int) ([]domain.Outcome, error) {
	m.lastLimit = limit
	return m.items, m.err
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

type fixture struct {
	search       *mockResolver
	conversation *mockResolver
	outcomes     *mockOutcomes
	health       *mockHealth
}

func newFixture() *fixture {
	return &fixture{
		search: &mockResolver{resp: domain.Response{
			Text: "Shelter A", Source: domain.SourceSearch, Intent: domain.IntentFindShelter,
		}},
		conversation: &mockResolver{resp: domain.Response{
			Text: "You are not alone.", Source: domain.SourceFallback, Intent: domain.IntentGeneralQuery,
		}},
		outcomes: &mockOutcomes{},
		health: &mockHealth{report: healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{"search": healthuc.CheckOK},
		}},
	}
}

// handler builds the full router. A nil outcomes mock disables the journal.
func (f *fixture) handler() http.Handler {
	var outcomes OutcomeReader
	if f.outcomes != nil {
		outcomes = f.outcomes
	}
	s := NewServer(f.search, f.conversation, outcomes, f.health, format.DefaultHotline)
	return NewRouter(s, RouterConfig{}, zap.NewNop())
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	f.handler().ServeHTTP(rr, req)
	return rr
}
