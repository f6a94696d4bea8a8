package haven

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/haven/internal/domain"
	"github.com/kailas-cloud/haven/internal/usecase/fallback"
	"github.com/kailas-cloud/haven/internal/usecase/format"
	healthuc "github.com/kailas-cloud/haven/internal/usecase/health"
	intentuc "github.com/kailas-cloud/haven/internal/usecase/intent"
	"github.com/kailas-cloud/haven/internal/usecase/query"
	"github.com/kailas-cloud/haven/internal/usecase/rerank"
)

const (
	defaultSearchMinConfidence       = 0.5
	defaultConversationMinConfidence = 0.7

	pipelineSearch       = "search"
	pipelineConversation = "conversation"
)

// pipeline is the internal interface for one query pipeline, swapped in tests.
type pipeline interface {
	Resolve(ctx context.Context, query string) (domain.Response, error)
}

// Client is the haven SDK entry point. It is safe for concurrent use.
type Client struct {
	search       pipeline
	conversation pipeline
	healthSvc    healthUseCase
	obs          *observer
}

// New wires both pipelines from the supplied capabilities.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		searchMinConfidence:       defaultSearchMinConfidence,
		conversationMinConfidence: defaultConversationMinConfidence,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.embedder == nil {
		return nil, errors.New("haven: embedder required (use WithEmbedder)")
	}
	if cfg.searcher == nil {
		return nil, errors.New("haven: searcher required (use WithSearcher)")
	}
	if cfg.generator == nil {
		return nil, errors.New("haven: generator required (use WithGenerator)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	return wireClient(cfg, obs), nil
}

func wireClient(cfg *clientConfig, obs *observer) *Client {
	// Internal services log through slog via the observer; zap stays silent.
	log := zap.NewNop()

	emb := &embedderAdapter{inner: cfg.embedder}
	search := &searcherAdapter{inner: cfg.searcher}
	gen := &generatorAdapter{inner: cfg.generator}
	hotline := format.Hotline{Name: cfg.hotlineName, Number: cfg.hotlineNumber}

	intents := intentuc.New(gen, log)
	reranker := rerank.New(emb, nil, log).WithMaxCandidates(cfg.maxCandidates)
	sink := &outcomeSink{obs: obs, fn: cfg.onOutcome}

	build := func(name string, minConfidence float64, style format.Style, voice fallback.Voice) *query.Orchestrator {
		return query.New(
			query.Config{Pipeline: name, MinConfidence: minConfidence},
			query.Deps{
				Intents:  intents,
				Search:   search,
				Rerank:   reranker,
				Format:   format.New(style, hotline),
				Fallback: fallback.New(gen, hotline, voice, log),
				Outcomes: sink,
			},
			log,
		)
	}

	healthSvc := healthuc.New()
	if hc, ok := cfg.embedder.(healthuc.Checker); ok {
		healthSvc.With("embedding", hc)
	}
	if hc, ok := cfg.searcher.(healthuc.Checker); ok {
		healthSvc.With("search", hc)
	}
	if hc, ok := cfg.generator.(healthuc.Checker); ok {
		healthSvc.With("generator", hc)
	}

	return &Client{
		search:       build(pipelineSearch, cfg.searchMinConfidence, format.Listing, fallback.Written),
		conversation: build(pipelineConversation, cfg.conversationMinConfidence, format.Voice, fallback.Spoken),
		healthSvc:    healthSvc,
		obs:          obs,
	}
}

// Search answers a query for the search API, with the lower confidence threshold.
func (c *Client) Search(ctx context.Context, q string) (resp Response, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	return resolve(ctx, c.search, q)
}

// Converse answers a query for a conversational client, with the higher confidence threshold.
func (c *Client) Converse(ctx context.Context, q string) (resp Response, err error) {
	start := time.Now()
	defer func() { c.obs.observe("converse", start, err) }()

	return resolve(ctx, c.conversation, q)
}

func resolve(ctx context.Context, p pipeline, q string) (Response, error) {
	r, err := p.Resolve(ctx, q)
	if err != nil {
		return Response{}, fmt.Errorf("resolve: %w", err)
	}
	return Response{Text: r.Text, Source: string(r.Source), Intent: string(r.Intent)}, nil
}

// embedderAdapter wraps public Embedder to satisfy the internal contract.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// searcherAdapter wraps public Searcher. Empty strings become absent fields.
type searcherAdapter struct {
	inner Searcher
}

func (a *searcherAdapter) Search(ctx context.Context, q string) ([]domain.Candidate, error) {
	hits, err := a.inner.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchProvider, err)
	}
	out := make([]domain.Candidate, len(hits))
	for i, h := range hits {
		out[i] = domain.Candidate{
			Title:         optional(h.Title),
			Content:       optional(h.Content),
			URL:           optional(h.URL),
			ProviderScore: h.Score,
		}
	}
	return out, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type generatorAdapter struct {
	inner Generator
}

func (a *generatorAdapter) Generate(ctx context.Context, system, prompt string) (string, error) {
	text, err := a.inner.Generate(ctx, system, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}
	return text, nil
}

// outcomeSink forwards pipeline outcomes to the observer and the caller's handler.
type outcomeSink struct {
	obs *observer
	fn  func(Outcome)
}

func (s *outcomeSink) Record(_ context.Context, o domain.Outcome) {
	out := Outcome{
		Pipeline:     o.Pipeline,
		Query:        o.Query,
		Intent:       string(o.Intent),
		Path:         string(o.Path),
		UsedFallback: o.UsedFallback,
		Score:        o.Score,
		Error:        o.Error,
		Duration:     o.Duration,
		At:           o.At,
	}
	s.obs.outcome(out)
	if s.fn != nil {
		s.fn(out)
	}
}
