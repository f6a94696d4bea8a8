package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/haven/internal/domain"
)

// Config holds per-pipeline settings.
type Config struct {
	// Pipeline names the call site in outcomes and metrics ("search", "conversation").
	Pipeline string
	// MinConfidence is the relevance floor below which search results are discarded.
	MinConfidence float64
}

// Deps are the collaborators a pipeline calls through.
type Deps struct {
	Intents  IntentResolver
	Search   Searcher
	Rerank   Reranker
	Format   Formatter
	Fallback Fallback
	Outcomes OutcomeLogger
}

// Orchestrator resolves one query at a time through the search pipeline.
// It holds no per-query state and is safe for concurrent use.
type Orchestrator struct {
	cfg    Config
	deps   Deps
	logger *zap.Logger
	now    func() time.Time
}

// New creates a query orchestrator.
func New(cfg Config, deps Deps, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{cfg: cfg, deps: deps, logger: logger, now: time.Now}
}

// Pipeline returns the configured pipeline name.
func (o *Orchestrator) Pipeline() string { return o.cfg.Pipeline }

// MinConfidence returns the configured confidence floor.
func (o *Orchestrator) MinConfidence() float64 { return o.cfg.MinConfidence }

// Resolve answers a query with either a formatted resource listing or a generated answer.
// The outcome is recorded exactly once. The only error returned for a non-empty query
// is domain.ErrFallbackFailed, when the generative answer itself could not be produced.
func (o *Orchestrator) Resolve(ctx context.Context, query string) (domain.Response, error) {
	if strings.TrimSpace(query) == "" {
		return domain.Response{}, domain.ErrEmptyQuery
	}

	r := &run{query: query, started: o.now()}
	for st := stageClassify; st != stageDone; {
		st = o.advance(ctx, st, r)
	}

	o.deps.Outcomes.Record(ctx, r.outcome(o.cfg.Pipeline, o.now()))

	if r.fallbackErr != nil {
		return domain.Response{Source: domain.SourceFallback, Intent: r.intent}, r.fallbackErr
	}
	return domain.Response{Text: r.text, Source: r.source, Intent: r.intent}, nil
}

// advance runs one stage and returns the next. Errors and panics route to the fallback stage.
func (o *Orchestrator) advance(ctx context.Context, st stage, r *run) stage {
	next, err := o.safeStep(ctx, st, r)
	if err == nil {
		return next
	}
	if st == stageFallback {
		r.fallbackErr = err
		if !errors.Is(err, domain.ErrFallbackFailed) {
			r.fallbackErr = fmt.Errorf("%w: %w", domain.ErrFallbackFailed, err)
		}
		o.logger.Error("Fallback failed",
			zap.String("pipeline", o.cfg.Pipeline),
			zap.String("intent", string(r.intent)),
			zap.Error(err),
		)
		return stageDone
	}
	r.fail(st, err)
	o.logFailure(st, r, err)
	return stageFallback
}

func (o *Orchestrator) safeStep(ctx context.Context, st stage, r *run) (next stage, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic in %s stage: %v", st, p)
		}
	}()
	return o.step(ctx, st, r)
}

func (o *Orchestrator) step(ctx context.Context, st stage, r *run) (stage, error) {
	switch st {
	case stageClassify:
		in, err := o.deps.Intents.Classify(ctx, r.query)
		if err != nil {
			return stageFallback, err
		}
		r.intent = in
		return stageRewrite, nil

	case stageRewrite:
		r.rewritten = o.deps.Intents.Rewrite(r.query, r.intent)
		return stageSearch, nil

	case stageSearch:
		candidates, err := o.deps.Search.Search(ctx, r.rewritten)
		if err != nil {
			return stageFallback, err
		}
		if len(candidates) == 0 {
			r.path = domain.PathEmptyResults
			r.score = 0
			return stageFallback, nil
		}
		r.candidates = candidates
		return stageRerank, nil

	case stageRerank:
		results, err := o.deps.Rerank.Rerank(ctx, r.rewritten, r.candidates)
		if err != nil {
			return stageFallback, err
		}
		r.results = results
		return stageGate, nil

	case stageGate:
		r.score = domain.TopScore(r.results)
		if r.score < o.cfg.MinConfidence {
			r.path = domain.PathLowConfidence
			return stageFallback, nil
		}
		return stageAccept, nil

	case stageAccept:
		r.text = o.deps.Format.Format(r.results)
		r.source = domain.SourceSearch
		r.path = domain.PathAccepted
		return stageDone, nil

	case stageFallback:
		if !r.intent.Valid() {
			r.intent = domain.IntentGeneralQuery
		}
		r.source = domain.SourceFallback
		text, err := o.deps.Fallback.Answer(ctx, r.query, r.intent)
		if err != nil {
			return stageDone, err
		}
		r.text = text
		return stageDone, nil

	default:
		return stageDone, fmt.Errorf("unknown stage %d", st)
	}
}

func (o *Orchestrator) logFailure(st stage, r *run, err error) {
	fields := []zap.Field{
		zap.String("pipeline", o.cfg.Pipeline),
		zap.String("stage", st.String()),
		zap.String("intent", string(r.intent)),
		zap.Error(err),
	}
	if errors.Is(err, domain.ErrDimensionMismatch) {
		o.logger.Error("Embedding dimensions disagree, check embedding model configuration", fields...)
		return
	}
	o.logger.Warn("Pipeline stage failed, using fallback", fields...)
}
