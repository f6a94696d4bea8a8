package rerank

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/haven/internal/domain"
	"github.com/kailas-cloud/haven/internal/domain/similarity"
	"github.com/kailas-cloud/haven/internal/metrics"
)

// DefaultMaxCandidates bounds how many candidates are embedded per call.
const DefaultMaxCandidates = 5

// Service reorders search candidates by semantic similarity to the query.
type Service struct {
	embed         Embedder
	pool          *ants.Pool
	maxCandidates int
	logger        *zap.Logger
}

// New creates a reranker. pool may be nil, in which case every embedding runs on its own goroutine.
func New(embed Embedder, pool *ants.Pool, logger *zap.Logger) *Service {
	return &Service{
		embed:         embed,
		pool:          pool,
		maxCandidates: DefaultMaxCandidates,
		logger:        logger,
	}
}

// WithMaxCandidates overrides the candidate cap.
func (s *Service) WithMaxCandidates(n int) *Service {
	if n > 0 {
		s.maxCandidates = n
	}
	return s
}

// Rerank scores the first maxCandidates candidates against the query and returns them best-first.
//
// Any embedding failure is absorbed: the original candidate list is returned unscored and
// unchanged, so the caller can still proceed without relevance data. A dimension mismatch
// between embeddings is not absorbed and is returned as an error.
func (s *Service) Rerank(
	ctx context.Context, query string, candidates []domain.Candidate,
) ([]domain.ScoredResult, error) {
	if len(candidates) == 0 {
		return []domain.ScoredResult{}, nil
	}

	top := candidates
	if len(top) > s.maxCandidates {
		top = top[:s.maxCandidates]
	}

	texts := make([]string, 0, len(top)+1)
	texts = append(texts, query)
	for _, c := range top {
		texts = append(texts, c.EmbeddingText())
	}

	vectors, err := s.embedAll(ctx, texts)
	if err != nil {
		s.logger.Warn("Rerank skipped, returning candidates unscored",
			zap.Int("candidates", len(candidates)),
			zap.Error(err),
		)
		metrics.RerankTotal.WithLabelValues("fail_open").Inc()
		return domain.Unscored(candidates), nil
	}

	queryVec := vectors[0]
	scored := make([]domain.ScoredResult, len(top))
	for i, c := range top {
		score, err := similarity.Cosine(queryVec, vectors[i+1])
		if err != nil {
			metrics.RerankTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("score candidate %d: %w", i, err)
		}
		scored[i] = domain.ScoredResult{Candidate: c, RelevanceScore: score, Scored: true}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})

	metrics.RerankTotal.WithLabelValues("scored").Inc()
	s.logger.Debug("Rerank completed",
		zap.Int("candidates", len(candidates)),
		zap.Int("scored", len(scored)),
		zap.Float64("top_score", scored[0].RelevanceScore),
	)

	return scored, nil
}

// embedAll embeds every text concurrently and waits for all of them.
// The first error (by input position) is returned. Once ctx is done no further
// tasks are handed to the pool, so a cancelled request never queues behind a saturated one.
func (s *Service) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	errs := make([]error, len(texts))

	var wg sync.WaitGroup
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			errs[i] = fmt.Errorf("submit embedding task: %w", err)
			break
		}
		wg.Add(1)
		task := func() {
			defer wg.Done()
			res, err := s.embed.Embed(ctx, text)
			if err != nil {
				errs[i] = err
				return
			}
			vectors[i] = res.Embedding
		}
		if err := s.submit(task); err != nil {
			wg.Done()
			errs[i] = fmt.Errorf("submit embedding task: %w", err)
		}
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
	}
	return vectors, nil
}

func (s *Service) submit(task func()) error {
	if s.pool == nil {
		go task()
		return nil
	}
	return s.pool.Submit(task) //nolint:wrapcheck // wrapped by caller
}
