package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/haven/internal/domain"
)

// DefaultSlowThreshold marks an embedding call as slow in logs.
const DefaultSlowThreshold = 2 * time.Second

// InstrumentedEmbedder wraps an Embedder with latency and failure logging.
// Request metrics are recorded in the transport layer.
type InstrumentedEmbedder struct {
	inner    domain.Embedder
	provider string
	model    string
	slow     time.Duration
	logger   *zap.Logger
}

// NewInstrumentedEmbedder wraps an embedder with observability.
func NewInstrumentedEmbedder(
	inner domain.Embedder, provider, model string, logger *zap.Logger,
) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{
		inner:    inner,
		provider: provider,
		model:    model,
		slow:     DefaultSlowThreshold,
		logger:   logger,
	}
}

// WithSlowThreshold overrides the slow-call threshold.
func (p *InstrumentedEmbedder) WithSlowThreshold(d time.Duration) *InstrumentedEmbedder {
	if d > 0 {
		p.slow = d
	}
	return p
}

// Embed delegates to the inner embedder and logs the call.
func (p *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()
	result, err := p.inner.Embed(ctx, text)
	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	domain.UsageFromContext(ctx).AddTokens(result.TotalTokens)

	fields := []zap.Field{
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("total_tokens", result.TotalTokens),
	}
	if duration >= p.slow {
		p.logger.Warn("Slow embedding request", fields...)
	} else {
		p.logger.Debug("Embedding request completed", fields...)
	}
	return result, nil
}

// HealthCheck forwards to the inner embedder when it supports health checks.
func (p *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := p.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
