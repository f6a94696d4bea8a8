package outcome

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/haven/internal/domain"
	"github.com/kailas-cloud/haven/internal/metrics"
)

const (
	// DefaultRecentLimit is used when the caller asks for a non-positive number of outcomes.
	DefaultRecentLimit = 20
	// MaxRecentLimit caps a single Recent call.
	MaxRecentLimit = 500

	journalTimeout = 2 * time.Second
)

// Recorder fans each outcome out to the canonical log line, Prometheus and an optional journal.
// Sink failures are logged and never returned.
type Recorder struct {
	journal Journal
	logger  *zap.Logger
}

// New creates an outcome recorder. journal may be nil.
func New(journal Journal, logger *zap.Logger) *Recorder {
	return &Recorder{journal: journal, logger: logger}
}

// Record logs the outcome of one query.
func (r *Recorder) Record(ctx context.Context, o domain.Outcome) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	source := domain.SourceSearch
	if o.UsedFallback {
		source = domain.SourceFallback
	}

	fields := []zap.Field{
		zap.String("query_id", o.ID),
		zap.String("pipeline", o.Pipeline),
		zap.String("intent", string(o.Intent)),
		zap.String("path", string(o.Path)),
		zap.String("source", string(source)),
		zap.Bool("used_fallback", o.UsedFallback),
		zap.Float64("score", o.Score),
		zap.Duration("duration", o.Duration),
	}
	if o.Error != "" {
		fields = append(fields, zap.String("error", o.Error))
		r.logger.Warn("query_resolved", fields...)
	} else {
		r.logger.Info("query_resolved", fields...)
	}

	metrics.QueriesTotal.WithLabelValues(o.Pipeline, string(source), string(o.Path)).Inc()
	metrics.QueryTopScore.WithLabelValues(o.Pipeline).Observe(o.Score)
	metrics.QueryDuration.WithLabelValues(o.Pipeline, string(source)).Observe(o.Duration.Seconds())

	if r.journal == nil {
		return
	}
	jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	defer cancel()
	if err := r.journal.Append(jctx, o); err != nil {
		r.logger.Warn("Failed to journal outcome",
			zap.String("query_id", o.ID),
			zap.Error(err),
		)
	}
}

// Recent returns up to limit of the newest journaled outcomes, newest first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]domain.Outcome, error) {
	if r.journal == nil {
		return nil, domain.ErrOutcomesDisabled
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	out, err := r.journal.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent outcomes: %w", err)
	}
	return out, nil
}
