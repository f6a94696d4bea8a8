package outcome

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/haven/internal/domain"
)

// DefaultKeep caps the journal when no limit is configured.
const DefaultKeep = 1000

var journalKey = domain.KeyPrefix + "outcomes"

// store is the consumer interface for the outcome journal.
type store interface {
	PushCapped(ctx context.Context, key string, value []byte, keep int) error
	Range(ctx context.Context, key string, start, stop int64) ([][]byte, error)
}

// Repo keeps the newest outcomes in a capped list, newest first.
type Repo struct {
	store  store
	keep   int
	logger *zap.Logger
}

// New creates an outcome journal. keep <= 0 uses DefaultKeep.
func New(s store, keep int, logger *zap.Logger) *Repo {
	if keep <= 0 {
		keep = DefaultKeep
	}
	return &Repo{store: s, keep: keep, logger: logger}
}

// Append prepends an outcome and trims the journal.
func (r *Repo) Append(ctx context.Context, o domain.Outcome) error {
	data, err := json.Marshal(toRecord(o))
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}
	if err := r.store.PushCapped(ctx, journalKey, data, r.keep); err != nil {
		return fmt.Errorf("append outcome: %w", err)
	}
	return nil
}

// Recent returns up to limit outcomes, newest first. Undecodable entries are skipped.
func (r *Repo) Recent(ctx context.Context, limit int) ([]domain.Outcome, error) {
	if limit <= 0 {
		return nil, nil
	}
	if limit > r.keep {
		limit = r.keep
	}
	raw, err := r.store.Range(ctx, journalKey, 0, int64(limit-1))
	if err != nil {
		return nil, fmt.Errorf("read outcomes: %w", err)
	}

	out := make([]domain.Outcome, 0, len(raw))
	for i, b := range raw {
		var rec record
		if err := json.Unmarshal(b, &rec); err != nil {
			r.logger.Warn("Skipping undecodable outcome", zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, rec.toDomain())
	}
	return out, nil
}
