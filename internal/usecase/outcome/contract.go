package outcome

import (
	"context"

	"github.com/kailas-cloud/haven/internal/domain"
)

// Journal persists a capped history of outcomes.
type Journal interface {
	Append(ctx context.Context, o domain.Outcome) error
	Recent(ctx context.Context, limit int) ([]domain.Outcome, error)
}
