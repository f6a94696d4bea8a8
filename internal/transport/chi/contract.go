package chi

import (
	"context"

	"github.com/kailas-cloud/haven/internal/domain"
	healthuc "github.com/kailas-cloud/haven/internal/usecase/health"
)

// Resolver runs one query pipeline.
type Resolver interface {
	Resolve(ctx context.Context, query string) (domain.Response, error)
}

// OutcomeReader lists recently resolved queries.
type OutcomeReader interface {
	Recent(ctx context.Context, limit int) ([]domain.Outcome, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
