package haven

import "github.com/kailas-cloud/haven/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmptyQuery       = domain.ErrEmptyQuery
	ErrFallbackFailed   = domain.ErrFallbackFailed
	ErrSearchProvider   = domain.ErrSearchProvider
	ErrGenerationFailed = domain.ErrGenerationFailed
)
