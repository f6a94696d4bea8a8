package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery signals a blank user query.
	ErrEmptyQuery = errors.New("empty query")
	// ErrClassification signals an intent classification failure.
	ErrClassification = errors.New("intent classification failed")
	// ErrUnknownIntent signals a classifier label outside the intent vocabulary.
	ErrUnknownIntent = fmt.Errorf("unknown intent label: %w", ErrClassification)
	// ErrSearchProvider signals a search provider failure (transport or non-success status).
	ErrSearchProvider = errors.New("search provider error")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrDimensionMismatch signals vectors of different lengths passed to the similarity scorer.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrGenerationFailed signals a text generation provider failure.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrFallbackFailed signals that the generative fallback produced no answer.
	ErrFallbackFailed = errors.New("fallback answer failed")
	// ErrOutcomesDisabled signals that the outcome journal is not configured.
	ErrOutcomesDisabled = errors.New("outcome journal disabled")
)

// ProviderStatusError is a non-success response from an external provider.
// Message carries the provider's own error text verbatim.
type ProviderStatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderStatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s returned status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Message)
}

func (e *ProviderStatusError) Unwrap() error { return ErrSearchProvider }
