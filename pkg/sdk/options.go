package haven

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	embedder  Embedder
	searcher  Searcher
	generator Generator

	searchMinConfidence       float64
	conversationMinConfidence float64
	maxCandidates             int

	hotlineName   string
	hotlineNumber string

	onOutcome  func(Outcome)
	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithEmbedder sets the embedding provider used for relevance scoring. Required.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithSearcher sets the web search provider. Required.
func WithSearcher(s Searcher) Option {
	return optionFunc(func(c *clientConfig) {
		c.searcher = s
	})
}

// WithGenerator sets the language model used for classification and fallback answers. Required.
func WithGenerator(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
	})
}

// WithThresholds sets the minimum relevance for Search and Converse.
// Defaults: 0.5 and 0.7.
func WithThresholds(search, conversation float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.searchMinConfidence = search
		c.conversationMinConfidence = conversation
	})
}

// WithMaxCandidates caps how many search hits are scored per query.
// Default: 5.
func WithMaxCandidates(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxCandidates = n
	})
}

// WithHotline sets the crisis line mentioned in every answer.
// Default: National Domestic Violence Hotline, 1-800-799-7233.
func WithHotline(name, number string) Option {
	return optionFunc(func(c *clientConfig) {
		c.hotlineName = name
		c.hotlineNumber = number
	})
}

// WithOutcomeHandler registers a callback invoked once per resolved query.
// The callback runs synchronously on the calling goroutine.
func WithOutcomeHandler(fn func(Outcome)) Option {
	return optionFunc(func(c *clientConfig) {
		c.onOutcome = fn
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
