package anthropic

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/haven/internal/domain"
	"github.com/kailas-cloud/haven/internal/metrics"
)

const (
	providerName     = "anthropic"
	defaultMaxTokens = 512
)

// Config holds Claude generator settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
}

// Generator produces text with the Anthropic Messages API.
type Generator struct {
	client      *anthropic.Client
	model       string
	maxTokens   int
	temperature *float32
	logger      *zap.Logger
}

// NewGenerator creates a Claude generator.
func NewGenerator(cfg Config, logger *zap.Logger) *Generator {
	var opts []anthropic.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}
	g := &Generator{
		client:    anthropic.NewClient(cfg.APIKey, opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger,
	}
	if g.maxTokens <= 0 {
		g.maxTokens = defaultMaxTokens
	}
	if cfg.Temperature > 0 {
		t := cfg.Temperature
		g.temperature = &t
	}
	return g
}

// ModelName returns the Claude model name.
func (g *Generator) ModelName() string { return g.model }

// Generate implements domain.Generator.
func (g *Generator) Generate(ctx context.Context, system, prompt string) (string, error) {
	resp, err := g.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:  anthropic.Model(g.model),
		System: system,
		Messages: []anthropic.Message{
			{
				Role:    anthropic.RoleUser,
				Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(prompt)},
			},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(providerName, g.model, "error").Inc()
		g.logger.Warn("Claude request failed",
			zap.String("model", g.model),
			zap.Error(err),
		)
		return "", fmt.Errorf("claude messages: %v: %w", err, domain.ErrGenerationFailed)
	}

	var b strings.Builder
	for _, c := range resp.Content {
		if c.Text != nil {
			b.WriteString(*c.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		metrics.GenerationRequestsTotal.WithLabelValues(providerName, g.model, "empty").Inc()
		return "", fmt.Errorf("claude returned no text: %w", domain.ErrGenerationFailed)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(providerName, g.model, "success").Inc()
	return text, nil
}
