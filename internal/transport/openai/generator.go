package openai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/haven/internal/domain"
	"github.com/kailas-cloud/haven/internal/metrics"
)

// Generator produces text with an OpenAI-compatible chat completion API.
type Generator struct {
	client      *openai.Client
	model       string
	provider    string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

// GeneratorOptions tune chat completions. Zero values keep provider defaults.
type GeneratorOptions struct {
	MaxTokens   int
	Temperature float32
}

// NewGenerator creates a chat completion generator.
func NewGenerator(cfg Config, opts GeneratorOptions, logger *zap.Logger) *Generator {
	return &Generator{
		client:      newClient(cfg),
		model:       cfg.Model,
		provider:    cfg.Provider,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		logger:      logger,
	}
}

// ModelName returns the chat model name.
func (g *Generator) ModelName() string { return g.model }

// Generate implements domain.Generator.
func (g *Generator) Generate(ctx context.Context, system, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		g.logger.Warn("Chat completion failed",
			zap.String("provider", g.provider),
			zap.String("model", g.model),
			zap.Error(err),
		)
		return "", apiError("chat", err, domain.ErrGenerationFailed)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "empty").Inc()
		return "", fmt.Errorf("empty chat completion: %w", domain.ErrGenerationFailed)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "success").Inc()
	return resp.Choices[0].Message.Content, nil
}
