package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/kailas-cloud/haven/internal/domain"
	"github.com/kailas-cloud/haven/internal/metrics"
)

const providerName = "gemini"

// Config holds Gemini generator settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
}

// Generator produces text with the Gemini API.
type Generator struct {
	client *genai.Client
	cfg    Config
	logger *zap.Logger
}

// NewGenerator creates a Gemini generator. Call Close to release the client.
func NewGenerator(ctx context.Context, cfg Config, logger *zap.Logger) (*Generator, error) {
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Generator{client: client, cfg: cfg, logger: logger}, nil
}

// ModelName returns the Gemini model name.
func (g *Generator) ModelName() string { return g.cfg.Model }

// Generate implements domain.Generator.
func (g *Generator) Generate(ctx context.Context, system, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.cfg.Model)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if g.cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(g.cfg.MaxTokens))
	}
	if g.cfg.Temperature > 0 {
		model.SetTemperature(g.cfg.Temperature)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(providerName, g.cfg.Model, "error").Inc()
		g.logger.Warn("Gemini request failed",
			zap.String("model", g.cfg.Model),
			zap.Error(err),
		)
		return "", fmt.Errorf("gemini generate: %v: %w", err, domain.ErrGenerationFailed)
	}

	text, err := responseText(resp)
	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(providerName, g.cfg.Model, "empty").Inc()
		return "", err
	}
	metrics.GenerationRequestsTotal.WithLabelValues(providerName, g.cfg.Model, "success").Inc()
	return text, nil
}

// Close releases the underlying client.
func (g *Generator) Close() error {
	return g.client.Close()
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates: %w", domain.ErrGenerationFailed)
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("gemini returned no text: %w", domain.ErrGenerationFailed)
	}
	return text, nil
}
