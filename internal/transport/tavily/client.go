package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/haven/internal/domain"
	"github.com/kailas-cloud/haven/internal/metrics"
)

const (
	providerName = "tavily"

	// DefaultBaseURL is the public Tavily API.
	DefaultBaseURL    = "https://api.tavily.com"
	defaultDepth      = "basic"
	defaultMaxResults = 5
	defaultTimeout    = 10 * time.Second

	maxErrorBody = 4 << 10
)

// Config holds Tavily search settings.
type Config struct {
	APIKey         string
	BaseURL        string
	SearchDepth    string
	MaxResults     int
	IncludeDomains []string
	Timeout        time.Duration
}

// Client queries the Tavily search API.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// New creates a Tavily client, filling unset fields with defaults.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.SearchDepth == "" {
		cfg.SearchDepth = defaultDepth
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type searchRequest struct {
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth"`
	MaxResults     int      `json:"max_results"`
	IncludeDomains []string `json:"include_domains,omitempty"`
}

// searchResult fields are pointers: Tavily may omit or null any of them.
type searchResult struct {
	Title   *string  `json:"title"`
	Content *string  `json:"content"`
	URL     *string  `json:"url"`
	Score   *float64 `json:"score"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

// Search implements query.Searcher. An empty result list is returned as-is, without error.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Candidate, error) {
	body, err := json.Marshal(searchRequest{
		Query:          query,
		SearchDepth:    c.cfg.SearchDepth,
		MaxResults:     c.cfg.MaxResults,
		IncludeDomains: c.cfg.IncludeDomains,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(providerName, "error").Inc()
		return nil, fmt.Errorf("tavily request: %w: %w", domain.ErrSearchProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.SearchRequestsTotal.WithLabelValues(providerName, "error").Inc()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &domain.ProviderStatusError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw),
		}
		c.logger.Warn("Tavily returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.String("message", statusErr.Message),
		)
		return nil, statusErr
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(providerName, "error").Inc()
		return nil, fmt.Errorf("decode tavily response: %w: %w", domain.ErrSearchProvider, err)
	}

	status := "success"
	if len(parsed.Results) == 0 {
		status = "empty"
	}
	metrics.SearchRequestsTotal.WithLabelValues(providerName, status).Inc()

	out := make([]domain.Candidate, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		cand := domain.Candidate{Title: r.Title, Content: r.Content, URL: r.URL}
		if r.Score != nil {
			cand.ProviderScore = *r.Score
		}
		out = append(out, cand)
	}
	return out, nil
}

// HealthCheck reports whether the client is configured. Tavily has no free probe endpoint.
func (c *Client) HealthCheck(_ context.Context) error {
	if c.cfg.APIKey == "" {
		return fmt.Errorf("tavily api key not configured: %w", domain.ErrSearchProvider)
	}
	return nil
}

// errorMessage extracts the provider's message from the known error shapes:
// {"detail":{"error":"..."}}, {"detail":"..."}, {"error":"..."}. Falls back to the raw body.
func errorMessage(raw []byte) string {
	var parsed struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if json.Unmarshal(raw, &parsed) == nil {
		if len(parsed.Detail) > 0 {
			var nested struct {
				Error string `json:"error"`
			}
			if json.Unmarshal(parsed.Detail, &nested) == nil && nested.Error != "" {
				return nested.Error
			}
			var s string
			if json.Unmarshal(parsed.Detail, &s) == nil && s != "" {
				return s
			}
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
