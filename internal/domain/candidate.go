package domain

// Candidate is one search hit as returned by the search provider.
// Title, Content and URL are optional: providers may omit any of them.
type Candidate struct {
	Title   *string
	Content *string
	URL     *string
	// ProviderScore is the provider's own ranking score, kept for diagnostics only.
	ProviderScore float64
}

// NewCandidate builds a candidate with all text fields present.
func NewCandidate(title, content, url string) Candidate {
	return Candidate{Title: &title, Content: &content, URL: &url}
}

// TitleText returns the title or "" when absent.
func (c Candidate) TitleText() string { return deref(c.Title) }

// ContentText returns the content or "" when absent.
func (c Candidate) ContentText() string { return deref(c.Content) }

// URLText returns the URL or "" when absent.
func (c Candidate) URLText() string { return deref(c.URL) }

// EmbeddingText is the exact text sent to the embedding provider for relevance scoring:
// title, one space, summary.
func (c Candidate) EmbeddingText() string {
	return c.TitleText() + " " + c.ContentText()
}

// ScoredResult is a candidate with its semantic relevance score.
// Scored is false when the reranker passed the candidate through without scoring.
type ScoredResult struct {
	Candidate
	RelevanceScore float64
	Scored         bool
}

// Unscored wraps candidates as-is, without relevance data.
func Unscored(candidates []Candidate) []ScoredResult {
	out := make([]ScoredResult, len(candidates))
	for i, c := range candidates {
		out[i] = ScoredResult{Candidate: c}
	}
	return out
}

// TopScore returns the relevance score of the first element, or 0 for an empty
// or unscored list.
func TopScore(results []ScoredResult) float64 {
	if len(results) == 0 || !results[0].Scored {
		return 0
	}
	return results[0].RelevanceScore
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
