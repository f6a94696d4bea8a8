package haven

import "time"

// Response is the answer to one query.
type Response struct {
	Text string
	// Source is "tavily" for a formatted search listing, "gpt" for a generated answer.
	Source string
	Intent string
}

// Outcome describes how one query was resolved.
type Outcome struct {
	Pipeline     string
	Query        string
	Intent       string
	Path         string // accepted, low_confidence, empty_results, classify_failed, search_failed, error
	UsedFallback bool
	Score        float64
	Error        string
	Duration     time.Duration
	At           time.Time
}
