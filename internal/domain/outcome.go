package domain

import "time"

// Source names where a response came from.
type Source string

const (
	// SourceSearch is a formatted listing of search results.
	SourceSearch Source = "tavily"
	// SourceFallback is a generated conversational answer.
	SourceFallback Source = "gpt"
)

// Path is the decision path a query took through the pipeline.
type Path string

// Decision paths.
const (
	PathAccepted       Path = "accepted"
	PathLowConfidence  Path = "low_confidence"
	PathEmptyResults   Path = "empty_results"
	PathClassifyFailed Path = "classify_failed"
	PathSearchFailed   Path = "search_failed"
	PathError          Path = "error"
)

// Response is what the pipeline returns to its caller.
type Response struct {
	Text   string
	Source Source
	Intent Intent
}

// Outcome is the terminal record of one resolved query.
// Error is non-empty only when an error routed the query to the fallback.
type Outcome struct {
	ID           string        `json:"id"`
	Pipeline     string        `json:"pipeline"`
	Query        string        `json:"query"`
	Intent       Intent        `json:"intent"`
	Path         Path          `json:"path"`
	UsedFallback bool          `json:"used_fallback"`
	Score        float64       `json:"score"`
	Error        string        `json:"error,omitempty"`
	Duration     time.Duration `json:"duration_ns"`
	At           time.Time     `json:"at"`
}
