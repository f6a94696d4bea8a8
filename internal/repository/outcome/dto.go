package outcome

import (
	"time"

	"github.com/kailas-cloud/haven/internal/domain"
)

// record is the stored JSON form of an outcome.
type record struct {
	ID           string  `json:"id"`
	Pipeline     string  `json:"pipeline"`
	Query        string  `json:"query"`
	Intent       string  `json:"intent"`
	Path         string  `json:"path"`
	UsedFallback bool    `json:"used_fallback"`
	Score        float64 `json:"score"`
	Error        string  `json:"error,omitempty"`
	DurationMS   int64   `json:"duration_ms"`
	At           int64   `json:"at"`
}

func toRecord(o domain.Outcome) record {
	return record{
		ID:           o.ID,
		Pipeline:     o.Pipeline,
		Query:        o.Query,
		Intent:       string(o.Intent),
		Path:         string(o.Path),
		UsedFallback: o.UsedFallback,
		Score:        o.Score,
		Error:        o.Error,
		DurationMS:   o.Duration.Milliseconds(),
		At:           o.At.UnixMilli(),
	}
}

func (r record) toDomain() domain.Outcome {
	return domain.Outcome{
		ID:           r.ID,
		Pipeline:     r.Pipeline,
		Query:        r.Query,
		Intent:       domain.Intent(r.Intent),
		Path:         domain.Path(r.Path),
		UsedFallback: r.UsedFallback,
		Score:        r.Score,
		Error:        r.Error,
		Duration:     time.Duration(r.DurationMS) * time.Millisecond,
		At:           time.UnixMilli(r.At).UTC(),
	}
}
