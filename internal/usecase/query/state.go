package query

import (
	"time"

	"github.com/kailas-cloud/haven/internal/domain"
)

type stage int

const (
	stageClassify stage = iota
	stageRewrite
	stageSearch
	stageRerank
	stageGate
	stageAccept
	stageFallback
	stageDone
)

var stageNames = [...]string{
	stageClassify: "classify",
	stageRewrite:  "rewrite",
	stageSearch:   "search",
	stageRerank:   "rerank",
	stageGate:     "gate",
	stageAccept:   "accept",
	stageFallback: "fallback",
	stageDone:     "done",
}

func (s stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// run carries the transient values of one query through the stages.
type run struct {
	query     string
	rewritten string
	intent    domain.Intent
	started   time.Time

	candidates []domain.Candidate
	results    []domain.ScoredResult
	score      float64

	path   domain.Path
	errMsg string

	text        string
	source      domain.Source
	fallbackErr error
}

// fail records the error that routed the query to the fallback.
func (r *run) fail(st stage, err error) {
	r.errMsg = err.Error()
	r.score = 0
	switch st {
	case stageClassify:
		r.intent = domain.IntentGeneralQuery
		r.path = domain.PathClassifyFailed
	case stageSearch:
		r.path = domain.PathSearchFailed
	default:
		r.path = domain.PathError
	}
}

func (r *run) outcome(pipeline string, now time.Time) domain.Outcome {
	out := domain.Outcome{
		Pipeline:     pipeline,
		Query:        r.query,
		Intent:       r.intent,
		Path:         r.path,
		UsedFallback: r.source != domain.SourceSearch,
		Score:        r.score,
		Error:        r.errMsg,
		Duration:     now.Sub(r.started),
		At:           r.started,
	}
	if out.Error == "" && r.fallbackErr != nil {
		out.Error = r.fallbackErr.Error()
	}
	return out
}
