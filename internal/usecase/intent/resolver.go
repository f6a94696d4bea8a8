package intent

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/kailas-cloud/haven/internal/domain"
)

// emergencyPhrases classify as emergency without a model round-trip.
// They match whole words only, so "skill me" never matches "kill me".
var emergencyPhrases = splitPhrases(
	"in danger",
	"being hurt",
	"hurting me",
	"going to kill",
	"kill me",
	"call 911",
	"call the police",
	"he has a gun",
	"she has a gun",
)

// negations cancel a phrase match when they appear within negationWindow words before it
// in the same clause.
// A cancelled match falls through to the classifier rather than being dismissed.
var negations = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "isn't": {}, "isnt": {}, "aren't": {}, "arent": {},
	"wasn't": {}, "wasnt": {}, "don't": {}, "dont": {}, "didn't": {}, "didnt": {},
	"won't": {}, "wont": {}, "nobody": {},
}

const negationWindow = 3

var labelDescriptions = map[domain.Intent]string{
	domain.IntentEmergency:       "the caller is in immediate danger or describes violence happening now",
	domain.IntentFindShelter:     "looking for a shelter, safe house or emergency housing",
	domain.IntentSafetyPlan:      "wants help making a safety plan or leaving safely",
	domain.IntentLegalHelp:       "restraining orders, custody, immigration or other legal help",
	domain.IntentCounseling:      "counseling, therapy or advocacy services",
	domain.IntentSupportGroup:    "support groups or peer support",
	domain.IntentGeneralQuery:    "any other question about domestic violence or abuse",
	domain.IntentGreeting:        "a greeting or small talk with no request",
	domain.IntentOffTopic:        "unrelated to domestic violence support",
	domain.IntentEndConversation: "wants to end the conversation",
}

// Resolver classifies queries into the intent vocabulary and rewrites them for search.
type Resolver struct {
	gen    Generator
	system string
	logger *zap.Logger
}

// New creates an intent resolver backed by a text generator.
func New(gen Generator, logger *zap.Logger) *Resolver {
	return &Resolver{gen: gen, system: classificationPrompt(), logger: logger}
}

// Classify returns the intent of a raw user query.
// Generator failures and labels outside the vocabulary wrap domain.ErrClassification.
func (r *Resolver) Classify(ctx context.Context, query string) (domain.Intent, error) {
	if isEmergency(query) {
		r.logger.Debug("Emergency phrase matched, skipping classifier")
		return domain.IntentEmergency, nil
	}

	raw, err := r.gen.Generate(ctx, r.system, query)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrClassification, err)
	}

	in, ok := parseLabel(raw)
	if !ok {
		r.logger.Warn("Classifier returned unknown label", zap.String("label", raw))
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownIntent, raw)
	}
	return in, nil
}

// Rewrite derives the search query from the raw query and its intent. Pure and deterministic.
func (r *Resolver) Rewrite(query string, in domain.Intent) string {
	return Rewrite(query, in)
}

func isEmergency(query string) bool {
	clauses := strings.FieldsFunc(query, func(r rune) bool {
		return strings.ContainsRune(",.;:!?\n", r)
	})
	for _, clause := range clauses {
		words := queryWords(clause)
		for _, phrase := range emergencyPhrases {
			for i := 0; i+len(phrase) <= len(words); i++ {
				if wordsEqual(words[i:i+len(phrase)], phrase) && !negated(words, i) {
					return true
				}
			}
		}
	}
	return false
}

// queryWords lowercases and splits on anything other than letters, digits and apostrophes.
func queryWords(s string) []string {
	s = strings.ReplaceAll(strings.ToLower(s), "\u2019", "'")
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func splitPhrases(phrases ...string) [][]string {
	out := make([][]string, 0, len(phrases))
	for _, p := range phrases {
		out = append(out, queryWords(p))
	}
	return out
}

func wordsEqual(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func negated(words []string, start int) bool {
	for i := max(0, start-negationWindow); i < start; i++ {
		if _, ok := negations[words[i]]; ok {
			return true
		}
	}
	return false
}

// parseLabel accepts the whole reply as a label, or the first vocabulary token within it.
func parseLabel(raw string) (domain.Intent, bool) {
	if in, ok := domain.ParseIntent(strings.Trim(raw, " \t\n.\"'`")); ok {
		return in, true
	}
	tokens := strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '_'
	})
	for _, tok := range tokens {
		if in, ok := domain.ParseIntent(tok); ok {
			return in, true
		}
	}
	return "", false
}

func classificationPrompt() string {
	var b strings.Builder
	b.WriteString("You classify messages sent to a domestic violence support line.\n")
	b.WriteString("Reply with exactly one label from this list and nothing else:\n")
	for _, in := range domain.Intents() {
		fmt.Fprintf(&b, "- %s: %s\n", in, labelDescriptions[in])
	}
	b.WriteString("If several labels apply, choose the one listed first.")
	return b.String()
}
