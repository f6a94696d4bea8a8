package fallback

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/haven/internal/domain"
	"github.com/kailas-cloud/haven/internal/usecase/format"
)

// Voice selects the length and register of generated answers.
type Voice int

// Supported voices.
const (
	Written Voice = iota
	Spoken
)

var intentGuidance = map[domain.Intent]string{
	domain.IntentEmergency: "The caller may be in immediate danger. Tell them to call 911 first, " +
		"then give the hotline number. Keep it to two sentences.",
	domain.IntentFindShelter: "Explain that the hotline can connect them to a nearby shelter " +
		"and suggest sharing a city or zip code.",
	domain.IntentSafetyPlan:      "Offer a few concrete safety planning steps and mention the hotline can help build a full plan.",
	domain.IntentLegalHelp:       "Give general information about protective orders and suggest contacting a legal aid office.",
	domain.IntentCounseling:      "Describe how to reach counseling or advocacy services.",
	domain.IntentSupportGroup:    "Describe how to find support groups, including online options.",
	domain.IntentGreeting:        "Greet the caller warmly and ask how you can help.",
	domain.IntentOffTopic:        "Gently explain that you can only help with domestic violence support.",
	domain.IntentEndConversation: "Close the conversation kindly and remind them the hotline is available 24/7.",
}

// Responder answers queries generatively when search results are unusable.
type Responder struct {
	gen     Generator
	hotline format.Hotline
	voice   Voice
	logger  *zap.Logger
}

// New creates a fallback responder. A zero hotline falls back to format.DefaultHotline.
func New(gen Generator, hotline format.Hotline, voice Voice, logger *zap.Logger) *Responder {
	if hotline.Number == "" {
		hotline = format.DefaultHotline
	}
	if hotline.Name == "" {
		hotline.Name = format.DefaultHotline.Name
	}
	return &Responder{gen: gen, hotline: hotline, voice: voice, logger: logger}
}

// Answer generates a conversational reply for the query. An unknown intent is answered as general_query.
func (r *Responder) Answer(ctx context.Context, query string, in domain.Intent) (string, error) {
	if !in.Valid() {
		in = domain.IntentGeneralQuery
	}

	text, err := r.gen.Generate(ctx, r.systemPrompt(in), query)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrFallbackFailed, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty answer", domain.ErrFallbackFailed)
	}

	r.logger.Debug("Fallback answer generated",
		zap.String("intent", string(in)),
		zap.Int("length", len(text)),
	)
	return text, nil
}

func (r *Responder) systemPrompt(in domain.Intent) string {
	var b strings.Builder
	b.WriteString("You are a compassionate, trauma-informed assistant for people affected by domestic violence.\n")
	b.WriteString("Never blame the person. Never ask for details they have not offered.\n")
	fmt.Fprintf(&b, "Always mention the %s at %s, available 24/7.\n", r.hotline.Name, r.hotline.Number)
	switch r.voice {
	case Spoken:
		b.WriteString("Your answer is read aloud on a phone call: use short plain sentences, no lists, no links.\n")
	default:
		b.WriteString("Keep the answer under 150 words.\n")
	}
	if g, ok := intentGuidance[in]; ok {
		b.WriteString(g)
		b.WriteString("\n")
	}
	return b.String()
}
