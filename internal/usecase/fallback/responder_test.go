package fallback

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/haven/internal/domain"
	"github.com/kailas-cloud/haven/internal/usecase/format"
)

type mockGenerator struct {
	reply      string
	err        error
	lastSystem string
	lastPrompt string
}

func (m *mockGenerator) Generate(_ context.Context, system, prompt string) (string, error) {
	m.lastSystem = system
	m.lastPrompt = prompt
	return m.reply, m.err
}

func TestAnswer_ReturnsTrimmedText(t *testing.T) {
	gen := &mockGenerator{reply: "  You are not alone.\n"}
	r := New(gen, format.Hotline{}, Written, zap.NewNop())

	got, err := r.Answer(context.Background(), "I need help", domain.IntentGeneralQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "You are not alone." {
		t.Errorf("got %q", got)
	}
	if gen.lastPrompt != "I need help" {
		t.Errorf("expected query as prompt, got %q", gen.lastPrompt)
	}
}

func TestAnswer_PromptIncludesHotline(t *testing.T) {
	gen := &mockGenerator{reply: "ok"}
	r := New(gen, format.Hotline{Name: "County Line", Number: "555-0100"}, Written, zap.NewNop())

	if _, err := r.Answer(context.Background(), "q", domain.IntentCounseling); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gen.lastSystem, "County Line at 555-0100") {
		t.Errorf("system prompt missing hotline: %q", gen.lastSystem)
	}
}

func TestAnswer_DefaultHotline(t *testing.T) {
	gen := &mockGenerator{reply: "ok"}
	r := New(gen, format.Hotline{}, Written, zap.NewNop())

	if _, err := r.Answer(context.Background(), "q", domain.IntentGreeting); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gen.lastSystem, format.DefaultHotline.Number) {
		t.Errorf("system prompt missing default hotline number")
	}
}

func TestAnswer_EmergencyUrges911(t *testing.T) {
	gen := &mockGenerator{reply: "Call 911 now."}
	r := New(gen, format.Hotline{}, Spoken, zap.NewNop())

	if _, err := r.Answer(context.Background(), "he has a knife", domain.IntentEmergency); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gen.lastSystem, "call 911") {
		t.Errorf("emergency prompt should urge 911: %q", gen.lastSystem)
	}
	if !strings.Contains(gen.lastSystem, "read aloud") {
		t.Errorf("spoken voice should request phone-friendly text")
	}
}

func TestAnswer_UnknownIntentTreatedAsGeneral(t *testing.T) {
	gen := &mockGenerator{reply: "ok"}
	r := New(gen, format.Hotline{}, Written, zap.NewNop())

	if _, err := r.Answer(context.Background(), "q", domain.Intent("bogus")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(gen.lastSystem, "911 first") {
		t.Errorf("unknown intent should not get emergency guidance")
	}
}

func TestAnswer_GeneratorError(t *testing.T) {
	genErr := errors.New("upstream 500")
	r := New(&mockGenerator{err: genErr}, format.Hotline{}, Written, zap.NewNop())

	_, err := r.Answer(context.Background(), "q", domain.IntentGeneralQuery)
	if !errors.Is(err, domain.ErrFallbackFailed) {
		t.Errorf("expected ErrFallbackFailed, got %v", err)
	}
	if !errors.Is(err, genErr) {
		t.Errorf("expected wrapped generator error, got %v", err)
	}
}

func TestAnswer_EmptyReply(t *testing.T) {
	r := New(&mockGenerator{reply: " \n "}, format.Hotline{}, Written, zap.NewNop())

	_, err := r.Answer(context.Background(), "q", domain.IntentGeneralQuery)
	if !errors.Is(err, domain.ErrFallbackFailed) {
		t.Errorf("expected ErrFallbackFailed, got %v", err)
	}
}
