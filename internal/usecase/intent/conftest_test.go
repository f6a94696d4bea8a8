package intent

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

type mockGenerator struct {
	reply      string
	err        error
	calls      int
	lastSystem string
	lastPrompt string
}

func (m *mockGenerator) Generate(_ context.Context, system, prompt string) (string, error) {
	m.calls++
	m.lastSystem = system
	m.lastPrompt = prompt
	return m.reply, m.err
}

func newTestResolver(t *testing.T, gen *mockGenerator) *Resolver {
	t.Helper()
	return New(gen, zap.NewNop())
}
