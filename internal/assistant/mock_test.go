// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/pdiddy/research-assistant/pkg/types"
)

func init() {
	// Use a tiny default backoff so retry tests finish quickly.
	defaultBackoffBase = time.Millisecond
}

// completionCall records one Complete invocation for assertions.
type completionCall struct {
	prompt       string
	useRetrieval bool
}

// mockCompleter scripts the model. respond is invoked per call with the
// 1-based call number.
type mockCompleter struct {
	calls   []completionCall
	respond func(call int, prompt string, useRetrieval bool) (string, error)
}

func (m *mockCompleter) Complete(_ context.Context, prompt string, useRetrieval bool) (string, error) {
	m.calls = append(m.calls, completionCall{prompt: prompt, useRetrieval: useRetrieval})
	return m.respond(len(m.calls), prompt, useRetrieval)
}

// callCount returns how many Complete calls were made.
func (m *mockCompleter) callCount() int { return len(m.calls) }

// prompt classification helpers, keyed on distinctive template text.

func isPlannerPrompt(prompt string) bool {
	return strings.Contains(prompt, "expert research planner")
}

func isSynthesisPrompt(prompt string) bool {
	return strings.Contains(prompt, "expert research analyst")
}

// testConfig returns a config with fast retries and no real sleeps.
func testConfig() types.AssistantConfig {
	retry := types.RetryConfig{MaxRetries: 2, BackoffBase: time.Millisecond}
	return types.AssistantConfig{
		Gemini:    types.GeminiConfig{Model: "gemini-2.5-flash"},
		Planner:   types.PlannerConfig{RetryConfig: retry},
		Research:  types.ResearchConfig{RetryConfig: retry, QuestionDelay: time.Millisecond},
		Synthesis: types.SynthesisConfig{RetryConfig: retry},
	}
}

// newTestAssistant wires a mock with the fast test config.
func newTestAssistant(respond func(call int, prompt string, useRetrieval bool) (string, error)) (*Assistant, *mockCompleter) {
	mock := &mockCompleter{respond: respond}
	return New(mock, testConfig(), nil), mock
}

// always returns the same completion for every call.
func always(text string) func(int, string, bool) (string, error) {
	return func(int, string, bool) (string, error) { return text, nil }
}
