// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/research-assistant/internal/gemini"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Synthesize combines the topic and every finding, in plan order, into
// one report prompt and returns the model's report. Retry exhaustion or
// an empty completion is a SynthesisFailedError; unlike a single missing
// finding, a missing report has no degraded substitute. Fatal
// configuration errors propagate untouched.
func (a *Assistant) Synthesize(ctx context.Context, topic string, findings []types.Finding) (string, error) {
	if len(findings) == 0 {
		return "", fmt.Errorf("synthesis: %w: no findings to synthesize", ErrInvalidInput)
	}

	fmt.Fprintf(a.out, "Synthesizer: writing the final report\n")

	prompt, err := renderPrompt(synthesisPromptTmpl, struct {
		Topic string
		Notes string
	}{Topic: topic, Notes: compileNotes(findings)})
	if err != nil {
		return "", err
	}

	report, err := a.callWithRetry(ctx, prompt, false, a.cfg.Synthesis.RetryConfig)
	if err != nil {
		if gemini.IsTransient(err) {
			return "", &SynthesisFailedError{Err: err}
		}
		return "", fmt.Errorf("synthesis: %w", err)
	}

	if strings.TrimSpace(report) == "" {
		return "", &SynthesisFailedError{}
	}
	return report, nil
}
