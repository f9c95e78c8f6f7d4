// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/research-assistant/internal/gemini"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// PlaceholderText fills a finding whose research failed after retries,
// so the report degrades gracefully instead of aborting.
const PlaceholderText = "Research unavailable for this question."

const defaultQuestionDelay = time.Second

// Research answers one question with search retrieval enabled. Transient
// failures are retried per the research retry policy; on exhaustion (or
// an empty completion) a placeholder finding is returned with a nil
// error. Fatal configuration errors propagate and abort the run.
func (a *Assistant) Research(ctx context.Context, question string) (types.Finding, error) {
	if strings.TrimSpace(question) == "" {
		return types.Finding{}, fmt.Errorf("research: %w: question is empty", ErrInvalidInput)
	}

	prompt, err := renderPrompt(researchPromptTmpl, struct{ Question string }{Question: question})
	if err != nil {
		return types.Finding{}, err
	}

	text, err := a.callWithRetry(ctx, prompt, true, a.cfg.Research.RetryConfig)
	if err != nil {
		if gemini.IsTransient(err) {
			return placeholderFinding(question), nil
		}
		if a.cfg.Research.FallbackWithoutSearch && gemini.IsSearchUnsupported(err) {
			return a.researchWithoutSearch(ctx, question)
		}
		return types.Finding{}, fmt.Errorf("research %q: %w", question, err)
	}

	if strings.TrimSpace(text) == "" {
		return placeholderFinding(question), nil
	}
	return types.Finding{Question: question, Text: text}, nil
}

// researchWithoutSearch answers from the model's own knowledge when the
// selected model rejects search grounding.
func (a *Assistant) researchWithoutSearch(ctx context.Context, question string) (types.Finding, error) {
	fmt.Fprintf(a.out, "  search grounding unavailable, answering without retrieval\n")

	prompt, err := renderPrompt(researchFallbackPromptTmpl, struct{ Question string }{Question: question})
	if err != nil {
		return types.Finding{}, err
	}

	text, err := a.callWithRetry(ctx, prompt, false, a.cfg.Research.RetryConfig)
	if err != nil {
		if gemini.IsTransient(err) {
			return placeholderFinding(question), nil
		}
		return types.Finding{}, fmt.Errorf("research %q: %w", question, err)
	}
	if strings.TrimSpace(text) == "" {
		return placeholderFinding(question), nil
	}
	return types.Finding{Question: question, Text: text}, nil
}

// ResearchAll answers every question strictly in order, one finding per
// question. Individual failures degrade into placeholders; only a fatal
// error (or cancellation) stops the loop. A configurable delay between
// questions throttles calls against the provider rate limit.
func (a *Assistant) ResearchAll(ctx context.Context, questions []string) ([]types.Finding, error) {
	delay := a.cfg.Research.QuestionDelay
	if delay < 0 {
		delay = 0
	} else if delay == 0 {
		delay = defaultQuestionDelay
	}

	findings := make([]types.Finding, 0, len(questions))
	for i, q := range questions {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		fmt.Fprintf(a.out, "[%d/%d] researching: %s\n", i+1, len(questions), q)

		f, err := a.Research(ctx, q)
		if err != nil {
			return nil, err
		}
		if f.Placeholder {
			fmt.Fprintf(a.out, "  question %d: no data found\n", i+1)
		} else {
			fmt.Fprintf(a.out, "  question %d: done\n", i+1)
		}
		findings = append(findings, f)
	}
	return findings, nil
}

func placeholderFinding(question string) types.Finding {
	return types.Finding{Question: question, Text: PlaceholderText, Placeholder: true}
}
