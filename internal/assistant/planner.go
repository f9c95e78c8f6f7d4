// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assistant

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/research-assistant/internal/gemini"
)

const defaultMaxQuestions = 5

// ordinalPattern matches a leading ordinal marker: digits followed by
// "." or ")".
var ordinalPattern = regexp.MustCompile(`^\d+[.)]\s*`)

// bracketListPattern matches the first bracketed list in the output,
// e.g. ["question 1", "question 2"]. Non-greedy, so inline brackets
// inside a numbered plan match only their own short span instead of
// swallowing the lines between them.
var bracketListPattern = regexp.MustCompile(`(?s)\[(.*?)\]`)

// Plan breaks a topic into an ordered list of researchable questions.
// The topic must be non-empty after trimming; a plan that parses to zero
// questions is a PlanningFailedError, as is retry exhaustion. Fatal
// configuration errors propagate untouched.
func (a *Assistant) Plan(ctx context.Context, topic string) ([]string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("planning: %w: topic is empty", ErrInvalidInput)
	}

	fmt.Fprintf(a.out, "Planner: creating a research plan for %q\n", topic)

	prompt, err := renderPrompt(plannerPromptTmpl, struct{ Topic string }{Topic: topic})
	if err != nil {
		return nil, err
	}

	raw, err := a.callWithRetry(ctx, prompt, false, a.cfg.Planner.RetryConfig)
	if err != nil {
		if gemini.IsTransient(err) {
			return nil, &PlanningFailedError{Err: err}
		}
		return nil, fmt.Errorf("planning: %w", err)
	}

	questions := ParseQuestionList(raw)
	if len(questions) == 0 {
		return nil, &PlanningFailedError{}
	}

	maxQuestions := a.cfg.Planner.MaxQuestions
	if maxQuestions <= 0 {
		maxQuestions = defaultMaxQuestions
	}
	if len(questions) > maxQuestions {
		questions = questions[:maxQuestions]
	}

	fmt.Fprintf(a.out, "Planner: research plan has %d questions:\n", len(questions))
	for i, q := range questions {
		fmt.Fprintf(a.out, "  %d. %s\n", i+1, q)
	}

	return questions, nil
}

// ParseQuestionList extracts an ordered list of questions from raw model
// output. It accepts a bracketed quoted list (["q1", "q2"]), numbered
// lines (1. or 2)), and - or * bullets. Ordinal markers, bullets,
// surrounding quotes, and whitespace are stripped; blank results are
// discarded. Lines in none of those forms are ignored.
func ParseQuestionList(raw string) []string {
	if qs := parseBracketList(raw); len(qs) > 0 {
		return qs
	}

	var questions []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var q string
		switch {
		case ordinalPattern.MatchString(line):
			q = ordinalPattern.ReplaceAllString(line, "")
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			q = line[2:]
		default:
			continue
		}

		q = strings.Trim(strings.TrimSpace(q), `"'`)
		if q != "" {
			questions = append(questions, q)
		}
	}
	return questions
}

// parseBracketList handles the model answering with a quoted list
// despite the numbered-list instruction. Entries shorter than a short
// phrase are discarded as list-syntax debris; an entry spanning lines
// means the brackets belong to prose, not a list, so line parsing
// takes over.
func parseBracketList(raw string) []string {
	m := bracketListPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}

	var questions []string
	for _, entry := range strings.Split(m[1], ",") {
		entry = strings.Trim(strings.TrimSpace(entry), `"'`)
		if strings.Contains(entry, "\n") {
			return nil
		}
		if len(entry) > 10 {
			questions = append(questions, entry)
		}
	}
	return questions
}
