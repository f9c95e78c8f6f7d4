// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/internal/gemini"
)

func TestParseQuestionList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "numbered with dots",
			raw:  "1. What is solar energy?\n2. How efficient are panels?\n3. What are the costs?",
			want: []string{"What is solar energy?", "How efficient are panels?", "What are the costs?"},
		},
		{
			name: "numbered with parens",
			raw:  "1) First question here\n2) Second question here",
			want: []string{"First question here", "Second question here"},
		},
		{
			name: "extra blank lines and surrounding text",
			raw:  "Here is the plan:\n\n1. Question one text\n\n\n2. Question two text\n\nLet me know if you need more.",
			want: []string{"Question one text", "Question two text"},
		},
		{
			name: "dash bullets",
			raw:  "- How does it work?\n- Why does it matter?",
			want: []string{"How does it work?", "Why does it matter?"},
		},
		{
			name: "star bullets",
			raw:  "* Alpha question text\n* Beta question text",
			want: []string{"Alpha question text", "Beta question text"},
		},
		{
			name: "bracketed quoted list",
			raw:  `["What drives adoption of solar?", "How do costs compare to grid power?"]`,
			want: []string{"What drives adoption of solar?", "How do costs compare to grid power?"},
		},
		{
			name: "numbered lines with inline brackets",
			raw:  "1. What are [solar] adoption trends?\n2. How do [wind] generation costs compare?\n3. What policies affect renewables?",
			want: []string{"What are [solar] adoption trends?", "How do [wind] generation costs compare?", "What policies affect renewables?"},
		},
		{
			name: "brackets spanning numbered lines",
			raw:  "1. Context [see note\n2. continued] second question here\n3. Third question text",
			want: []string{"Context [see note", "continued] second question here", "Third question text"},
		},
		{
			name: "quoted numbered entries",
			raw:  "1. \"What is the history?\"\n2. 'Where is it used?'",
			want: []string{"What is the history?", "Where is it used?"},
		},
		{
			name: "multi-digit ordinals",
			raw:  "10. Tenth question text\n11. Eleventh question text",
			want: []string{"Tenth question text", "Eleventh question text"},
		},
		{
			name: "malformed numbering is skipped",
			raw:  "1 Missing the dot\nSecond line without marker\n3. Properly numbered question",
			want: []string{"Properly numbered question"},
		},
		{
			name: "ordinal with no text is discarded",
			raw:  "1.\n2. Real question text",
			want: []string{"Real question text"},
		},
		{
			name: "empty input",
			raw:  "",
			want: nil,
		},
		{
			name: "prose only",
			raw:  "I could not come up with a plan for that topic.",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseQuestionList(tt.raw))
		})
	}
}

func TestPlanReturnsOrderedQuestions(t *testing.T) {
	a, mock := newTestAssistant(always("1. First\n2. Second\n3. Third\n4. Fourth"))

	questions, err := a.Plan(context.Background(), "Benefits of solar energy")
	require.NoError(t, err)
	assert.Equal(t, []string{"First", "Second", "Third", "Fourth"}, questions)

	require.Equal(t, 1, mock.callCount())
	assert.True(t, isPlannerPrompt(mock.calls[0].prompt))
	assert.Contains(t, mock.calls[0].prompt, "Benefits of solar energy")
	assert.False(t, mock.calls[0].useRetrieval, "planning must not use retrieval")
}

func TestPlanEmptyTopic(t *testing.T) {
	a, mock := newTestAssistant(always("unused"))

	_, err := a.Plan(context.Background(), "   \t ")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, mock.callCount(), "the model must never be called for an empty topic")
}

func TestPlanUnparseableOutput(t *testing.T) {
	a, _ := newTestAssistant(always("Sorry, I cannot help with that."))

	_, err := a.Plan(context.Background(), "solar")
	require.Error(t, err)
	var pfe *PlanningFailedError
	assert.ErrorAs(t, err, &pfe)
}

func TestPlanTransientExhaustion(t *testing.T) {
	a, mock := newTestAssistant(func(int, string, bool) (string, error) {
		return "", &gemini.TransientError{Message: "rate limited"}
	})

	_, err := a.Plan(context.Background(), "solar")
	require.Error(t, err)
	var pfe *PlanningFailedError
	require.ErrorAs(t, err, &pfe)
	// 1 initial + 2 retries.
	assert.Equal(t, 3, mock.callCount())
}

func TestPlanFatalErrorPropagates(t *testing.T) {
	fatal := &gemini.FatalConfigurationError{Status: 403, Message: "API key not valid"}
	a, mock := newTestAssistant(func(int, string, bool) (string, error) {
		return "", fatal
	})

	_, err := a.Plan(context.Background(), "solar")
	require.Error(t, err)
	var fe *gemini.FatalConfigurationError
	assert.ErrorAs(t, err, &fe)
	assert.Equal(t, 1, mock.callCount(), "fatal errors must not be retried")
}

func TestPlanTruncatesLongPlans(t *testing.T) {
	a, _ := newTestAssistant(always(
		"1. One question\n2. Two question\n3. Three question\n4. Four question\n5. Five question\n6. Six question\n7. Seven question"))

	questions, err := a.Plan(context.Background(), "solar")
	require.NoError(t, err)
	assert.Len(t, questions, 5)
	assert.Equal(t, "Five question", questions[4])
}

func TestPlanRecoversAfterTransientFailures(t *testing.T) {
	a, mock := newTestAssistant(func(call int, _ string, _ bool) (string, error) {
		if call <= 2 {
			return "", &gemini.TransientError{Message: "timeout"}
		}
		return "1. Recovered question", nil
	})

	questions, err := a.Plan(context.Background(), "solar")
	require.NoError(t, err)
	assert.Equal(t, []string{"Recovered question"}, questions)
	assert.Equal(t, 3, mock.callCount())
}

func TestPlanDoesNotWrapContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	a, _ := newTestAssistant(func(int, string, bool) (string, error) {
		cancel()
		return "", &gemini.TransientError{Message: "slow"}
	})

	_, err := a.Plan(ctx, "solar")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
