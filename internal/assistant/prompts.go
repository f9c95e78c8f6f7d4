// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assistant

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// plannerPromptTmpl asks the model to break a topic into researchable
// questions. The numbered-list output format is what ParseQuestionList
// expects.
var plannerPromptTmpl = template.Must(template.New("planner").Parse(`You are an expert research planner. Break down the following topic into 3-5 specific, answerable questions that together give comprehensive coverage of the subject.

TOPIC: "{{.Topic}}"

Guidelines:
- Each question must be specific and focused
- Questions should cover different aspects of the topic
- Questions must be researchable and answerable

Respond with a numbered list only, one question per line, like:
1. First question
2. Second question
3. Third question
`))

// researchPromptTmpl asks the model to answer one question using its
// search capability.
var researchPromptTmpl = template.Must(template.New("research").Parse(`Search the web for current, accurate information and provide a comprehensive, detailed answer to the following question. Use the most recent and reliable sources available.

Question: {{.Question}}

Provide a thorough response with:
- Key facts and information
- Relevant statistics or data points
- Important context or background
- Current developments or trends
`))

// researchFallbackPromptTmpl answers a question from the model's own
// knowledge, used when search grounding is unavailable.
var researchFallbackPromptTmpl = template.Must(template.New("research-fallback").Parse(`Provide a comprehensive and detailed answer to the following question using your own knowledge. Include relevant facts, examples, and context.

Question: {{.Question}}

Provide a thorough response with:
- Key facts and concepts
- Current trends and developments
- Expert insights and analysis
- Real-world examples
`))

// synthesisPromptTmpl combines all findings into one report request.
var synthesisPromptTmpl = template.Must(template.New("synthesis").Parse(`You are an expert research analyst and technical writer. Synthesize the research notes below into a comprehensive, well-structured Markdown report on the topic: "{{.Topic}}".

Report requirements:
1. Start with an introduction that sets the context
2. Organize findings into logical sections with clear headings, one per research theme
3. Synthesize information from multiple notes into coherent insights
4. End with a conclusion that summarizes the key findings
5. Use only the information provided in the research notes
6. Write in a clear, professional tone

## Research Notes ##
{{.Notes}}
`))

// renderPrompt executes tmpl with data and returns the prompt string.
func renderPrompt(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// compileNotes formats findings as numbered note blocks for the
// synthesis prompt, preserving plan order.
func compileNotes(findings []types.Finding) string {
	var b strings.Builder
	for i, f := range findings {
		fmt.Fprintf(&b, "### Research Question %d: %s\n\n", i+1, f.Question)
		fmt.Fprintf(&b, "**Research Findings:**\n%s\n\n---\n\n", f.Text)
	}
	return b.String()
}
