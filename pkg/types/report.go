// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Finding is the result of researching one question. Text is empty or a
// placeholder marker when research for the question failed.
type Finding struct {
	// Question is the research question, verbatim from the plan.
	Question string `json:"question" yaml:"question"`

	// Text is the research answer for the question.
	Text string `json:"text" yaml:"text"`

	// Placeholder marks a finding whose research failed after retries.
	Placeholder bool `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// RunRecord is one completed research run as persisted in the archive.
type RunRecord struct {
	// ID is the archive row identifier, assigned on save.
	ID int64 `json:"id" yaml:"id"`

	// Topic is the research topic supplied by the user.
	Topic string `json:"topic" yaml:"topic"`

	// Model is the Gemini model that produced the run.
	Model string `json:"model" yaml:"model"`

	// CreatedAt is when the run completed.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// Findings lists the per-question results in plan order.
	Findings []Finding `json:"findings" yaml:"findings"`

	// Report is the final synthesized report, markdown.
	Report string `json:"report" yaml:"report"`
}
