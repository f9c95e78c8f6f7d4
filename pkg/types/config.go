// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// GeminiConfig holds settings for the Gemini API client.
type GeminiConfig struct {
	// Model is the Gemini model identifier (e.g. "gemini-2.5-flash").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the Gemini API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Timeout is the per-call HTTP request timeout (default 120s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// RetryConfig holds the retry policy shared by stages that call the model.
type RetryConfig struct {
	// MaxRetries is the number of retry attempts after a transient
	// failure (default 2). The first call is not a retry. A negative
	// value disables retries entirely; zero selects the default.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// BackoffBase is the base delay between attempts. The wait before
	// retry n is n * BackoffBase (default 1s).
	BackoffBase time.Duration `json:"backoff_base" yaml:"backoff_base"`
}

// PlannerConfig holds settings for the planning stage.
type PlannerConfig struct {
	RetryConfig `yaml:",inline"`

	// MaxQuestions caps the research plan length (default 5). Plans
	// longer than the cap are truncated, not rejected.
	MaxQuestions int `json:"max_questions" yaml:"max_questions"`
}

// ResearchConfig holds settings for the per-question research stage.
type ResearchConfig struct {
	RetryConfig `yaml:",inline"`

	// QuestionDelay is the pause between consecutive questions, a
	// courtesy throttle for the provider rate limit (default 1s). A
	// negative value disables the pause; zero selects the default.
	QuestionDelay time.Duration `json:"question_delay" yaml:"question_delay"`

	// FallbackWithoutSearch retries a question once without the search
	// tool when the model rejects search grounding. Off by default.
	FallbackWithoutSearch bool `json:"fallback_without_search" yaml:"fallback_without_search"`
}

// SynthesisConfig holds settings for the report synthesis stage.
type SynthesisConfig struct {
	RetryConfig `yaml:",inline"`
}

// ArchiveConfig holds settings for the local run archive.
type ArchiveConfig struct {
	// ArchiveDir is the directory holding the SQLite archive database
	// (default "archive").
	ArchiveDir string `json:"archive_dir" yaml:"archive_dir"`

	// OutputDir is the directory for saved report files (default
	// "output/reports").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// MaxResults is the default maximum number of search results
	// (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// AssistantConfig groups all stage configurations for one research run.
type AssistantConfig struct {
	Gemini    GeminiConfig    `json:"gemini" yaml:"gemini"`
	Planner   PlannerConfig   `json:"planner" yaml:"planner"`
	Research  ResearchConfig  `json:"research" yaml:"research"`
	Synthesis SynthesisConfig `json:"synthesis" yaml:"synthesis"`
	Archive   ArchiveConfig   `json:"archive" yaml:"archive"`
}
