// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assistant

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks bad caller input: an empty topic or question.
// Never retried, surfaced immediately.
var ErrInvalidInput = errors.New("invalid input")

// PlanningFailedError means the planning stage produced no usable
// questions, either because the model's output could not be parsed or
// because retries were exhausted.
type PlanningFailedError struct {
	// Err is the underlying failure, nil when the output parsed to
	// zero questions.
	Err error
}

func (e *PlanningFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("planning failed: %v", e.Err)
	}
	return "planning failed: no research questions in model output"
}

func (e *PlanningFailedError) Unwrap() error { return e.Err }

// SynthesisFailedError means the synthesis stage could not produce a
// report after exhausting retries. A missing report has no degraded
// substitute, so this aborts the run.
type SynthesisFailedError struct {
	Err error
}

func (e *SynthesisFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("synthesis failed: %v", e.Err)
	}
	return "synthesis failed: model returned an empty report"
}

func (e *SynthesisFailedError) Unwrap() error { return e.Err }

// InsufficientDataError means every research question failed; a report
// synthesized from zero real findings is not useful.
type InsufficientDataError struct {
	// Questions is how many questions were attempted.
	Questions int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("research produced no usable findings for any of %d questions", e.Questions)
}
