// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assistant sequences the research pipeline: plan questions for
// a topic, research each question with retrieval, synthesize one report.
// Data flows strictly forward; no stage reads back from a later one.
package assistant

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// Completer abstracts the Gemini client so tests can supply a mock.
type Completer interface {
	Complete(ctx context.Context, prompt string, useRetrieval bool) (string, error)
}

// State is the orchestrator's position in a research run.
type State string

const (
	StateIdle         State = "idle"
	StatePlanning     State = "planning"
	StateResearching  State = "researching"
	StateSynthesizing State = "synthesizing"
	StateDone         State = "done"
	StateAborted      State = "aborted"
)

// Assistant orchestrates one research run. An Assistant is single-use:
// after ConductResearch returns it is in StateDone or StateAborted and a
// fresh run needs a fresh Assistant.
type Assistant struct {
	client Completer
	cfg    types.AssistantConfig
	out    io.Writer
	model  string
	state  State
}

// New builds an Assistant driving client with cfg. Progress output goes
// to out; pass nil to discard it.
func New(client Completer, cfg types.AssistantConfig, out io.Writer) *Assistant {
	if out == nil {
		out = io.Discard
	}
	model := cfg.Gemini.Model
	if model == "" {
		model = types.DefaultModel
	}
	return &Assistant{
		client: client,
		cfg:    cfg,
		out:    out,
		model:  model,
		state:  StateIdle,
	}
}

// State returns the orchestrator's current state.
func (a *Assistant) State() State { return a.state }

// ConductResearch runs the full pipeline for topic and returns the
// completed run. Per-question research failures degrade into placeholder
// findings; every other failure aborts the run with the error surfaced
// verbatim.
func (a *Assistant) ConductResearch(ctx context.Context, topic string) (*types.RunRecord, error) {
	if a.state != StateIdle {
		return nil, fmt.Errorf("assistant is %s; a research run is single-use", a.state)
	}

	a.state = StatePlanning
	topic = strings.TrimSpace(topic)
	if topic == "" {
		a.state = StateAborted
		return nil, fmt.Errorf("conduct research: %w: topic is empty", ErrInvalidInput)
	}

	fmt.Fprintf(a.out, "Step 1: creating research plan\n")
	questions, err := a.Plan(ctx, topic)
	if err != nil {
		a.state = StateAborted
		return nil, err
	}

	a.state = StateResearching
	fmt.Fprintf(a.out, "Step 2: researching %d questions\n", len(questions))
	findings, err := a.ResearchAll(ctx, questions)
	if err != nil {
		a.state = StateAborted
		return nil, err
	}

	usable := 0
	for _, f := range findings {
		if !f.Placeholder {
			usable++
		}
	}
	if usable == 0 {
		a.state = StateAborted
		return nil, &InsufficientDataError{Questions: len(questions)}
	}

	a.state = StateSynthesizing
	fmt.Fprintf(a.out, "Step 3: synthesizing final report\n")
	report, err := a.Synthesize(ctx, topic, findings)
	if err != nil {
		a.state = StateAborted
		return nil, err
	}

	a.state = StateDone
	return &types.RunRecord{
		Topic:     topic,
		Model:     a.model,
		CreatedAt: time.Now().UTC(),
		Findings:  findings,
		Report:    report,
	}, nil
}
