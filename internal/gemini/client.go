// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gemini calls the Gemini generateContent API. The client makes
// exactly one HTTP attempt per call and classifies failures as transient
// or fatal; retry policy belongs to the callers.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// apiBaseURL is the Gemini API base. Package-level var for test substitution.
var apiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const defaultTimeout = 120 * time.Second

// Client completes prompts against the Gemini generateContent endpoint.
type Client struct {
	apiKey string
	model  string
	http   *http.Client
}

// NewClient builds a Client from cfg. The API key must be non-empty;
// model and timeout fall back to defaults.
func NewClient(cfg types.GeminiConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, &FatalConfigurationError{
			Status:  http.StatusUnauthorized,
			Message: "missing Gemini API key",
		}
	}

	model := cfg.Model
	if model == "" {
		model = types.DefaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		apiKey: cfg.APIKey,
		model:  model,
		http:   &http.Client{Timeout: timeout},
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

// generateRequest is the request body for the generateContent endpoint.
type generateRequest struct {
	Contents []content `json:"contents"`
	Tools    []tool    `json:"tools,omitempty"`
}

// content is one conversation turn.
type content struct {
	Parts []part `json:"parts"`
}

// part is a single text block within a turn.
type part struct {
	Text string `json:"text"`
}

// tool enables a provider-side capability. An empty googleSearch object
// turns on search grounding.
type tool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

// generateResponse is the response body from the generateContent endpoint.
type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// apiError is the error envelope returned on non-200 responses.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Complete sends one prompt and returns the model's text. When
// useRetrieval is set the request carries the google_search tool so the
// model can ground its answer in web results. An empty completion is
// returned as an empty string with a nil error; the caller decides
// whether that is acceptable.
func (c *Client) Complete(ctx context.Context, prompt string, useRetrieval bool) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	if useRetrieval {
		reqBody.Tools = []tool{{GoogleSearch: &struct{}{}}}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", apiBaseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		// Transport faults and timeouts are worth retrying; a
		// cancelled context is surfaced as-is so callers stop.
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", &TransientError{Message: "calling Gemini API", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, resp.Body)
	}

	var gResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return "", fmt.Errorf("decoding Gemini response: %w", err)
	}

	// Grounded responses split the answer across several text parts;
	// the candidate's text is the concatenation of all of them.
	for _, cand := range gResp.Candidates {
		var b strings.Builder
		for _, p := range cand.Content.Parts {
			b.WriteString(p.Text)
		}
		if b.Len() > 0 {
			return b.String(), nil
		}
	}
	return "", nil
}

// Validate makes a minimal completion call to confirm the API key and
// model are usable before a run starts.
func (c *Client) Validate(ctx context.Context) error {
	_, err := c.Complete(ctx, "Hello, this is a connectivity test.", false)
	return err
}

// classifyStatus maps a non-200 response to the error taxonomy. Rate
// limits and server errors are transient; client errors mean the key,
// model, or request is wrong and retrying cannot help.
func classifyStatus(status int, body io.Reader) error {
	msg := fmt.Sprintf("Gemini API returned %d", status)
	raw, _ := io.ReadAll(io.LimitReader(body, 4096))

	var ae apiError
	if err := json.Unmarshal(raw, &ae); err == nil && ae.Error.Message != "" {
		msg = ae.Error.Message
	} else if len(raw) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, bytes.TrimSpace(raw))
	}

	if status == http.StatusTooManyRequests || status >= 500 {
		return &TransientError{Status: status, Message: msg}
	}
	return &FatalConfigurationError{Status: status, Message: msg}
}
