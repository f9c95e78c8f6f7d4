// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/pdiddy/research-assistant/internal/gemini"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// defaultBackoffBase controls the base delay between attempts when the
// config does not set one. Tests override this to avoid real sleeps.
var defaultBackoffBase = time.Second

const defaultMaxRetries = 2

// callWithRetry sends one prompt to the model, retrying transient
// failures up to rc.MaxRetries with a linearly increasing backoff (the
// wait before retry n is n * base). A zero MaxRetries selects the
// default; a negative value means a single attempt with no retries.
// Fatal configuration errors and context cancellation are returned
// immediately, never retried. After exhaustion the last transient
// error is returned wrapped, so gemini.IsTransient still holds.
func (a *Assistant) callWithRetry(ctx context.Context, prompt string, useRetrieval bool, rc types.RetryConfig) (string, error) {
	maxRetries := rc.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	} else if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}
	base := rc.BackoffBase
	if base <= 0 {
		base = defaultBackoffBase
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * base):
			}
		}

		text, err := a.client.Complete(ctx, prompt, useRetrieval)
		if err == nil {
			return text, nil
		}
		if !gemini.IsTransient(err) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}
