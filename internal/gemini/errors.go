// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gemini

import (
	"errors"
	"fmt"
	"strings"
)

// TransientError marks a failure that a bounded retry may recover from:
// rate limits, server errors, timeouts, network faults.
type TransientError struct {
	// Status is the HTTP status code, or 0 for transport-level faults.
	Status int

	// Message describes the failure.
	Message string

	// Err is the underlying error, if any.
	Err error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transient: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("transient: %s", e.Message)
}

func (e *TransientError) Unwrap() error { return e.Err }

// FatalConfigurationError marks a failure retrying cannot fix: a bad
// credential, an unknown model, a malformed request.
type FatalConfigurationError struct {
	// Status is the HTTP status code.
	Status int

	// Message describes the failure.
	Message string
}

func (e *FatalConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s (HTTP %d)", e.Message, e.Status)
}

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsFatal reports whether err is (or wraps) a FatalConfigurationError.
func IsFatal(err error) bool {
	var fe *FatalConfigurationError
	return errors.As(err, &fe)
}

// IsSearchUnsupported reports whether err is a fatal error caused by the
// selected model rejecting the search grounding tool.
func IsSearchUnsupported(err error) bool {
	var fe *FatalConfigurationError
	if !errors.As(err, &fe) {
		return false
	}
	return strings.Contains(strings.ToLower(fe.Message), "search grounding")
}
