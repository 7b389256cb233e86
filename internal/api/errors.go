// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// HTTPError is returned when the backend answered with a non-2xx status.
// Callers treat it as a server error: the backend is reachable but refused.
type HTTPError struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// NetworkError wraps transport failures: refused connections, DNS errors,
// timeouts and bodies cut off mid-read.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Op, e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// AbortError is returned when the caller cancelled the request context.
type AbortError struct {
	Err error
}

// Error implements the error interface.
func (e *AbortError) Error() string {
	return fmt.Sprintf("request aborted: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *AbortError) Unwrap() error {
	return e.Err
}

// =============================================================================
// CLASSIFICATION HELPERS
// =============================================================================

// IsNetwork reports whether err is (or wraps) a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsAbort reports whether err is (or wraps) an AbortError or a context
// cancellation.
func IsAbort(err error) bool {
	var ae *AbortError
	return errors.As(err, &ae) || errors.Is(err, context.Canceled)
}

// IsHTTP reports whether err is (or wraps) an HTTPError.
func IsHTTP(err error) bool {
	var he *HTTPError
	return errors.As(err, &he)
}

// transportError converts an error from http.Client.Do or a body read into
// AbortError when ctx was cancelled and NetworkError otherwise.
func transportError(ctx context.Context, op, url string, err error) error {
	if ctx.Err() == context.Canceled || errors.Is(err, context.Canceled) {
		return &AbortError{Err: err}
	}
	return &NetworkError{Op: op, URL: url, Err: err}
}
