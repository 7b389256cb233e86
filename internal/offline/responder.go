// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package offline

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/buhofis/buho-tui/internal/api"
)

// DefaultTokenInterval is the pause between canned fragments.
const DefaultTokenInterval = 220 * time.Millisecond

// mockSources are the citations attached to every simulated answer. They
// use the wire shape so they go through the same extraction as real ones.
var mockSources = []any{
	map[string]any{"file_name": "mock_doc_practicas.pdf", "page": float64(1)},
	map[string]any{"file_name": "mock_doc_matricula.pdf", "page": float64(2)},
	map[string]any{"file_name": "mock_doc_general.pdf", "page": float64(1)},
}

// Fragments returns the canned answer for question, split the way it is
// streamed.
func Fragments(question string) []string {
	return []string{
		"Respuesta simulada para: \"" + question + "\". ",
		"Este es un ejemplo. ",
		"Cuando el backend esté disponible, la respuesta vendrá del RAG.",
	}
}

// Responder produces a simulated answer stream while the backend is
// unreachable. Its events have the same shape as api.Client.StreamRAG so
// the consumer applies them through one code path.
type Responder struct {
	interval time.Duration
}

// NewResponder creates a responder pacing fragments interval apart. A
// non-positive interval uses DefaultTokenInterval.
func NewResponder(interval time.Duration) *Responder {
	if interval <= 0 {
		interval = DefaultTokenInterval
	}
	return &Responder{interval: interval}
}

// Stream emits the mock sources, then the canned fragments, then Done.
// Cancelling ctx ends it with Aborted.
func (r *Responder) Stream(ctx context.Context, question string) <-chan api.StreamEvent {
	out := make(chan api.StreamEvent, 8)
	go func() {
		defer close(out)

		out <- api.StreamEvent{
			Kind: api.EventMetadata,
			Meta: map[string]any{"payload": map[string]any{"sources": mockSources}},
		}

		limiter := rate.NewLimiter(rate.Every(r.interval), 1)
		limiter.Allow() // spend the initial burst so the first fragment waits too
		for _, frag := range Fragments(question) {
			if err := limiter.Wait(ctx); err != nil {
				out <- api.StreamEvent{Kind: api.EventAborted, Err: &api.AbortError{Err: err}}
				return
			}
			out <- api.StreamEvent{Kind: api.EventFragment, Text: frag}
		}
		out <- api.StreamEvent{Kind: api.EventDone}
	}()
	return out
}
