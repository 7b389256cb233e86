// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/buhofis/buho-tui/internal/sse"
)

// streamSpanName names the span covering a whole /rag/stream answer. The
// request span started by Do is its child and ends with the headers.
const streamSpanName = "rag.stream"

// =============================================================================
// STREAM EVENTS
// =============================================================================

// StreamEventKind tags a StreamEvent.
type StreamEventKind int

const (
	// EventFragment carries a piece of answer text in Text.
	EventFragment StreamEventKind = iota
	// EventMetadata carries the decoded metadata payload in Meta.
	EventMetadata
	// EventDone ends the stream normally.
	EventDone
	// EventAborted ends the stream after the caller cancelled it.
	EventAborted
	// EventFailed ends the stream with Err set.
	EventFailed
)

// String returns the kind name for logs.
func (k StreamEventKind) String() string {
	switch k {
	case EventFragment:
		return "fragment"
	case EventMetadata:
		return "metadata"
	case EventDone:
		return "done"
	case EventAborted:
		return "aborted"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StreamEvent is one item of an answer stream. Exactly one terminal event
// (Done, Aborted or Failed) is sent, after which the channel is closed.
type StreamEvent struct {
	Kind StreamEventKind
	Text string
	Meta any
	Err  error
}

// Terminal reports whether the event ends the stream.
func (e StreamEvent) Terminal() bool {
	return e.Kind == EventDone || e.Kind == EventAborted || e.Kind == EventFailed
}

// =============================================================================
// RAG REQUESTS
// =============================================================================

// RAGRequest is the body of /rag/stream and /rag/ask.
type RAGRequest struct {
	Question      string `json:"question"`
	OptimizeQuery bool   `json:"optimize_query"`
}

// AskResponse is the body returned by /rag/ask.
type AskResponse struct {
	Answer  string `json:"answer"`
	Sources any    `json:"sources"`
}

// StreamRAG opens POST /rag/stream and translates the SSE frames into
// StreamEvents. Cancelling ctx ends the stream with EventAborted.
func (c *Client) StreamRAG(ctx context.Context, req RAGRequest) <-chan StreamEvent {
	out := make(chan StreamEvent, 32)
	go func() {
		defer close(out)
		out <- c.streamRAG(ctx, req, out)
	}()
	return out
}

// streamRAG sends non-terminal events on out and returns the terminal one.
func (c *Client) streamRAG(ctx context.Context, req RAGRequest, out chan<- StreamEvent) (final StreamEvent) {
	ctx, span := c.tracer.Start(ctx, streamSpanName, trace.WithSpanKind(trace.SpanKindClient))
	fragments := 0
	defer func() {
		span.SetAttributes(
			attribute.Int("rag.fragments", fragments),
			attribute.String("rag.outcome", final.Kind.String()),
		)
		if final.Kind == EventFailed && final.Err != nil {
			span.RecordError(final.Err)
			span.SetStatus(codes.Error, final.Err.Error())
		}
		span.End()
	}()

	resp, err := c.Do(ctx, "/rag/stream", Request{
		Method:  http.MethodPost,
		Body:    req,
		Headers: map[string]string{"Accept": "text/event-stream"},
	})
	if err != nil {
		return terminalEvent(ctx, err)
	}
	defer resp.Body.Close()

	reader := sse.NewReader(resp.Body)
	for {
		ev, err := reader.Next()
		if errors.Is(err, io.EOF) {
			if ctx.Err() != nil {
				return StreamEvent{Kind: EventAborted, Err: ctx.Err()}
			}
			return StreamEvent{Kind: EventDone}
		}
		if err != nil {
			return terminalEvent(ctx, transportError(ctx, http.MethodPost, c.URL("/rag/stream"), err))
		}

		switch ev.Name {
		case sse.EventDone:
			return StreamEvent{Kind: EventDone}
		case sse.EventMessage:
			fragments++
			out <- StreamEvent{Kind: EventFragment, Text: ev.Data}
		case "metadata":
			out <- StreamEvent{Kind: EventMetadata, Meta: decodeMeta(ev.Data)}
		default:
			c.log.Debug("api", "ignoring stream event", map[string]interface{}{"event": ev.Name})
		}
	}
}

// Ask calls the non-streaming POST /rag/ask endpoint.
func (c *Client) Ask(ctx context.Context, req RAGRequest) (*AskResponse, error) {
	var resp AskResponse
	if err := c.DoJSON(ctx, "/rag/ask", Request{Method: http.MethodPost, Body: req}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func terminalEvent(ctx context.Context, err error) StreamEvent {
	if IsAbort(err) || ctx.Err() != nil {
		return StreamEvent{Kind: EventAborted, Err: err}
	}
	return StreamEvent{Kind: EventFailed, Err: err}
}

// decodeMeta parses JSON metadata, falling back to the raw string.
func decodeMeta(data string) any {
	trimmed := strings.TrimSpace(data)
	if trimmed == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return data
	}
	return v
}
