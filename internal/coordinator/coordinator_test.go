// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package coordinator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buhofis/buho-tui/internal/api"
	"github.com/buhofis/buho-tui/internal/model"
	"github.com/buhofis/buho-tui/internal/navigation"
	"github.com/buhofis/buho-tui/internal/offline"
	"github.com/buhofis/buho-tui/internal/session"
	"github.com/buhofis/buho-tui/internal/storage"
)

// =============================================================================
// FAKES
// =============================================================================

var (
	errNetwork = &api.NetworkError{Op: "GET", URL: "http://backend", Err: errors.New("connection refused")}
	errServer  = &api.HTTPError{Status: 500, Body: "boom"}
)

// fakeSource answers from fixed nodes keyed by joined path.
type fakeSource struct {
	mu    sync.Mutex
	nodes map[string]model.FlowNode
	err   error
	calls []string
	gate  chan struct{}
}

func (f *fakeSource) lookup(ctx context.Context, key string) (model.FlowNode, error) {
	f.mu.Lock()
	f.calls = append(f.calls, key)
	gate, err := f.gate, f.err
	node, ok := f.nodes[key]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return model.FlowNode{}, &api.AbortError{Err: ctx.Err()}
		}
	}
	if err != nil {
		return model.FlowNode{}, err
	}
	if !ok {
		return model.FlowNode{}, &api.HTTPError{Status: 404}
	}
	return node, nil
}

func (f *fakeSource) Root(ctx context.Context) (model.FlowNode, error) {
	return f.lookup(ctx, "")
}

func (f *fakeSource) Next(ctx context.Context, path []string) (model.FlowNode, error) {
	return f.lookup(ctx, strings.Join(path, "/"))
}

func (f *fakeSource) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// fakeStreamer hands every request a channel the test drives.
type fakeStreamer struct {
	mu       sync.Mutex
	requests []api.RAGRequest
	streams  chan chan api.StreamEvent
}

func newFakeStreamer() *fakeStreamer {
	return &fakeStreamer{streams: make(chan chan api.StreamEvent, 4)}
}

func (f *fakeStreamer) StreamRAG(ctx context.Context, req api.RAGRequest) <-chan api.StreamEvent {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	in := make(chan api.StreamEvent)
	out := make(chan api.StreamEvent)
	go func() {
		defer close(out)
		for {
			select {
			case ev, ok := <-in:
				if !ok {
					return
				}
				out <- ev
				if ev.Terminal() {
					return
				}
			case <-ctx.Done():
				out <- api.StreamEvent{Kind: api.EventAborted, Err: &api.AbortError{Err: ctx.Err()}}
				return
			}
		}
	}()
	f.streams <- in
	return out
}

func (f *fakeStreamer) next(t *testing.T) chan api.StreamEvent {
	t.Helper()
	select {
	case s := <-f.streams:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no stream opened")
		return nil
	}
}

type fakePinger struct {
	mu        sync.Mutex
	reachable bool
	calls     int
}

func (p *fakePinger) Ping(ctx context.Context, path string, timeout time.Duration) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.reachable
}

// =============================================================================
// HARNESS
// =============================================================================

type harness struct {
	coord    *Coordinator
	store    *session.Store
	primary  *fakeSource
	streamer *fakeStreamer
	tracker  *offline.Tracker
}

func serverTree() map[string]model.FlowNode {
	return map[string]model.FlowNode{
		"": {Kind: model.KindOptions, Options: []model.Option{
			{ID: "matricula", Label: "Matrícula"},
			{ID: "becas", Label: "Becas"},
		}},
		"matricula": {Title: "Matrícula", Kind: model.KindOptions, Options: []model.Option{
			{ID: "fechas", Label: "Fechas"},
		}},
		"matricula/fechas": {Title: "Fechas", Kind: model.KindAnswer, Answer: "Del 1 al 15.", FileName: "  calendario.pdf "},
		"becas":            {Title: "Becas", Kind: model.KindAnswer},
	}
}

func newHarness(t *testing.T, opts ...func(*Options)) *harness {
	t.Helper()
	bundled, err := navigation.NewBundledSource()
	require.NoError(t, err)

	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	h := &harness{
		store:    session.Open(storage.NewMemoryStore(time.Hour), nil),
		primary:  &fakeSource{nodes: serverTree()},
		streamer: newFakeStreamer(),
		tracker:  offline.NewTracker(),
	}
	h.coord, err = New(Deps{
		Store:     h.store,
		Primary:   h.primary,
		Fallback:  bundled,
		Streamer:  h.streamer,
		Simulator: offline.NewResponder(time.Millisecond),
		Tracker:   h.tracker,
	}, o)
	require.NoError(t, err)
	t.Cleanup(h.coord.Close)
	return h
}

func (h *harness) messages() []model.Message {
	return h.coord.State().Messages
}

func (h *harness) last() model.Message {
	msgs := h.messages()
	if len(msgs) == 0 {
		return model.Message{}
	}
	return msgs[len(msgs)-1]
}

// waitIdle waits until nothing is in flight and the last message finished.
func (h *harness) waitIdle(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool {
		st := h.coord.State()
		if st.Typing {
			return false
		}
		for _, m := range st.Messages {
			if m.IsStreaming {
				return false
			}
		}
		return true
	}, 2*time.Second, 5*time.Millisecond)
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Deps{}, DefaultOptions())
	assert.ErrorIs(t, err, ErrMissingDependency)
}
