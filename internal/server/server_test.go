// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buhofis/buho-tui/internal/api"
	"github.com/buhofis/buho-tui/internal/model"
	"github.com/buhofis/buho-tui/internal/navigation"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	tree, err := navigation.NewBundledSource()
	require.NoError(t, err)
	return New(tree, opts, nil)
}

func doRequest(t *testing.T, s *Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

// =============================================================================
// HEALTH AND STATS
// =============================================================================

func TestHealth(t *testing.T) {
	s := newTestServer(t, Options{})
	resp, body := doRequest(t, s, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestStats_CountsRequests(t *testing.T) {
	s := newTestServer(t, Options{})
	doRequest(t, s, http.MethodGet, "/health", "")
	doRequest(t, s, http.MethodPost, "/rag/ask", `{"question":"hola"}`)

	snap := s.Stats().Snapshot()
	assert.Equal(t, int64(2), snap.Requests)
	assert.Equal(t, int64(1), snap.Questions)
	assert.Zero(t, snap.Streams)
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	s := newTestServer(t, Options{})
	resp, body := doRequest(t, s, http.MethodGet, "/nope", "")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var out map[string]string
	require.NoError(t, json.Unmarshal(body, &out))
	assert.NotEmpty(t, out["error"])
}

// =============================================================================
// NAVIGATION
// =============================================================================

func TestNavigationRoot(t *testing.T) {
	s := newTestServer(t, Options{})
	resp, body := doRequest(t, s, http.MethodGet, "/navigation", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out rootResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, 0, out.Level)
	require.NotEmpty(t, out.Options)
	assert.Equal(t, model.Option{ID: "academicas", Label: "Consultas académicas"}, out.Options[0])
}

func TestNavigationNext(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantType  model.NodeKind
		wantTitle string
		wantFile  string
	}{
		{"empty body resolves root", "", model.KindOptions, model.DefaultFlowTitle, ""},
		{"path not an array resolves root", `{"path":"academicas"}`, model.KindOptions, model.DefaultFlowTitle, ""},
		{"menu", `{"path":["academicas"]}`, model.KindOptions, "Consultas académicas", ""},
		{"answer", `{"path":["academicas","practicas","horas"]}`, model.KindAnswer, "Horas de prácticas",
			"PROCEDIMIENTO-PRACTICAS-PREPROFESIONALES-Y-SERVICIO-COMUNITARIO.pdf"},
		{"unknown id", `{"path":["nada"]}`, model.KindAnswer, navigation.NotFoundTitle, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, Options{})
			resp, body := doRequest(t, s, http.MethodPost, "/navigation/next", tt.body)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var out nodeResponse
			require.NoError(t, json.Unmarshal(body, &out))
			assert.Equal(t, tt.wantType, out.Type)
			assert.Equal(t, tt.wantTitle, out.Title)
			assert.Equal(t, tt.wantFile, out.FileName)
			assert.NotNil(t, out.Options)
		})
	}
}

func TestBadJSONIs400(t *testing.T) {
	for _, path := range []string{"/navigation/next", "/rag/ask", "/rag/stream"} {
		t.Run(path, func(t *testing.T) {
			s := newTestServer(t, Options{})
			resp, body := doRequest(t, s, http.MethodPost, path, "{no es json")

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.JSONEq(t, `{"error":"Bad request (mock)"}`, string(body))
		})
	}
}

// =============================================================================
// RAG
// =============================================================================

func TestAsk(t *testing.T) {
	s := newTestServer(t, Options{})
	resp, body := doRequest(t, s, http.MethodPost, "/rag/ask", `{"question":"¿Becas?","optimize_query":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out askResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Contains(t, out.Answer, "¿Becas?")
	assert.Equal(t, []string{"mock_source_1.pdf", "mock_source_2.pdf"}, out.Sources)
}

func TestAsk_DefaultQuestion(t *testing.T) {
	s := newTestServer(t, Options{})
	_, body := doRequest(t, s, http.MethodPost, "/rag/ask", `{}`)

	var out askResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Contains(t, out.Answer, defaultQuestion)
}

func TestStream_Frames(t *testing.T) {
	s := newTestServer(t, Options{})
	resp, body := doRequest(t, s, http.MethodPost, "/rag/stream", `{"question":"matrícula"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	text := string(body)
	frames := strings.Split(strings.TrimSpace(text), "\n\n")
	require.Len(t, frames, 5)
	assert.True(t, strings.HasPrefix(frames[0], "event: metadata\ndata: "))
	assert.Contains(t, frames[0], "documento_ejemplo1.pdf")
	for _, f := range frames[1:4] {
		assert.True(t, strings.HasPrefix(f, "event: message\n"), f)
	}
	assert.Contains(t, frames[1], "matrícula")
	assert.Equal(t, "event: done\ndata: [DONE]", frames[4])
	assert.Equal(t, int64(1), s.Stats().Snapshot().Streams)
}

// =============================================================================
// FILES
// =============================================================================

func TestDownload(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guia.pdf"), []byte("%PDF-1.4"), 0o644))

	tests := []struct {
		name     string
		filesDir string
		path     string
		want     int
	}{
		{"served", dir, "/files/download/guia.pdf", http.StatusOK},
		{"missing", dir, "/files/download/otro.pdf", http.StatusNotFound},
		{"disabled", "", "/files/download/guia.pdf", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, Options{FilesDir: tt.filesDir})
			resp, body := doRequest(t, s, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.want, resp.StatusCode)
			if tt.want == http.StatusOK {
				assert.Equal(t, "%PDF-1.4", string(body))
				assert.Contains(t, resp.Header.Get("Content-Disposition"), "guia.pdf")
			}
		})
	}
}

// =============================================================================
// CLIENT ROUND TRIP
// =============================================================================

// listen serves s on a loopback port and returns its base URL.
func listen(t *testing.T, s *Server) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = s.App().Listener(ln) }()
	t.Cleanup(func() { _ = s.App().Shutdown() })
	return "http://" + ln.Addr().String()
}

func TestClientRoundTrip(t *testing.T) {
	s := newTestServer(t, Options{TokenInterval: time.Millisecond})
	base := listen(t, s)
	client := api.NewClient(base).WithTimeout(5 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	t.Run("ping", func(t *testing.T) {
		assert.True(t, client.Ping(ctx, "/health", time.Second))
	})

	t.Run("navigation", func(t *testing.T) {
		src := navigation.NewServerSource(client)
		root, err := src.Root(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, root.Options)

		leaf, err := src.Next(ctx, []string{"academicas", "practicas", "horas"})
		require.NoError(t, err)
		assert.True(t, leaf.IsAnswer())
		assert.Contains(t, leaf.Answer, "240h")
	})

	t.Run("stream", func(t *testing.T) {
		var text strings.Builder
		var sources []model.Source
		var last api.StreamEvent
		for ev := range client.StreamRAG(ctx, api.RAGRequest{Question: "hola"}) {
			switch ev.Kind {
			case api.EventFragment:
				text.WriteString(ev.Text)
			case api.EventMetadata:
				sources = api.ExtractSources(ev.Meta, base)
			}
			last = ev
		}
		assert.Equal(t, api.EventDone, last.Kind)
		assert.Contains(t, text.String(), "Este es un ejemplo.")
		assert.Len(t, sources, 2)
	})

	t.Run("ask", func(t *testing.T) {
		resp, err := client.Ask(ctx, api.RAGRequest{Question: "hola"})
		require.NoError(t, err)
		assert.Contains(t, resp.Answer, "hola")
	})
}

func TestRun_StopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	s := newTestServer(t, Options{Addr: addr})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	client := api.NewClient("http://" + addr)
	require.Eventually(t, func() bool {
		return client.Ping(context.Background(), "/health", 200*time.Millisecond)
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
