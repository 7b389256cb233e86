// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/buhofis/buho-tui/internal/model"
)

// ============================================================================
// WIRE TYPES
// ============================================================================

// errBadRequest is the body of every 400 the mock returns.
const errBadRequest = "Bad request (mock)"

// defaultQuestion stands in for a missing question.
const defaultQuestion = "Pregunta"

// rootResponse is the body of GET /navigation.
type rootResponse struct {
	Level   int            `json:"level"`
	Options []model.Option `json:"options"`
}

// nodeResponse is a resolved flow node in the backend's shape.
type nodeResponse struct {
	Title    string         `json:"title"`
	Type     model.NodeKind `json:"type"`
	Options  []model.Option `json:"options"`
	Answer   string         `json:"answer,omitempty"`
	FileName string         `json:"file_name,omitempty"`
}

func toNodeResponse(n model.FlowNode) nodeResponse {
	opts := n.Options
	if opts == nil {
		opts = []model.Option{}
	}
	return nodeResponse{
		Title:    n.Title,
		Type:     n.Kind,
		Options:  opts,
		Answer:   n.Answer,
		FileName: n.FileName,
	}
}

type askResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// askSources are returned by POST /rag/ask.
var askSources = []string{"mock_source_1.pdf", "mock_source_2.pdf"}

// streamSources are sent in the metadata event of POST /rag/stream.
var streamSources = []string{"documento_ejemplo1.pdf", "documento_ejemplo2.pdf"}

// streamTokens returns the three message tokens streamed for question.
func streamTokens(question string) []string {
	return []string{
		fmt.Sprintf("Respuesta simulada para: %q. ", question),
		"Este es un ejemplo. ",
		"La respuesta vendrá del RAG cuando se haya establecido conexión con Backend.",
	}
}

// ============================================================================
// HEALTH
// ============================================================================

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	return c.JSON(s.stats.Snapshot())
}

// ============================================================================
// NAVIGATION
// ============================================================================

func (s *Server) handleNavigationRoot(c *fiber.Ctx) error {
	root := s.tree.Resolve(nil)
	opts := root.Options
	if opts == nil {
		opts = []model.Option{}
	}
	return c.JSON(rootResponse{Level: 0, Options: opts})
}

// handleNavigationNext resolves body.path. A path that is not an array is
// treated as empty; a body that is not JSON is a bad request.
func (s *Server) handleNavigationNext(c *fiber.Ctx) error {
	var body struct {
		Path interface{} `json:"path"`
	}
	if err := decodeBody(c, &body); err != nil {
		return badRequest(c)
	}

	var path []string
	if items, ok := body.Path.([]interface{}); ok {
		path = make([]string, 0, len(items))
		for _, it := range items {
			path = append(path, fmt.Sprint(it))
		}
	}

	return c.JSON(toNodeResponse(s.tree.Resolve(path)))
}

// ============================================================================
// RAG
// ============================================================================

type ragBody struct {
	Question      string `json:"question"`
	OptimizeQuery bool   `json:"optimize_query"`
}

func (b ragBody) question() string {
	if strings.TrimSpace(b.Question) == "" {
		return defaultQuestion
	}
	return b.Question
}

func (s *Server) handleAsk(c *fiber.Ctx) error {
	var body ragBody
	if err := decodeBody(c, &body); err != nil {
		return badRequest(c)
	}
	s.stats.questions.Add(1)

	return c.JSON(askResponse{
		Answer:  fmt.Sprintf("Respuesta simulada (no streaming) para: %q", body.question()),
		Sources: askSources,
	})
}

// handleStream writes a metadata event, three message tokens paced by
// TokenInterval and a final done event.
func (s *Server) handleStream(c *fiber.Ctx) error {
	var body ragBody
	if err := decodeBody(c, &body); err != nil {
		return badRequest(c)
	}
	s.stats.questions.Add(1)
	s.stats.streams.Add(1)

	meta, err := json.Marshal(fiber.Map{"payload": fiber.Map{"sources": streamSources}})
	if err != nil {
		return err
	}
	tokens := streamTokens(body.question())
	interval := s.opts.TokenInterval
	log := s.log

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		if err := writeEvent(w, "metadata", string(meta)); err != nil {
			return
		}
		for _, tok := range tokens {
			if interval > 0 {
				time.Sleep(interval)
			}
			if err := writeEvent(w, "message", tok); err != nil {
				log.Debug("SERVER", "stream client went away", map[string]interface{}{"error": err.Error()})
				return
			}
		}
		if interval > 0 {
			time.Sleep(interval)
		}
		_ = writeEvent(w, "done", "[DONE]")
	})
	return nil
}

// writeEvent writes one SSE frame and flushes it to the client.
func writeEvent(w *bufio.Writer, event, data string) error {
	if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
		return err
	}
	for _, line := range strings.Split(data, "\n") {
		if _, err := fmt.Fprintf(w, "data: %s\n", line); err != nil {
			return err
		}
	}
	if _, err := w.WriteString("\n"); err != nil {
		return err
	}
	return w.Flush()
}

// ============================================================================
// FILES
// ============================================================================

func (s *Server) handleDownload(c *fiber.Ctx) error {
	if s.opts.FilesDir == "" {
		return fiber.NewError(fiber.StatusNotFound, "File downloads are not configured (mock)")
	}

	name := filepath.Base(c.Params("name"))
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return badRequest(c)
	}

	path := filepath.Join(s.opts.FilesDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return fiber.NewError(fiber.StatusNotFound, "File not found (mock)")
	}

	return c.Download(path, name)
}

// ============================================================================
// HELPERS
// ============================================================================

// decodeBody decodes a JSON body. An empty body decodes as {}.
func decodeBody(c *fiber.Ctx, v interface{}) error {
	raw := c.Body()
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func badRequest(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errBadRequest})
}
