// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command handler for buho.
//
// Sends one question to the RAG backend and prints the answer to stdout.
// When the backend cannot be reached the simulated offline answer is
// printed instead, after a warning line.
//
// Command: ask [question]
// Short:   Haz una sola pregunta
// Aliases: a
//
// Examples:
//   buho ask "¿Cuándo abre la matrícula?"
//   buho "¿Dónde está secretaría?"
//   buho ask --no-stream "Requisitos de la beca"
//
// Flags:
//   --no-stream         Use /rag/ask and print the whole answer at once
//   -q, --quiet         Only print the answer

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/buhofis/buho-tui/internal/api"
	"github.com/buhofis/buho-tui/internal/config"
	"github.com/buhofis/buho-tui/internal/logging"
	"github.com/buhofis/buho-tui/internal/model"
	"github.com/buhofis/buho-tui/internal/offline"
	"github.com/buhofis/buho-tui/internal/validate"
)

const msgOfflineAnswer = "Sin conexión con el servidor. Respuesta simulada:"

// renderMarkdown renders an answer for the terminal, returning content
// unchanged when the renderer cannot be built.
func renderMarkdown(content string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

// HandleAsk answers args.Query and writes it to out.
func HandleAsk(ctx context.Context, cfg *config.Config, log logging.Logger, args Args, out io.Writer) error {
	if log == nil {
		log = logging.NewNop()
	}
	if strings.TrimSpace(args.Query) == "" {
		return ErrMissingArgument("pregunta", `buho ask "tu pregunta"`)
	}
	question, err := validate.Input(args.Query, false)
	if err != nil {
		return err
	}

	client := NewClient(cfg, log)
	req := api.RAGRequest{Question: question, OptimizeQuery: cfg.Backend.OptimizeQuery}

	if args.NoStream {
		return askOnce(ctx, cfg, client, req, out)
	}
	return askStream(ctx, cfg, log, client, req, out, args.Quiet)
}

func askOnce(ctx context.Context, cfg *config.Config, client *api.Client, req api.RAGRequest, out io.Writer) error {
	resp, err := client.Ask(ctx, req)
	if err != nil {
		if api.IsAbort(err) {
			return errInterrupted
		}
		return err
	}

	answer := resp.Answer
	if cfg.UI.Markdown && IsStdoutTTY() {
		answer = renderMarkdown(answer, GetTerminalWidth()-4)
	}
	fmt.Fprintln(out, answer)

	if cfg.UI.ShowSources {
		sources := api.ExtractSources(map[string]any{"sources": resp.Sources}, cfg.Backend.BaseURL)
		printSources(out, sources)
	}
	return nil
}

func askStream(ctx context.Context, cfg *config.Config, log logging.Logger, client *api.Client, req api.RAGRequest, out io.Writer, quiet bool) error {
	sources, err := printStream(ctx, client.StreamRAG(ctx, req), cfg.Backend.BaseURL, out)
	if err != nil && offline.IsNetworkError(err) {
		log.Warn("cli", "backend unreachable, simulating answer", map[string]interface{}{
			"error": err.Error(),
		})
		if !quiet {
			fmt.Fprintln(out, warningColor.Sprint(msgOfflineAnswer))
		}
		responder := offline.NewResponder(cfg.Offline.TokenInterval())
		sources, err = printStream(ctx, responder.Stream(ctx, req.Question), cfg.Backend.BaseURL, out)
	}
	if err != nil {
		return err
	}
	if cfg.UI.ShowSources {
		printSources(out, sources)
	}
	return nil
}

// printStream writes fragments as they arrive and returns the sources
// collected from metadata events.
func printStream(ctx context.Context, events <-chan api.StreamEvent, apiBase string, out io.Writer) ([]model.Source, error) {
	var (
		sources []model.Source
		wrote   bool
	)
	for ev := range events {
		switch ev.Kind {
		case api.EventFragment:
			fmt.Fprint(out, ev.Text)
			wrote = true
		case api.EventMetadata:
			sources = model.MergeSources(sources, api.ExtractSources(ev.Meta, apiBase))
		case api.EventDone:
			if wrote {
				fmt.Fprintln(out)
			}
			return sources, nil
		case api.EventAborted:
			if wrote {
				fmt.Fprintln(out)
			}
			return sources, errInterrupted
		case api.EventFailed:
			if wrote {
				fmt.Fprintln(out)
			}
			return sources, ev.Err
		}
	}
	if ctx.Err() != nil {
		return sources, errInterrupted
	}
	return sources, nil
}
