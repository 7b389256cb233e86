// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-oriented chat for buho.
//
// Command: chat
// Short:   Conversación en modo línea con historial
//
// The REPL drives the same coordinator as the TUI. Slash commands go
// through the command registry; in guided-flow mode a bare number picks
// an option.
//
// Interactive keys:
//   Ctrl+C   Stop the answer being streamed (exits at the prompt)
//   Ctrl+D   Exit

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/buhofis/buho-tui/internal/api"
	"github.com/buhofis/buho-tui/internal/commands"
	"github.com/buhofis/buho-tui/internal/config"
	"github.com/buhofis/buho-tui/internal/coordinator"
	"github.com/buhofis/buho-tui/internal/model"
	"github.com/buhofis/buho-tui/internal/validate"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for the REPL.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI and loads historyFile when it exists.
func NewChatCLI(historyFile string) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	c := &ChatCLI{
		line:        line,
		historyFile: historyFile,
	}
	c.LoadHistory()
	return c
}

// DefaultHistoryFile returns ~/.buho/chat_history, or a temp path when the
// config directory is unavailable.
func DefaultHistoryFile() string {
	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "chat_history")
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// SetCompleter installs tab completion.
func (c *ChatCLI) SetCompleter(fn func(line string) []string) {
	c.line.SetCompleter(fn)
}

// ReadInput reads a line with history navigation.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript prints the active chat incrementally: finished messages once,
// the streaming answer as its content grows.
type Transcript struct {
	out     io.Writer
	apiBase string

	chatID    int64
	shown     int    // messages of chatID already printed
	streaming bool   // a streaming message is partially printed
	streamed  string // content printed so far for it
	skipUser  string // the user's own line, not echoed back
}

// NewTranscript creates a transcript writing to out.
func NewTranscript(out io.Writer, apiBase string) *Transcript {
	return &Transcript{out: out, apiBase: apiBase, chatID: -1}
}

// SkipUser suppresses the next user message equal to text.
func (t *Transcript) SkipUser(text string) {
	t.skipUser = text
}

// Sync prints whatever st has that was not printed yet.
func (t *Transcript) Sync(st coordinator.State) {
	if st.ActiveChatID != t.chatID {
		t.endStream()
		t.chatID = st.ActiveChatID
		t.shown = 0
	}

	msgs := st.Messages
	if t.shown > len(msgs) {
		t.endStream()
		t.shown = len(msgs)
	}

	for t.shown < len(msgs) {
		m := msgs[t.shown]
		if m.IsStreaming {
			t.streamTo(m)
			return
		}
		if t.streaming {
			t.finish(m)
		} else {
			t.printMessage(m)
		}
		t.shown++
	}
}

func (t *Transcript) streamTo(m model.Message) {
	if !t.streaming {
		t.streaming = true
		t.streamed = ""
		fmt.Fprint(t.out, botColor.Sprint(m.Role.DisplayName()+": "))
	}
	t.writeDelta(m.Content)
}

// writeDelta prints the part of content not printed yet. Content that no
// longer extends what was printed is reprinted on a new line.
func (t *Transcript) writeDelta(content string) {
	if strings.HasPrefix(content, t.streamed) {
		fmt.Fprint(t.out, content[len(t.streamed):])
	} else {
		fmt.Fprint(t.out, "\n"+content)
	}
	t.streamed = content
}

// finish completes the message that was being streamed.
func (t *Transcript) finish(m model.Message) {
	if m.IsNotice() {
		fmt.Fprintln(t.out)
		t.printNotice(m)
	} else {
		t.writeDelta(m.Content)
		fmt.Fprintln(t.out)
		t.printAttachments(m)
	}
	t.streaming = false
	t.streamed = ""
}

func (t *Transcript) endStream() {
	if t.streaming {
		fmt.Fprintln(t.out)
		t.streaming = false
		t.streamed = ""
	}
}

func (t *Transcript) printMessage(m model.Message) {
	switch {
	case m.IsUser():
		if t.skipUser != "" && m.Content == t.skipUser {
			t.skipUser = ""
			return
		}
		fmt.Fprintf(t.out, "%s %s\n", userColor.Sprint(m.Role.DisplayName()+":"), m.Content)
	case m.IsNotice():
		t.printNotice(m)
	default:
		fmt.Fprintf(t.out, "%s %s\n", botColor.Sprint(m.Role.DisplayName()+":"), m.Content)
		t.printAttachments(m)
	}
}

func (t *Transcript) printNotice(m model.Message) {
	c := variantColor(m.Variant)
	if m.Title != "" {
		fmt.Fprintf(t.out, "%s %s\n", c.Sprint("["+m.Title+"]"), m.Content)
	} else {
		fmt.Fprintln(t.out, c.Sprint(m.Content))
	}
	if m.Detail != "" {
		fmt.Fprintln(t.out, dimColor.Sprint("  "+m.Detail))
	}
}

func (t *Transcript) printAttachments(m model.Message) {
	switch {
	case m.FileMissing:
		fmt.Fprintln(t.out, dimColor.Sprint("  Documento no disponible."))
	case m.FileName != "":
		fmt.Fprintf(t.out, "  %s %s\n", labelColor.Sprint("Documento:"), m.FileName)
		if t.apiBase != "" {
			fmt.Fprintf(t.out, "  %s\n", linkColor.Sprint(api.DownloadURL(t.apiBase, m.FileName)))
		}
	}
	printSources(t.out, m.Sources)
}

// printSources lists cited documents under an answer.
func printSources(w io.Writer, sources []model.Source) {
	if len(sources) == 0 {
		return
	}
	fmt.Fprintln(w, labelColor.Sprint("  Fuentes:"))
	for _, s := range sources {
		line := "    • " + s.Label()
		if s.URL != "" {
			line += " " + linkColor.Sprint(s.URL)
		}
		fmt.Fprintln(w, line)
	}
}

// PrintFlow lists the current guided-flow options.
func (t *Transcript) PrintFlow(st coordinator.State) {
	flow := st.Flow
	if !flow.Active {
		return
	}
	title := flow.Title
	if title == "" {
		title = model.DefaultFlowTitle
	}
	fmt.Fprintln(t.out, titleColor.Sprint(title))
	for i, opt := range flow.Options {
		fmt.Fprintf(t.out, "  %s %s\n", keyColor.Sprintf("%d)", i+1), opt.Label)
	}
	fmt.Fprintln(t.out, dimColor.Sprint("  número = elegir · /atras · /reiniciar · /libre"))
}

// =============================================================================
// REPL
// =============================================================================

// Spanish REPL strings.
const (
	msgWelcome    = "¡Hola! Soy BuhoFIS, tu asistente virtual"
	msgWelcomeSub = "Escribe tu pregunta, /guia para opciones guiadas o /ayuda para ver los comandos."
	msgBusy       = "Espera a que termine la respuesta actual."
	msgGoodbye    = "Hasta pronto."
)

// REPL executes one input line at a time against an App.
type REPL struct {
	app       *App
	out       io.Writer
	errOut    io.Writer
	tr        *Transcript
	completer *commands.Completer
}

// NewREPL creates a REPL printing to out and errOut.
func NewREPL(app *App, out, errOut io.Writer) *REPL {
	return &REPL{
		app:       app,
		out:       out,
		errOut:    errOut,
		tr:        NewTranscript(out, app.Config.Backend.BaseURL),
		completer: commands.NewCompleter(app.Registry, app.Coord.State),
	}
}

// Prompt returns the prompt for the current mode.
func (r *REPL) Prompt() string {
	if r.app.Coord.State().Flow.Active {
		return "buho[flujo]> "
	}
	return "buho> "
}

// PrintWelcome shows the greeting and the backend badge.
func (r *REPL) PrintWelcome() {
	st := r.app.Coord.State()
	fmt.Fprintf(r.out, "%s  %s\n", titleColor.Sprint(msgWelcome), RenderBadge(st.Backend))
	fmt.Fprintln(r.out, dimColor.Sprint(msgWelcomeSub))
	fmt.Fprintln(r.out)
}

// Sync prints pending messages and waits while a request is in flight.
func (r *REPL) Sync(ctx context.Context) {
	coord := r.app.Coord
	for {
		st := coord.State()
		r.tr.Sync(st)
		if !st.Typing {
			return
		}
		select {
		case <-coord.Updates():
		case <-ctx.Done():
			coord.StopStreaming()
			r.tr.Sync(coord.State())
			return
		}
	}
}

// Handle runs one line. It reports whether the REPL should exit.
func (r *REPL) Handle(ctx context.Context, input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}
	switch strings.ToLower(input) {
	case "salir", "exit", "quit":
		return true
	}

	st := r.app.Coord.State()
	if st.Flow.Active {
		if _, err := strconv.Atoi(input); err == nil {
			input = "/opcion " + input
		}
	}

	if commands.IsCommand(input) {
		return r.runCommand(ctx, input)
	}

	text, err := validate.Input(input, st.Flow.Active)
	if err != nil {
		var inputErr *validate.InputError
		if errors.As(err, &inputErr) && inputErr.Silent() {
			return false
		}
		fmt.Fprintln(r.errOut, warningColor.Sprint(err.Error()))
		return false
	}

	r.tr.SkipUser(text)
	if !r.app.Coord.SendMessage(text) {
		r.tr.SkipUser("")
		fmt.Fprintln(r.errOut, warningColor.Sprint(msgBusy))
		return false
	}
	r.Sync(ctx)
	return false
}

func (r *REPL) runCommand(ctx context.Context, input string) bool {
	res, err := r.app.Registry.Execute(r.app.CommandContext(ctx), input)
	if err != nil {
		fmt.Fprintln(r.errOut, errorColor.Sprint(err.Error()))
		return false
	}

	r.Sync(ctx)
	if res.Output != "" {
		fmt.Fprintln(r.out, res.Output)
	}
	r.tr.PrintFlow(r.app.Coord.State())
	return res.Quit
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChat runs the REPL until the user exits or ctx is done.
func HandleChat(ctx context.Context, app *App, args Args) error {
	cli := NewChatCLI(DefaultHistoryFile())
	defer cli.Close()

	repl := NewREPL(app, os.Stdout, os.Stderr)
	cli.SetCompleter(repl.completer.Lines)

	if !args.Quiet {
		repl.PrintWelcome()
	}
	repl.Sync(ctx)
	repl.tr.PrintFlow(app.Coord.State())

	// Outside the prompt Ctrl+C arrives as a signal and stops the stream.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			app.Coord.StopStreaming()
		}
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}
		input, err := cli.ReadInput(repl.Prompt())
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				if !args.Quiet {
					fmt.Println(dimColor.Sprint(msgGoodbye))
				}
				return nil
			}
			return err
		}
		if repl.Handle(ctx, input) {
			if !args.Quiet {
				fmt.Println(dimColor.Sprint(msgGoodbye))
			}
			return nil
		}
	}
}
