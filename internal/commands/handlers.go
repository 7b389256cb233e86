// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/buhofis/buho-tui/internal/coordinator"
	"github.com/buhofis/buho-tui/internal/export"
	"github.com/buhofis/buho-tui/internal/model"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Session is the part of the coordinator that commands drive.
// *coordinator.Coordinator implements it.
type Session interface {
	State() coordinator.State
	CreateChat() model.Chat
	SwitchChat(id int64) error
	DeleteChat(id int64) error
	ClearAll()
	StartFlow(ctx context.Context)
	RestartFlow(ctx context.Context)
	PickOption(ctx context.Context, id, label string) bool
	BackFlow(ctx context.Context)
	ExitFlow()
	StopStreaming()
}

// Context provides access to application state for command handlers.
type Context struct {
	// Ctx bounds network calls made by flow commands.
	Ctx     context.Context
	Session Session

	// Registry is used by /help.
	Registry *Registry

	// APIBase is shown by /status.
	APIBase string

	// Export configures /export. Nil means export.DefaultOptions.
	Export *export.Options
}

func (c *Context) ctx() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

// Result is what a command hands back to the presentation layer.
type Result struct {
	// Output is shown to the user; empty means the state change speaks
	// for itself.
	Output string
	// Quit asks the caller to exit.
	Quit bool
}

// =============================================================================
// ERRORS
// =============================================================================

// CommandError is a user-facing command failure.
type CommandError struct {
	Message string
}

func (e *CommandError) Error() string {
	return e.Message
}

// Is compares by message so sentinel values work with errors.Is.
func (e *CommandError) Is(target error) bool {
	t, ok := target.(*CommandError)
	return ok && t.Message == e.Message
}

var (
	// ErrNotCommand is returned by Execute for input without a leading slash.
	ErrNotCommand = &CommandError{Message: "no es un comando"}

	// ErrNotInFlow is returned by /opcion outside guided-flow mode.
	ErrNotInFlow = &CommandError{Message: "No estás en opciones guiadas. Usa /guia para empezar."}

	// ErrBusy is returned when the coordinator refused the request because
	// another one is in flight.
	ErrBusy = &CommandError{Message: "Espera a que termine la solicitud en curso."}
)

// UnknownCommandError names the command that was not found.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("Comando desconocido: %s. Escribe /help para ver los comandos.", e.Name)
}

// =============================================================================
// EXECUTION
// =============================================================================

// Execute parses input and runs the matching command.
func (r *Registry) Execute(ctx *Context, input string) (Result, error) {
	parsed := NewParser(r).Parse(input)
	if !parsed.IsCommand {
		return Result{}, ErrNotCommand
	}
	if parsed.Command == nil {
		return Result{}, &UnknownCommandError{Name: parsed.CommandName}
	}
	if err := ValidateArgs(parsed.Command, parsed.Args); err != nil {
		return Result{}, err
	}
	if ctx.Registry == nil {
		ctx.Registry = r
	}
	return parsed.Command.Handler(ctx, parsed.Args)
}

// =============================================================================
// CONVERSATION HANDLERS
// =============================================================================

// HandleNew creates a chat and makes it active.
func HandleNew(ctx *Context, args []string) (Result, error) {
	ctx.Session.CreateChat()
	return Result{Output: "Nueva conversación creada."}, nil
}

// HandleChats lists chats numbered for /switch and /delete.
func HandleChats(ctx *Context, args []string) (Result, error) {
	return Result{Output: FormatChatList(ctx.Session.State())}, nil
}

// FormatChatList renders the numbered chat list, marking the active chat.
func FormatChatList(st coordinator.State) string {
	var sb strings.Builder
	sb.WriteString("Conversaciones:\n")
	for i, c := range st.Chats {
		marker := " "
		if c.ID == st.ActiveChatID {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("  %s %d. %s (%d mensajes)\n", marker, i+1, c.Name, len(c.Messages)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// HandleSwitch activates the chat with the given list number.
func HandleSwitch(ctx *Context, args []string) (Result, error) {
	chat, err := chatByNumber(ctx.Session.State(), args[0])
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Session.SwitchChat(chat.ID); err != nil {
		return Result{}, err
	}
	return Result{Output: fmt.Sprintf("Conversación activa: %s", chat.Name)}, nil
}

// HandleDelete deletes the numbered chat, or the active one.
func HandleDelete(ctx *Context, args []string) (Result, error) {
	st := ctx.Session.State()
	id := st.ActiveChatID
	name := ""
	if len(args) > 0 {
		chat, err := chatByNumber(st, args[0])
		if err != nil {
			return Result{}, err
		}
		id, name = chat.ID, chat.Name
	} else {
		for _, c := range st.Chats {
			if c.ID == id {
				name = c.Name
			}
		}
	}
	if err := ctx.Session.DeleteChat(id); err != nil {
		return Result{}, err
	}
	return Result{Output: fmt.Sprintf("Conversación eliminada: %s", name)}, nil
}

// HandleClear removes every chat.
func HandleClear(ctx *Context, args []string) (Result, error) {
	ctx.Session.ClearAll()
	return Result{Output: "Se borraron todas las conversaciones."}, nil
}

// HandleExport writes the active chat as markdown or JSON.
func HandleExport(ctx *Context, args []string) (Result, error) {
	format, path := "md", ""
	if len(args) > 0 {
		format = args[0]
	}
	if len(args) > 1 {
		path = args[1]
	}

	opts := ctx.Export
	if opts == nil {
		opts = export.DefaultOptions()
	}
	exp, err := export.ForFormat(format, opts)
	if err != nil {
		return Result{}, err
	}

	st := ctx.Session.State()
	var chat model.Chat
	for _, c := range st.Chats {
		if c.ID == st.ActiveChatID {
			chat = c
		}
	}
	written, err := export.ExportToFile(chat, exp, path, opts)
	if errors.Is(err, export.ErrEmptyChat) {
		return Result{}, &CommandError{Message: "La conversación activa no tiene mensajes."}
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Output: fmt.Sprintf("Exportado a %s", written)}, nil
}

// HandleStop cancels the in-flight answer.
func HandleStop(ctx *Context, args []string) (Result, error) {
	if !ctx.Session.State().Streaming {
		return Result{Output: "No hay ninguna respuesta en curso."}, nil
	}
	ctx.Session.StopStreaming()
	return Result{}, nil
}

// =============================================================================
// GUIDED FLOW HANDLERS
// =============================================================================

// HandleGuide enters guided-flow mode.
func HandleGuide(ctx *Context, args []string) (Result, error) {
	if ctx.Session.State().Typing {
		return Result{}, ErrBusy
	}
	ctx.Session.StartFlow(ctx.ctx())
	return Result{}, nil
}

// HandleOption picks the numbered option from the current flow node.
func HandleOption(ctx *Context, args []string) (Result, error) {
	st := ctx.Session.State()
	if !st.Flow.Active {
		return Result{}, ErrNotInFlow
	}
	n, err := parseNumber(args[0], len(st.Flow.Options))
	if err != nil {
		if len(st.Flow.Options) == 0 {
			return Result{}, &CommandError{Message: "No hay opciones disponibles. Usa /atras o /reiniciar."}
		}
		return Result{}, err
	}
	opt := st.Flow.Options[n-1]
	if !ctx.Session.PickOption(ctx.ctx(), opt.ID, opt.Label) {
		return Result{}, ErrBusy
	}
	return Result{}, nil
}

// HandleBack goes one step back in the flow.
func HandleBack(ctx *Context, args []string) (Result, error) {
	if ctx.Session.State().Typing {
		return Result{}, ErrBusy
	}
	ctx.Session.BackFlow(ctx.ctx())
	return Result{}, nil
}

// HandleRestart returns to the flow root.
func HandleRestart(ctx *Context, args []string) (Result, error) {
	if ctx.Session.State().Typing {
		return Result{}, ErrBusy
	}
	ctx.Session.RestartFlow(ctx.ctx())
	return Result{}, nil
}

// HandleFree leaves guided-flow mode.
func HandleFree(ctx *Context, args []string) (Result, error) {
	ctx.Session.ExitFlow()
	return Result{}, nil
}

// =============================================================================
// GENERAL HANDLERS
// =============================================================================

// HandleHelp shows all commands or one command's usage.
func HandleHelp(ctx *Context, args []string) (Result, error) {
	if len(args) > 0 {
		name := args[0]
		if !strings.HasPrefix(name, "/") {
			name = "/" + name
		}
		cmd := ctx.Registry.Get(name)
		if cmd == nil {
			return Result{}, &UnknownCommandError{Name: name}
		}
		return Result{Output: commandHelp(cmd)}, nil
	}
	return Result{Output: GenerateHelpText(ctx.Registry)}, nil
}

// HandleStatus reports reachability and session state.
func HandleStatus(ctx *Context, args []string) (Result, error) {
	return Result{Output: GenerateStatusText(ctx.Session.State(), ctx.APIBase)}, nil
}

// HandleQuit asks the caller to exit.
func HandleQuit(ctx *Context, args []string) (Result, error) {
	ctx.Session.StopStreaming()
	return Result{Quit: true}, nil
}

// =============================================================================
// HELP AND STATUS TEXT
// =============================================================================

// GenerateHelpText generates the help text for all visible commands.
func GenerateHelpText(r *Registry) string {
	var sb strings.Builder
	sb.WriteString("Comandos disponibles\n")
	sb.WriteString("====================\n")

	categories := r.ByCategory()
	for _, category := range categoryOrder {
		cmds := categories[category]
		if len(cmds) == 0 {
			continue
		}
		sb.WriteString("\n" + category + "\n")
		for _, cmd := range cmds {
			line := "  " + cmd.Name
			if cmd.Usage != "" {
				line = "  " + cmd.Usage
			}
			for len([]rune(line)) < 30 {
				line += " "
			}
			sb.WriteString(line + cmd.Description + "\n")
		}
	}

	sb.WriteString("\nCualquier otro texto se envía como pregunta.\n")
	return sb.String()
}

func commandHelp(cmd *Command) string {
	var sb strings.Builder
	sb.WriteString(cmd.Name + " - " + cmd.Description + "\n")
	if cmd.Usage != "" {
		sb.WriteString("  Uso: " + cmd.Usage + "\n")
	}
	if len(cmd.Aliases) > 0 {
		sb.WriteString("  Alias: " + strings.Join(cmd.Aliases, ", ") + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// GenerateStatusText summarizes the coordinator state.
func GenerateStatusText(st coordinator.State, apiBase string) string {
	var sb strings.Builder
	sb.WriteString("Estado\n")
	sb.WriteString("======\n")
	if apiBase != "" {
		sb.WriteString(fmt.Sprintf("  Backend:        %s %s\n", apiBase, st.Backend.Badge()))
	} else {
		sb.WriteString(fmt.Sprintf("  Backend:        %s\n", st.Backend.Badge()))
	}
	sb.WriteString(fmt.Sprintf("  Conversaciones: %d\n", len(st.Chats)))
	sb.WriteString(fmt.Sprintf("  Mensajes:       %d\n", len(st.Messages)))

	mode := "chat libre"
	if st.Flow.Active {
		mode = "opciones guiadas"
		if len(st.Flow.Path) > 0 {
			mode += " (" + strings.Join(st.Flow.Path, " > ") + ")"
		}
	}
	sb.WriteString(fmt.Sprintf("  Modo:           %s\n", mode))

	switch {
	case st.Streaming:
		sb.WriteString("  Actividad:      respondiendo\n")
	case st.Flow.Loading:
		sb.WriteString("  Actividad:      cargando opciones\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// =============================================================================
// HELPERS
// =============================================================================

func chatByNumber(st coordinator.State, arg string) (model.Chat, error) {
	n, err := parseNumber(arg, len(st.Chats))
	if err != nil {
		return model.Chat{}, err
	}
	return st.Chats[n-1], nil
}

// parseNumber parses a 1-based index in [1, limit].
func parseNumber(arg string, limit int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 || n > limit {
		return 0, &CommandError{Message: fmt.Sprintf("Número inválido %q: usa un valor entre 1 y %d.", arg, limit)}
	}
	return n, nil
}
