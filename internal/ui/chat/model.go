// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/buhofis/buho-tui/internal/commands"
	"github.com/buhofis/buho-tui/internal/coordinator"
	"github.com/buhofis/buho-tui/internal/export"
	"github.com/buhofis/buho-tui/internal/logging"
	"github.com/buhofis/buho-tui/internal/ui/styles"
	"github.com/buhofis/buho-tui/internal/validate"
)

// =============================================================================
// COORDINATOR INTERFACE
// =============================================================================

// Coordinator is what the chat view drives. *coordinator.Coordinator
// implements it.
type Coordinator interface {
	commands.Session
	SendMessage(text string) bool
	SetInput(text string)
	Prefill(text string)
	Updates() <-chan struct{}
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options configure the chat view.
type Options struct {
	// Context bounds the network calls of flow commands.
	Context context.Context

	// Markdown renders finished bot answers with glamour.
	Markdown bool

	// SidebarWidth is the chat list width in columns; 0 hides it. The
	// sidebar also hides in narrow terminals.
	SidebarWidth int

	// APIBase is shown by /status and used for document links.
	APIBase string

	// Export configures /export.
	Export *export.Options
}

// User-facing strings.
const (
	placeholderFree  = "Escribe tu pregunta aquí..."
	placeholderFlow  = "Estás en opciones guiadas. Usa los botones de arriba o presiona “Chat libre”."
	placeholderBusy  = "Espera a que termine la respuesta..."
	msgStillBusy     = "Espera a que termine la respuesta actual."
	msgConfirmDelete = "¿Deseas eliminar esta conversación? Esta acción no se puede deshacer."
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view. Every piece of chat
// state lives in the coordinator; the model keeps a snapshot of it plus
// purely visual state.
type Model struct {
	coord     Coordinator
	registry  *commands.Registry
	completer *commands.Completer
	theme     *styles.Theme
	log       logging.Logger
	opts      Options

	// Latest coordinator snapshot
	st       coordinator.State
	inputRev uint64

	// Dimensions
	width  int
	height int
	ready  bool

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keyMap   KeyMap
	markdown *markdownRenderer

	// Transient feedback
	output      string
	outputIsErr bool
	inputErr    string

	// Delete confirmation prompt
	confirmDelete bool

	// Tab completion cycle
	completions   []string
	completionIdx int
}

// New creates the chat view on top of coord.
func New(coord Coordinator, theme *styles.Theme, log logging.Logger, opts Options) Model {
	if log == nil {
		log = logging.NewNop()
	}
	if theme == nil {
		theme = styles.NewTheme(styles.ModeAuto)
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholderFree
	ti.CharLimit = validate.MaxInputRunes
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	sp.Style = theme.Spinner

	registry := commands.NewRegistry()

	m := Model{
		coord:     coord,
		registry:  registry,
		completer: commands.NewCompleter(registry, coord.State),
		theme:     theme,
		log:       log,
		opts:      opts,
		viewport:  vp,
		input:     ti,
		spinner:   sp,
		keyMap:    DefaultKeyMap(),
	}
	if opts.Markdown {
		m.markdown = newMarkdownRenderer(theme.GlamourStyle())
	}

	m.st = coord.State()
	m.inputRev = m.st.InputRev
	m.input.SetValue(m.st.Input)
	m.input.CursorEnd()
	m.updateInputState()
	return m
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blink, the spinner and the coordinator
// subscription.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		waitForUpdate(m.coord.Updates()),
	)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case StateChangedMsg:
		m.syncState()
		return m, waitForUpdate(m.coord.Updates())

	case updatesClosedMsg:
		return m, nil

	case CommandResultMsg:
		return m.handleCommandResult(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat view.
func (m Model) View() string {
	if !m.ready {
		return "Cargando..."
	}
	return m.render()
}

// =============================================================================
// STATE SYNC
// =============================================================================

// syncState pulls a fresh snapshot. The input box is overwritten only when
// the coordinator replaced the pending text.
func (m *Model) syncState() {
	prevChat := m.st.ActiveChatID
	prevCount := len(m.st.Messages)

	m.st = m.coord.State()
	if m.st.InputRev != m.inputRev {
		m.inputRev = m.st.InputRev
		m.input.SetValue(m.st.Input)
		m.input.CursorEnd()
	}
	if prevChat != m.st.ActiveChatID {
		m.confirmDelete = false
	}

	m.updateInputState()
	m.layout()
	m.refreshViewport(prevChat != m.st.ActiveChatID || len(m.st.Messages) != prevCount)
}

// inputDisabled reports whether typing is blocked: in guided-flow mode or
// while anything is in flight.
func (m Model) inputDisabled() bool {
	return m.st.Flow.Active || m.st.Typing
}

func (m *Model) updateInputState() {
	switch {
	case m.st.Flow.Active:
		m.input.Placeholder = placeholderFlow
		m.input.Blur()
	case m.st.Typing:
		m.input.Placeholder = placeholderBusy
		m.input.Blur()
	default:
		m.input.Placeholder = placeholderFree
		m.input.Focus()
	}
}

// =============================================================================
// RESIZE AND LAYOUT
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.theme.SetSize(m.width, m.height)

	m.layout()
	m.refreshViewport(true)
	return m, nil
}

// showSidebar reports whether the terminal is wide enough for the chat
// list.
func (m Model) showSidebar() bool {
	return m.opts.SidebarWidth > 0 && m.theme.GetLayoutMode() != styles.LayoutNarrow
}

// mainWidth is the width left for the conversation column.
func (m Model) mainWidth() int {
	w := m.width
	if m.showSidebar() {
		w -= lipgloss.Width(m.renderSidebar())
	}
	if w < 20 {
		w = 20
	}
	return w
}

// layout sizes the viewport to whatever the fixed rows leave over. The
// rows are measured rather than assumed.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	w := m.mainWidth()

	const promptLen = 2
	inputWidth := w - 4 - promptLen
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	reserved := lipgloss.Height(m.renderHeader(w)) +
		lipgloss.Height(m.renderFlowBar(w)) +
		lipgloss.Height(m.renderOutput(w)) +
		lipgloss.Height(m.renderInput(w)) +
		lipgloss.Height(m.renderStatusBar(w))

	h := m.height - reserved
	if h < 3 {
		h = 3
	}
	m.viewport.Width = w
	m.viewport.Height = h
}

// refreshViewport re-renders the conversation. The view sticks to the
// bottom when it already was there or when forced.
func (m *Model) refreshViewport(forceBottom bool) {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderMessages(m.viewport.Width))
	if forceBottom || atBottom {
		m.viewport.GotoBottom()
	}
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keyMap

	if key.Matches(msg, k.Quit) {
		m.coord.StopStreaming()
		return m, tea.Quit
	}

	if m.confirmDelete {
		switch {
		case key.Matches(msg, k.Confirm):
			m.confirmDelete = false
			m.layout()
			return m, m.runCommand("/delete")
		case key.Matches(msg, k.Decline):
			m.confirmDelete = false
			m.layout()
		}
		return m, nil
	}

	if !key.Matches(msg, k.NextChat, k.PrevChat) {
		m.completions = nil
	}

	switch {
	case key.Matches(msg, k.Stop):
		if m.st.Streaming {
			m.coord.StopStreaming()
			return m, nil
		}
		m.clearFeedback()
		return m, nil

	case key.Matches(msg, k.NewChat):
		return m, m.runCommand("/new")

	case key.Matches(msg, k.DeleteChat):
		m.confirmDelete = true
		m.layout()
		return m, nil

	case key.Matches(msg, k.NextChat):
		return m.handleTab(1)

	case key.Matches(msg, k.PrevChat):
		return m.handleTab(-1)

	case key.Matches(msg, k.Guide):
		return m, m.runCommand("/guia")

	case key.Matches(msg, k.Back):
		if m.st.Flow.Active {
			return m, m.runCommand("/atras")
		}
		return m, nil

	case key.Matches(msg, k.Restart):
		if m.st.Flow.Active {
			return m, m.runCommand("/reiniciar")
		}
		return m, nil

	case key.Matches(msg, k.FreeChat):
		if m.st.Flow.Active {
			return m, m.runCommand("/libre")
		}
		return m, nil

	case key.Matches(msg, k.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, k.PageDown):
		m.viewport.ViewDown()
		return m, nil
	}

	for i, qa := range k.QuickActions {
		if key.Matches(msg, qa) {
			m.clearFeedback()
			m.coord.Prefill(QuickActions[i])
			return m, nil
		}
	}

	if m.st.Flow.Active && key.Matches(msg, k.Option) {
		return m, m.runCommand("/opcion " + msg.String())
	}

	if m.inputDisabled() {
		return m, nil
	}

	if key.Matches(msg, k.Submit) {
		return m.submit()
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != prev {
		m.coord.SetInput(v)
		if m.inputErr != "" {
			m.inputErr = ""
			m.layout()
		}
	}
	return m, cmd
}

// handleTab completes a slash command in the input box, or cycles through
// the chats when there is nothing to complete.
func (m Model) handleTab(delta int) (tea.Model, tea.Cmd) {
	value := m.input.Value()
	if !m.inputDisabled() && strings.HasPrefix(value, "/") {
		if m.completions == nil {
			m.completions = m.completer.Lines(value)
			m.completionIdx = -1
			if delta < 0 {
				m.completionIdx = 0
			}
		}
		if n := len(m.completions); n > 0 {
			m.completionIdx = ((m.completionIdx+delta)%n + n) % n
			m.input.SetValue(m.completions[m.completionIdx])
			m.input.CursorEnd()
			m.coord.SetInput(m.input.Value())
		}
		return m, nil
	}

	chats := m.st.Chats
	if len(chats) < 2 {
		return m, nil
	}
	idx := 0
	for i, c := range chats {
		if c.ID == m.st.ActiveChatID {
			idx = i
			break
		}
	}
	next := ((idx+delta)%len(chats) + len(chats)) % len(chats)
	if err := m.coord.SwitchChat(chats[next].ID); err != nil {
		m.setOutput(err.Error(), true)
	}
	return m, nil
}

// submit sends the input as a question, or runs it when it is a slash
// command.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := m.input.Value()

	if commands.IsCommand(text) {
		m.input.Reset()
		m.coord.SetInput("")
		return m, m.runCommand(text)
	}

	clean, err := validate.Input(text, m.st.Flow.Active)
	if err != nil {
		var ie *validate.InputError
		if errors.As(err, &ie) && ie.Silent() {
			return m, nil
		}
		m.inputErr = err.Error()
		m.layout()
		return m, nil
	}

	m.clearFeedback()
	if !m.coord.SendMessage(clean) {
		m.setOutput(msgStillBusy, true)
		return m, nil
	}
	m.input.Reset()
	return m, nil
}

// =============================================================================
// COMMANDS
// =============================================================================

// runCommand executes a slash command off the UI goroutine.
func (m Model) runCommand(input string) tea.Cmd {
	cctx := &commands.Context{
		Ctx:      m.opts.Context,
		Session:  m.coord,
		Registry: m.registry,
		APIBase:  m.opts.APIBase,
		Export:   m.opts.Export,
	}
	registry := m.registry
	log := m.log
	return func() tea.Msg {
		res, err := registry.Execute(cctx, input)
		if err != nil {
			log.Debug("ui", "command failed", map[string]interface{}{
				"input": input,
				"error": err.Error(),
			})
		}
		return CommandResultMsg{Input: input, Result: res, Err: err}
	}
}

func (m Model) handleCommandResult(msg CommandResultMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Err != nil:
		m.setOutput(msg.Err.Error(), true)
	case msg.Result.Output != "":
		m.setOutput(msg.Result.Output, false)
	}
	if msg.Result.Quit {
		m.coord.StopStreaming()
		return m, tea.Quit
	}
	m.syncState()
	return m, nil
}

func (m *Model) setOutput(text string, isErr bool) {
	m.output = text
	m.outputIsErr = isErr
	m.layout()
}

func (m *Model) clearFeedback() {
	m.output = ""
	m.outputIsErr = false
	m.inputErr = ""
	m.layout()
}

// =============================================================================
// ACCESSORS
// =============================================================================

// State returns the last coordinator snapshot the view rendered.
func (m Model) State() coordinator.State {
	return m.st
}

// InputValue returns the text in the input box.
func (m Model) InputValue() string {
	return m.input.Value()
}

// Output returns the last command output or error shown above the input.
func (m Model) Output() string {
	return m.output
}

// InputError returns the last validation message.
func (m Model) InputError() string {
	return m.inputErr
}

// ConfirmingDelete reports whether the delete prompt is showing.
func (m Model) ConfirmingDelete() bool {
	return m.confirmDelete
}
