// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/buhofis/buho-tui/internal/api"
	"github.com/buhofis/buho-tui/internal/model"
	"github.com/buhofis/buho-tui/internal/validate"
)

// =============================================================================
// LAYOUT
// =============================================================================

// render assembles the full screen. Sizes were fixed by layout().
func (m Model) render() string {
	w := m.mainWidth()

	parts := []string{m.renderHeader(w), m.viewport.View()}
	for _, p := range []string{
		m.renderFlowBar(w),
		m.renderOutput(w),
		m.renderInput(w),
		m.renderStatusBar(w),
	} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	main := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if !m.showSidebar() {
		return main
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), main)
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader(width int) string {
	left := m.theme.HeaderTitle.Render("BuhoFis") + " " +
		m.theme.HeaderSubtitle.Render("Asistente virtual")
	right := m.theme.Badge(m.st.Backend)

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m Model) renderSidebar() string {
	w := m.opts.SidebarWidth
	var b strings.Builder

	b.WriteString(m.theme.SidebarTitle.Render("Historial"))
	b.WriteString("\n")

	for i, c := range m.st.Chats {
		name := strings.Join(strings.Fields(c.Name), " ")
		if name == "" {
			name = model.DefaultChatName
		}
		line := runewidth.Truncate(fmt.Sprintf("%d. %s", i+1, name), w, "…")
		line = runewidth.FillRight(line, w)
		if c.ID == m.st.ActiveChatID {
			b.WriteString(m.theme.SidebarActive.Render(line))
		} else {
			b.WriteString(m.theme.SidebarItem.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.SidebarMeta.Render(runewidth.Truncate("C-n nueva · C-d eliminar", w, "…")))

	h := m.height
	if h < 1 {
		h = 1
	}
	return m.theme.Sidebar.Width(w + 2).Height(h).Render(b.String())
}

// =============================================================================
// MESSAGES
// =============================================================================

func (m Model) renderMessages(width int) string {
	if len(m.st.Messages) == 0 {
		return m.renderWelcome(width)
	}

	blocks := make([]string, 0, len(m.st.Messages))
	for _, msg := range m.st.Messages {
		blocks = append(blocks, m.renderMessage(msg, width))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderWelcome(width int) string {
	lines := []string{
		m.theme.BotLabel.Render("¡Hola! Soy BuhoFIS, tu asistente virtual"),
		m.theme.BotLabel.Render("Estoy aquí para ayudarte"),
		"",
		m.theme.Muted.Render("Escribe tu pregunta o usa “Opciones guiadas” (C-g)."),
		"",
	}
	for i, qa := range m.keyMap.QuickActions {
		lines = append(lines, m.theme.ShortcutKey.Render(qa.Help().Key)+" "+QuickActions[i])
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, lines...))
}

// bubbleWidth leaves a margin so user and bot bubbles stay distinguishable.
func bubbleWidth(width int) int {
	w := width * 4 / 5
	if w < 20 {
		w = width
	}
	return w
}

func (m Model) renderMessage(msg model.Message, width int) string {
	stamp := m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))
	bw := bubbleWidth(width)

	if msg.IsUser() {
		label := m.theme.UserLabel.Render(msg.Role.DisplayName()) + " " + stamp
		body := m.theme.UserBubble.Width(bw).Render(msg.Content)
		return lipgloss.PlaceHorizontal(width, lipgloss.Right,
			lipgloss.JoinVertical(lipgloss.Right, label, body))
	}

	label := m.theme.BotLabel.Render(msg.Role.DisplayName()) + " " + stamp

	if msg.IsNotice() {
		return label + "\n" + m.renderNotice(msg, bw)
	}

	// Border and padding take four columns.
	inner := bw - 4
	var content string
	switch {
	case msg.IsStreaming:
		content = lipgloss.NewStyle().Width(inner).Render(msg.Content + m.theme.Cursor.Render("▌"))
	case m.markdown != nil:
		content = m.markdown.Render(msg.Content, inner)
	default:
		content = lipgloss.NewStyle().Width(inner).Render(msg.Content)
	}

	if extra := m.renderAttachments(msg); extra != "" {
		content += "\n\n" + extra
	}
	return label + "\n" + m.theme.BotBubble.Width(bw).Render(content)
}

func (m Model) renderNotice(msg model.Message, width int) string {
	var b strings.Builder
	if msg.Title != "" {
		b.WriteString(m.theme.NoticeTitle.Render(msg.Title))
		b.WriteString("\n")
	}
	b.WriteString(msg.Content)
	if msg.Detail != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.NoticeDetail.Render(msg.Detail))
	}
	return m.theme.NoticeStyle(msg.Variant).Width(width).Render(b.String())
}

// renderAttachments lists the flow document and the answer sources.
func (m Model) renderAttachments(msg model.Message) string {
	var lines []string

	switch {
	case msg.FileMissing:
		lines = append(lines, m.theme.Muted.Render("Documento no disponible."))
	case msg.FileName != "":
		lines = append(lines, "Documento: "+m.theme.FileLink.Render(msg.FileName))
		if m.opts.APIBase != "" {
			lines = append(lines, m.theme.Muted.Render(api.DownloadURL(m.opts.APIBase, msg.FileName)))
		}
	}

	if len(msg.Sources) > 0 && !msg.IsStreaming {
		lines = append(lines, m.theme.SourcesHeader.Render("Fuentes"))
		for _, s := range msg.Sources {
			line := "• " + s.Label()
			if s.URL != "" {
				line += " " + m.theme.SourceLink.Render(s.URL)
			}
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// GUIDED FLOW BAR
// =============================================================================

func (m Model) renderFlowBar(width int) string {
	flow := m.st.Flow
	if !flow.Active && !flow.Loading {
		return ""
	}

	title := flow.Title
	if title == "" {
		title = model.DefaultFlowTitle
	}

	var rows []string
	rows = append(rows, m.theme.FlowTitle.Render(title)+"  "+
		m.theme.FlowHint.Render("Modo flujo · Permite resolver consultas mediante decisiones estructuradas"))

	if flow.Loading {
		rows = append(rows, m.spinner.View()+" Procesando...")
	} else {
		rows = append(rows, m.wrapChips(flow.Options, width-4)...)
	}

	if flow.Active {
		buttons := []string{
			m.theme.FlowButton.Render("C-b") + " Atrás",
			m.theme.FlowButton.Render("C-r") + " Reiniciar",
			m.theme.FlowButton.Render("C-x") + " Chat libre",
		}
		rows = append(rows, strings.Join(buttons, "   "))
	}

	return m.theme.FlowBar.Width(width - 2).Render(strings.Join(rows, "\n"))
}

// wrapChips lays the numbered options out in as many rows as the width
// needs. Options past the ninth have no key and are picked with /opcion.
func (m Model) wrapChips(opts []model.Option, width int) []string {
	var rows []string
	var row string
	for i, opt := range opts {
		chip := m.theme.FlowChipKey.Render(fmt.Sprintf("%d", i+1)) + " " + opt.Label
		switch {
		case row == "":
			row = chip
		case lipgloss.Width(row)+3+lipgloss.Width(chip) > width:
			rows = append(rows, row)
			row = chip
		default:
			row += "   " + chip
		}
	}
	if row != "" {
		rows = append(rows, row)
	}
	return rows
}

// =============================================================================
// INPUT AREA
// =============================================================================

// renderOutput shows command output, or the delete confirmation prompt.
func (m Model) renderOutput(width int) string {
	if m.confirmDelete {
		return m.theme.InputError.Render(msgConfirmDelete) + " " +
			m.theme.ShortcutKey.Render("[s/n]")
	}
	if m.output == "" {
		return ""
	}

	lines := strings.Split(strings.TrimRight(m.output, "\n"), "\n")
	limit := m.height / 3
	if limit < 3 {
		limit = 3
	}
	if len(lines) > limit {
		lines = append(lines[:limit-1], "…")
	}

	style := m.theme.CommandOutput
	if m.outputIsErr {
		style = style.Foreground(m.theme.InputError.GetForeground())
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderInput(width int) string {
	style := m.theme.Input
	if m.inputDisabled() {
		style = m.theme.InputDisabled
	}
	box := style.Width(width - 2).Render(m.input.View())

	var note string
	switch {
	case m.inputErr != "":
		note = m.theme.InputError.Render(m.inputErr)
	case m.input.Value() != "":
		count := fmt.Sprintf("%d/%d", len([]rune(m.input.Value())), validate.MaxInputRunes)
		note = lipgloss.PlaceHorizontal(width, lipgloss.Right, m.theme.Muted.Render(count))
	}
	if note == "" {
		return box
	}
	return box + "\n" + note
}

// =============================================================================
// STATUS BAR
// =============================================================================

func (m Model) helpContext() HelpContext {
	switch {
	case m.confirmDelete:
		return ContextConfirm
	case m.st.Streaming:
		return ContextStreaming
	case m.st.Flow.Active:
		return ContextFlow
	default:
		return ContextInput
	}
}

func (m Model) renderStatusBar(width int) string {
	var left string
	switch {
	case m.st.Streaming:
		left = m.spinner.View() + " Escribiendo..."
	case m.st.Typing:
		left = m.spinner.View() + " Procesando..."
	}

	shortcuts := make([]string, 0, 6)
	for _, b := range m.keyMap.ShortHelp(m.helpContext()) {
		shortcuts = append(shortcuts, m.renderBinding(b))
	}
	right := strings.Join(shortcuts, "  ")

	line := right
	if left != "" {
		line = left + "  " + right
	}
	inner := width - 2
	if lipgloss.Width(line) > inner {
		line = truncateStyled(line, inner)
	}
	return m.theme.StatusBar.Width(width).Render(line)
}

func (m Model) renderBinding(b key.Binding) string {
	h := b.Help()
	return m.theme.ShortcutKey.Render(h.Key) + " " + m.theme.ShortcutDesc.Render(h.Desc)
}

// truncateStyled cuts a styled line to width cells. lipgloss measures ANSI
// aware; MaxWidth does the cutting.
func truncateStyled(s string, width int) string {
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
