// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat interface.
type KeyMap struct {
	Submit key.Binding
	Stop   key.Binding
	Quit   key.Binding

	NewChat    key.Binding
	DeleteChat key.Binding
	NextChat   key.Binding
	PrevChat   key.Binding

	Guide    key.Binding
	Back     key.Binding
	Restart  key.Binding
	FreeChat key.Binding
	Option   key.Binding

	QuickActions []key.Binding

	PageUp   key.Binding
	PageDown key.Binding

	Confirm key.Binding
	Decline key.Binding
}

// DefaultKeyMap returns the default key bindings for the chat interface.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "enviar"),
		),
		Stop: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "detener"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "salir"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "nueva"),
		),
		DeleteChat: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("C-d", "eliminar"),
		),
		NextChat: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "siguiente chat"),
		),
		PrevChat: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-Tab", "chat anterior"),
		),
		Guide: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("C-g", "opciones guiadas"),
		),
		Back: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("C-b", "atrás"),
		),
		Restart: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "reiniciar"),
		),
		FreeChat: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "chat libre"),
		),
		Option: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "elegir opción"),
		),
		QuickActions: []key.Binding{
			key.NewBinding(key.WithKeys("f1"), key.WithHelp("F1", QuickActions[0])),
			key.NewBinding(key.WithKeys("f2"), key.WithHelp("F2", QuickActions[1])),
			key.NewBinding(key.WithKeys("f3"), key.WithHelp("F3", QuickActions[2])),
		},
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "subir"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "bajar"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("s", "S", "y", "Y", "enter"),
			key.WithHelp("s", "confirmar"),
		),
		Decline: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "cancelar"),
		),
	}
}

// QuickActions are the suggested questions bound to F1-F3. Picking one puts
// the label into the input box.
var QuickActions = []string{
	"Malla curricular",
	"Trámites administrativos",
	"Información General",
}

// =============================================================================
// CONTEXT-AWARE HELP
// =============================================================================

// HelpContext represents the UI context for filtering the shortcut bar.
type HelpContext string

const (
	ContextInput     HelpContext = "input"
	ContextStreaming HelpContext = "streaming"
	ContextFlow      HelpContext = "flow"
	ContextConfirm   HelpContext = "confirm"
)

// ShortHelp returns the bindings shown in the status bar for ctx.
func (k KeyMap) ShortHelp(ctx HelpContext) []key.Binding {
	switch ctx {
	case ContextStreaming:
		return []key.Binding{k.Stop, k.PageUp, k.PageDown, k.Quit}
	case ContextFlow:
		return []key.Binding{k.Option, k.Back, k.Restart, k.FreeChat, k.Quit}
	case ContextConfirm:
		return []key.Binding{k.Confirm, k.Decline}
	default:
		return []key.Binding{k.Submit, k.Guide, k.NewChat, k.DeleteChat, k.NextChat, k.Quit}
	}
}

// FullHelp returns every binding grouped for a help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Stop, k.Quit},
		{k.NewChat, k.DeleteChat, k.NextChat, k.PrevChat},
		{k.Guide, k.Option, k.Back, k.Restart, k.FreeChat},
		append([]key.Binding{k.PageUp, k.PageDown}, k.QuickActions...),
	}
}
