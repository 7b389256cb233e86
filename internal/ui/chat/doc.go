// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the Bubble Tea chat view of the BuhoFis TUI.

The view owns no chat state. It renders snapshots published by the
coordinator and turns keys into coordinator calls or slash commands.

# Key Types

  - Model: the tea.Model with the sidebar, message viewport, guided flow
    bar, input box and status bar
  - Coordinator: what the view drives; *coordinator.Coordinator satisfies it
  - KeyMap: the keyboard bindings, with context-aware short help

# Layout

	+-----------+----------------------------------------+
	| Historial | BuhoFis Asistente virtual   [EN LÍNEA] |
	| 1. ...    | messages (viewport)                    |
	| 2. ...    | guided flow bar (flow mode only)       |
	|           | command output                         |
	|           | > input                                |
	|           | status bar                             |
	+-----------+----------------------------------------+

The sidebar hides below 60 columns.

# Updates

Init subscribes to Coordinator.Updates with a blocking tea.Cmd. Every
StateChangedMsg pulls a fresh State and re-subscribes. Flow commands call
the network, so they run in tea.Cmds and report back with CommandResultMsg.

# Usage

	m := chat.New(coord, styles.NewTheme(cfg.UI.Theme), log, chat.Options{
		Context:  ctx,
		Markdown: cfg.UI.Markdown,
		APIBase:  cfg.Backend.BaseURL,
	})
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
*/
package chat
