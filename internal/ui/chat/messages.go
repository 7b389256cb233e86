// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/buhofis/buho-tui/internal/commands"
)

// =============================================================================
// COORDINATOR MESSAGES
// =============================================================================

// StateChangedMsg signals that the coordinator published a new state.
type StateChangedMsg struct{}

// updatesClosedMsg signals that the coordinator stopped publishing.
type updatesClosedMsg struct{}

// waitForUpdate blocks on the coordinator's update channel. The model
// re-issues it after every StateChangedMsg.
func waitForUpdate(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return updatesClosedMsg{}
		}
		return StateChangedMsg{}
	}
}

// =============================================================================
// COMMAND MESSAGES
// =============================================================================

// CommandResultMsg carries the outcome of a slash command or a shortcut
// that runs one. Flow commands block on the network, so they always run
// in a tea.Cmd.
type CommandResultMsg struct {
	Input  string
	Result commands.Result
	Err    error
}
