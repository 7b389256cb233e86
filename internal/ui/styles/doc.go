// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the BuhoFis TUI.

All colors use Lip Gloss AdaptiveColor so one palette serves light and dark
terminals. The palette follows the BuhoFis brand blues and greens.

# Key Types

  - Theme: every lipgloss style the chat view renders with
  - LayoutMode: narrow, medium or wide, derived from the terminal width

# Usage

	theme := styles.NewTheme(cfg.UI.Theme)
	theme.SetSize(width, height)
	header := theme.HeaderTitle.Render("BuhoFis") + " " + theme.Badge(state.Backend)

NewTheme("auto") asks the terminal for its background through termenv.
"dark" and "light" force the choice for lipgloss as well, which keeps
AdaptiveColor consistent with the glamour style returned by GlamourStyle.
*/
package styles
