// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/buhofis/buho-tui/internal/model"
)

// Theme modes accepted by NewTheme.
const (
	ModeAuto  = "auto"
	ModeDark  = "dark"
	ModeLight = "light"
)

// Theme contains all styled components for the TUI.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Dimensions
	Width  int
	Height int

	// ==========================================================================
	// LAYOUT
	// ==========================================================================

	App            lipgloss.Style
	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	BadgeOnline     lipgloss.Style
	BadgeOffline    lipgloss.Style
	BadgeConnecting lipgloss.Style

	// ==========================================================================
	// SIDEBAR
	// ==========================================================================

	Sidebar       lipgloss.Style
	SidebarTitle  lipgloss.Style
	SidebarItem   lipgloss.Style
	SidebarActive lipgloss.Style
	SidebarMeta   lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	UserBubble lipgloss.Style
	UserLabel  lipgloss.Style
	BotBubble  lipgloss.Style
	BotLabel   lipgloss.Style
	Timestamp  lipgloss.Style
	Cursor     lipgloss.Style

	NoticeInfo    lipgloss.Style
	NoticeWarning lipgloss.Style
	NoticeError   lipgloss.Style
	NoticeTitle   lipgloss.Style
	NoticeDetail  lipgloss.Style

	SourcesHeader lipgloss.Style
	SourceLink    lipgloss.Style
	FileLink      lipgloss.Style

	// ==========================================================================
	// GUIDED FLOW
	// ==========================================================================

	FlowBar     lipgloss.Style
	FlowTitle   lipgloss.Style
	FlowHint    lipgloss.Style
	FlowButton  lipgloss.Style
	FlowChip    lipgloss.Style
	FlowChipKey lipgloss.Style

	// ==========================================================================
	// INPUT AND STATUS
	// ==========================================================================

	Input         lipgloss.Style
	InputDisabled lipgloss.Style
	InputError    lipgloss.Style
	CommandOutput lipgloss.Style

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	Spinner      lipgloss.Style
	Muted        lipgloss.Style
}

// NewTheme creates a theme. mode is auto, dark or light; anything else is
// treated as auto.
func NewTheme(mode string) *Theme {
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeDark:
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	case ModeLight:
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// GlamourStyle names the glamour standard style matching the background.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle()

	// Header
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryBlue)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Reachability badges. Text is carried by the badge itself, color is
	// secondary.
	t.BadgeOnline = lipgloss.NewStyle().Bold(true).Foreground(Green)
	t.BadgeOffline = lipgloss.NewStyle().Bold(true).Foreground(Rose)
	t.BadgeConnecting = lipgloss.NewStyle().Bold(true).Foreground(Amber)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.SidebarTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(DarkBlue).
		MarginBottom(1)

	t.SidebarItem = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.SidebarActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(PrimaryBlue)

	t.SidebarMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1)

	t.UserLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryBlue)

	t.BotBubble = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(BotBubbleBorder).
		Padding(0, 1)

	t.BotLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Green)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Cursor = lipgloss.NewStyle().
		Foreground(PrimaryBlue).
		Blink(true)

	// Notices
	notice := lipgloss.NewStyle().
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderTop(false).
		BorderRight(false).
		BorderBottom(false).
		PaddingLeft(1)

	t.NoticeInfo = notice.BorderForeground(Sky)
	t.NoticeWarning = notice.BorderForeground(Amber)
	t.NoticeError = notice.BorderForeground(Rose)

	t.NoticeTitle = lipgloss.NewStyle().Bold(true)
	t.NoticeDetail = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Sources
	t.SourcesHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.SourceLink = lipgloss.NewStyle().
		Foreground(LightBlue).
		Underline(true)

	t.FileLink = lipgloss.NewStyle().
		Foreground(Green).
		Underline(true)

	// Guided flow bar
	t.FlowBar = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Green).
		Padding(0, 1)

	t.FlowTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(DarkBlue)

	t.FlowHint = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.FlowButton = lipgloss.NewStyle().
		Foreground(PrimaryBlue).
		Bold(true)

	t.FlowChip = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(LightGreen).
		Padding(0, 1)

	t.FlowChipKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(LightGreen)

	// Input
	t.Input = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryBlue).
		Padding(0, 1)

	t.InputDisabled = t.Input.
		BorderForeground(Overlay).
		Foreground(TextMuted)

	t.InputError = lipgloss.NewStyle().
		Foreground(Rose)

	t.CommandOutput = lipgloss.NewStyle().
		Foreground(TextSecondary).
		PaddingLeft(1)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryBlue)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Spinner = lipgloss.NewStyle().
		Foreground(PrimaryBlue)

	t.Muted = lipgloss.NewStyle().
		Foreground(TextMuted)
}

// Badge renders the backend reachability badge.
func (t *Theme) Badge(r model.Reachability) string {
	switch r {
	case model.ReachOnline:
		return t.BadgeOnline.Render(r.Badge())
	case model.ReachOffline:
		return t.BadgeOffline.Render(r.Badge())
	default:
		return t.BadgeConnecting.Render(r.Badge())
	}
}

// NoticeStyle returns the border style of a notice variant.
func (t *Theme) NoticeStyle(v model.Variant) lipgloss.Style {
	switch v {
	case model.VariantError:
		return t.NoticeError
	case model.VariantWarning:
		return t.NoticeWarning
	default:
		return t.NoticeInfo
	}
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns, sidebar hidden
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
