// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buhofis/buho-tui/internal/model"
)

// =============================================================================
// THEME CREATION TESTS
// =============================================================================

func TestNewTheme_ForcedModes(t *testing.T) {
	dark := NewTheme(ModeDark)
	require.NotNil(t, dark)
	assert.True(t, dark.IsDark)
	assert.Equal(t, "dark", dark.GlamourStyle())

	light := NewTheme("LIGHT")
	require.NotNil(t, light)
	assert.False(t, light.IsDark)
	assert.Equal(t, "light", light.GlamourStyle())
}

func TestNewTheme_StylesInitialized(t *testing.T) {
	theme := NewTheme(ModeDark)

	for name, rendered := range map[string]string{
		"HeaderTitle": theme.HeaderTitle.Render("BuhoFis"),
		"UserBubble":  theme.UserBubble.Render("hola"),
		"BotBubble":   theme.BotBubble.Render("hola"),
		"FlowChip":    theme.FlowChip.Render("Malla"),
		"Input":       theme.Input.Render("texto"),
		"StatusBar":   theme.StatusBar.Render("listo"),
	} {
		assert.NotEmpty(t, rendered, name)
	}
}

// =============================================================================
// BADGE AND NOTICE TESTS
// =============================================================================

func TestBadge(t *testing.T) {
	theme := NewTheme(ModeDark)

	tests := []struct {
		reach model.Reachability
		want  string
	}{
		{model.ReachOnline, "[EN LÍNEA]"},
		{model.ReachOffline, "[SIN CONEXIÓN]"},
		{model.ReachUnknown, "[CONECTANDO]"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.True(t, strings.Contains(theme.Badge(tt.reach), tt.want))
		})
	}
}

func TestNoticeStyle(t *testing.T) {
	theme := NewTheme(ModeLight)

	assert.Equal(t, theme.NoticeError.GetBorderLeftForeground(), theme.NoticeStyle(model.VariantError).GetBorderLeftForeground())
	assert.Equal(t, theme.NoticeWarning.GetBorderLeftForeground(), theme.NoticeStyle(model.VariantWarning).GetBorderLeftForeground())
	assert.Equal(t, theme.NoticeInfo.GetBorderLeftForeground(), theme.NoticeStyle(model.VariantInfo).GetBorderLeftForeground())
	assert.Equal(t, theme.NoticeInfo.GetBorderLeftForeground(), theme.NoticeStyle(model.VariantNone).GetBorderLeftForeground())
}

// =============================================================================
// LAYOUT TESTS
// =============================================================================

func TestGetLayoutMode(t *testing.T) {
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
		{200, LayoutWide},
	}

	theme := NewTheme(ModeDark)
	for _, tt := range tests {
		theme.SetSize(tt.width, 30)
		assert.Equal(t, tt.want, theme.GetLayoutMode(), "width %d", tt.width)
	}
}
