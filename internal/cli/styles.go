// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Shared colors for the line-oriented buho commands.
//
// Colors are disabled for non-TTY output, NO_COLOR and --no-color.

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/buhofis/buho-tui/internal/model"
)

// =============================================================================
// SHARED COLORS
// =============================================================================

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	botColor     = color.New(color.FgBlue, color.Bold)
	userColor    = color.New(color.FgGreen)
	labelColor   = color.New(color.FgHiBlack)
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	dimColor     = color.New(color.Faint)
	linkColor    = color.New(color.FgBlue, color.Underline)
	keyColor     = color.New(color.FgMagenta, color.Bold)
)

// ConfigureColors turns colored output on or off for the whole process.
func ConfigureColors(noColorFlag bool) {
	color.NoColor = noColorFlag || !ColorsEnabled()
}

// =============================================================================
// HELPERS
// =============================================================================

// RenderSeparator returns a horizontal rule of width cells (70 when unset).
func RenderSeparator(width ...int) string {
	w := 70
	if len(width) > 0 && width[0] > 0 {
		w = width[0]
	}
	return dimColor.Sprint(strings.Repeat("─", w))
}

// RenderLabel pads label to width so values line up.
func RenderLabel(label string, width int) string {
	if pad := width - len([]rune(label)); pad > 0 {
		label += strings.Repeat(" ", pad)
	}
	return labelColor.Sprint(label)
}

// RenderBadge colors the reachability badge.
func RenderBadge(r model.Reachability) string {
	switch r {
	case model.ReachOnline:
		return successColor.Sprint(r.Badge())
	case model.ReachOffline:
		return errorColor.Sprint(r.Badge())
	default:
		return warningColor.Sprint(r.Badge())
	}
}

// variantColor picks the color of a notice.
func variantColor(v model.Variant) *color.Color {
	switch v {
	case model.VariantError:
		return errorColor
	case model.VariantWarning:
		return warningColor
	default:
		return infoColor
	}
}

// printField writes an aligned "label value" line.
func printField(w io.Writer, label string, value interface{}) {
	fmt.Fprintf(w, "  %s %v\n", RenderLabel(label, 16), value)
}
