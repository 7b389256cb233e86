// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the BuhoFis TUI.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// BRAND COLORS
// =============================================================================

// PrimaryBlue - Brand color, user bubbles, active chat
var PrimaryBlue = lipgloss.AdaptiveColor{Light: "#0582CA", Dark: "#0582CA"}

// DarkBlue - Header background, headings
var DarkBlue = lipgloss.AdaptiveColor{Light: "#003D61", Dark: "#B3E5FC"}

// NavyBlue - Sidebar and flow bar background
var NavyBlue = lipgloss.AdaptiveColor{Light: "#E1F2FB", Dark: "#084062"}

// Green - Online badge, guided flow accents
var Green = lipgloss.AdaptiveColor{Light: "#195427", Dark: "#6EC971"}

// LightGreen - Option chips
var LightGreen = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#6EC971"}

// LightBlue - Links and sources
var LightBlue = lipgloss.AdaptiveColor{Light: "#0277BD", Dark: "#B3E5FC"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Rose - Error notices, offline badge
var Rose = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#FB7185"}

// Amber - Warning notices, connecting badge
var Amber = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}

// Sky - Info notices
var Sky = lipgloss.AdaptiveColor{Light: "#0369A1", Dark: "#7DD3FC"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Surface - Main background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#001A2E"}

// SurfaceDim - Header and status bar background
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F1F5F9", Dark: "#00243F"}

// Overlay - Borders, separators
var Overlay = lipgloss.AdaptiveColor{Light: "#CBD5E1", Dark: "#1E4A6B"}

// =============================================================================
// TEXT COLORS
// =============================================================================

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#0F172A", Dark: "#E2F1FB"}

// TextSecondary - Labels, less prominent text
var TextSecondary = lipgloss.AdaptiveColor{Light: "#475569", Dark: "#9FC3DA"}

// TextMuted - Hints, timestamps
var TextMuted = lipgloss.AdaptiveColor{Light: "#94A3B8", Dark: "#5D7F96"}

// TextInverse - Text on colored backgrounds
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#001A2E"}

// =============================================================================
// MESSAGE BUBBLE COLORS
// =============================================================================

var (
	UserBubbleFg     = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}
	UserBubbleBorder = PrimaryBlue
	BotBubbleBorder  = Overlay
)
