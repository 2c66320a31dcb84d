// Copyright (c) 2025 tibsdev
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// THEME
// =============================================================================

// Theme bundles the lipgloss styles used by the chat view so the whole
// surface renders from one place.
type Theme struct {
	Header       lipgloss.Style
	StatusBar    lipgloss.Style
	StatusKey    lipgloss.Style
	StatusValue  lipgloss.Style
	UserLabel    lipgloss.Style
	UserBody     lipgloss.Style
	AssistLabel  lipgloss.Style
	AssistBody   lipgloss.Style
	SystemBanner lipgloss.Style
	InputFocused lipgloss.Style
	Help         lipgloss.Style
	Error        lipgloss.Style
}

// NewTheme builds the default theme. Colors adapt to the detected terminal
// background unless ApplyBackground forced one.
func NewTheme() Theme {
	return Theme{
		Header: lipgloss.NewStyle().
			Foreground(Cyan).
			Bold(true).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(TextSecondary).
			Background(SurfaceDim).
			Padding(0, 1),
		StatusKey: lipgloss.NewStyle().
			Foreground(TextMuted),
		StatusValue: lipgloss.NewStyle().
			Foreground(Emerald),
		UserLabel: lipgloss.NewStyle().
			Foreground(UserBubbleFg).
			Bold(true),
		UserBody: lipgloss.NewStyle().
			Foreground(TextPrimary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(UserBubbleBorder).
			PaddingLeft(1),
		AssistLabel: lipgloss.NewStyle().
			Foreground(AssistantBubbleFg).
			Bold(true),
		AssistBody: lipgloss.NewStyle().
			Foreground(TextPrimary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(AssistantBubbleBorder).
			PaddingLeft(1),
		SystemBanner: lipgloss.NewStyle().
			Foreground(SystemBannerFg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(SystemBannerBorder).
			Padding(0, 1).
			Italic(true),
		InputFocused: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(FocusRing).
			Padding(0, 1),
		Help: lipgloss.NewStyle().
			Foreground(TextMuted),
		Error: lipgloss.NewStyle().
			Foreground(Rose).
			Bold(true),
	}
}

// ApplyBackground pins the light/dark rendering of AdaptiveColor values.
// "auto" (or anything else) leaves termenv's detection alone.
func ApplyBackground(theme string) {
	switch theme {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	}
}

// DetectColorProfile returns the terminal's color profile via termenv.
func DetectColorProfile() termenv.Profile {
	return termenv.ColorProfile()
}
