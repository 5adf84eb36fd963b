// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds every style the screens use.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// ==========================================================================
	// HEADER AND CATEGORY TABS
	// ==========================================================================

	Header      lipgloss.Style
	Tab         lipgloss.Style
	TabActive   lipgloss.Style
	Placeholder lipgloss.Style

	// ==========================================================================
	// PRODUCT CARDS
	// ==========================================================================

	Card           lipgloss.Style
	CardSelected   lipgloss.Style
	CardName       lipgloss.Style
	CardBrand      lipgloss.Style
	CardDesc       lipgloss.Style
	SelectedMarker lipgloss.Style

	// ==========================================================================
	// SELECTION LIST
	// ==========================================================================

	PanelTitle   lipgloss.Style
	Panel        lipgloss.Style
	PanelFocused lipgloss.Style
	Row          lipgloss.Style
	RowCursor    lipgloss.Style
	ClearAll     lipgloss.Style

	// ==========================================================================
	// CONVERSATION
	// ==========================================================================

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	MessageText    lipgloss.Style
	NoticeInfo     lipgloss.Style
	NoticeError    lipgloss.Style
	Input          lipgloss.Style

	// ==========================================================================
	// STATUS BAR
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	Spinner      lipgloss.Style
}

// NewTheme builds a theme. mode is "dark", "light", or anything else for
// terminal detection.
func NewTheme(mode string) *Theme {
	t := &Theme{ColorProfile: termenv.ColorProfile()}

	switch strings.ToLower(mode) {
	case "dark":
		t.IsDark = true
		lipgloss.SetHasDarkBackground(true)
	case "light":
		t.IsDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		t.IsDark = termenv.HasDarkBackground()
	}

	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Plum).
		Padding(0, 1)

	t.Tab = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)

	t.TabActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(Plum).
		Underline(true).
		Padding(0, 1)

	t.Placeholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Padding(1, 2)

	// Cards: selected state must be visible without color, hence the
	// thick border and the marker.
	t.Card = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(OverlayDim).
		Padding(0, 1).
		Width(28)

	t.CardSelected = t.Card.
		BorderStyle(lipgloss.ThickBorder()).
		BorderForeground(Emerald).
		Background(PlumDeep)

	t.CardName = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.CardBrand = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.CardDesc = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.SelectedMarker = lipgloss.NewStyle().
		Bold(true).
		Foreground(Emerald)

	t.PanelTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Plum)

	t.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.PanelFocused = t.Panel.
		BorderForeground(Teal)

	t.Row = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.RowCursor = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	t.ClearAll = lipgloss.NewStyle().
		Foreground(Rose)

	t.UserLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	t.AssistantLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Plum)

	t.MessageText = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.NoticeInfo = lipgloss.NewStyle().
		Foreground(Amber).
		Italic(true)

	t.NoticeError = lipgloss.NewStyle().
		Bold(true).
		Foreground(Rose)

	t.Input = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Plum)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// Columns returns how many product cards fit across width.
func (t *Theme) Columns(width int) int {
	cardWidth := t.Card.GetWidth() + t.Card.GetHorizontalBorderSize() + 1
	if width <= 0 || cardWidth <= 0 {
		return 1
	}
	n := width / cardWidth
	if n < 1 {
		return 1
	}
	return n
}

// LayoutMode is the responsive layout bucket for the current width.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 80 columns: panels stacked
	LayoutWide                     // >= 80 columns: selection beside the grid
)

// Layout returns the layout mode for the current width.
func (t *Theme) Layout() LayoutMode {
	if t.Width < 80 {
		return LayoutNarrow
	}
	return LayoutWide
}
