// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Evn42/routine-builder/internal/conversation"
	"github.com/Evn42/routine-builder/internal/ui/styles"
	"github.com/Evn42/routine-builder/internal/ui/views"
)

const selectionPaneWidth = 36

// View implements tea.Model. Every region is re-derived from the stores on
// each frame.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.theme.Header.Render("Routine Builder")

	gridWidth := m.width
	if m.theme.Layout() == styles.LayoutWide {
		gridWidth = m.width - selectionPaneWidth - 1
	}

	grid := views.CatalogView{
		Theme:            m.theme,
		Width:            gridWidth,
		ShowDescriptions: m.showDescriptions,
	}.Render(views.CatalogState{
		Categories: m.categories,
		Category:   m.Category(),
		Products:   m.products,
		Err:        m.catalogErr,
		Loading:    m.loading,
		Cursor:     m.gridCursor,
		Focused:    m.focus == FocusGrid,
	}, m.sel)

	selWidth := selectionPaneWidth
	if m.theme.Layout() == styles.LayoutNarrow {
		selWidth = m.width
	}
	selected := views.SelectionView{Theme: m.theme, Width: selWidth}.
		Render(m.sel.Snapshot(), m.selCursor, m.focus == FocusSelection)

	var top string
	if m.theme.Layout() == styles.LayoutWide {
		top = lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(gridWidth).Render(grid), " ", selected)
	} else {
		top = lipgloss.JoinVertical(lipgloss.Left, grid, selected)
	}

	sections := []string{header, top, m.viewport.View(), m.renderInput(), m.renderStatus()}
	return strings.Join(sections, "\n")
}

func (m Model) renderInput() string {
	line := m.input.View()
	if m.conv.State() == conversation.StateAwaitingReply {
		line = m.spinner.View() + " " + m.assistantName + " is typing..."
	}
	return m.theme.Input.Width(m.width).Render(line)
}

func (m Model) renderStatus() string {
	if m.status != "" {
		return m.theme.StatusBar.Width(m.width).Render(m.theme.NoticeError.Render(m.status))
	}
	return m.theme.StatusBar.Width(m.width).Render(m.help.View(m.keys))
}
