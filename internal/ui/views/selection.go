// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"fmt"
	"strings"

	"github.com/Evn42/routine-builder/internal/catalog"
	"github.com/Evn42/routine-builder/internal/ui/styles"
	"github.com/Evn42/routine-builder/internal/util"
)

// EmptySelectionText is shown when nothing is selected.
const EmptySelectionText = "No products selected."

// ClearAllLabel labels the clear-all affordance.
const ClearAllLabel = "[C] Clear all"

// SelectionRow is one selected product. Removal binds to Name, not the
// row's position.
type SelectionRow struct {
	Name   string
	Brand  string
	Cursor bool
}

// SelectionModel is the derived content of the selection region.
type SelectionModel struct {
	Rows     []SelectionRow
	ClearAll bool
}

// Selection derives rows from a selection snapshot.
func Selection(snapshot []catalog.Product, cursor int) SelectionModel {
	m := SelectionModel{Rows: make([]SelectionRow, len(snapshot))}
	for i, p := range snapshot {
		m.Rows[i] = SelectionRow{Name: p.Name, Brand: p.Brand, Cursor: i == cursor}
	}
	m.ClearAll = len(snapshot) > 0
	return m
}

// SelectionView draws the list of selected products.
type SelectionView struct {
	Theme *styles.Theme
	Width int
}

// Render draws the region.
func (v SelectionView) Render(snapshot []catalog.Product, cursor int, focused bool) string {
	if !focused {
		cursor = -1
	}
	m := Selection(snapshot, cursor)

	var b strings.Builder
	b.WriteString(v.Theme.PanelTitle.Render(fmt.Sprintf("Selected products (%d)", len(m.Rows))))
	b.WriteString("\n")

	if len(m.Rows) == 0 {
		b.WriteString(v.Theme.Placeholder.Render(EmptySelectionText))
	} else {
		width := v.Width - 4
		if width < 10 {
			width = 10
		}
		for _, r := range m.Rows {
			line := util.Truncate(r.Name+" · "+r.Brand, width-2)
			if r.Cursor {
				b.WriteString(v.Theme.RowCursor.Render("> " + line + " [x]"))
			} else {
				b.WriteString(v.Theme.Row.Render("  " + line))
			}
			b.WriteString("\n")
		}
	}
	if m.ClearAll {
		b.WriteString(v.Theme.ClearAll.Render(ClearAllLabel))
	}

	style := v.Theme.Panel
	if focused {
		style = v.Theme.PanelFocused
	}
	if v.Width > 0 {
		style = style.Width(v.Width - style.GetHorizontalBorderSize())
	}
	return style.Render(strings.TrimRight(b.String(), "\n"))
}
