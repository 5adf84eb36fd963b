// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Evn42/routine-builder/internal/catalog"
	"github.com/Evn42/routine-builder/internal/ui/styles"
	"github.com/Evn42/routine-builder/internal/util"
)

// PlaceholderText is shown when no category is chosen.
const PlaceholderText = "Select a category to view products"

// UnavailableText is shown over an empty grid when the catalog failed.
const UnavailableText = "Products are unavailable right now."

// EmptyCategoryText is shown when a category has no products.
const EmptyCategoryText = "No products in this category."

// Membership answers whether a product is selected.
type Membership interface {
	Contains(name string) bool
}

// CatalogCard is one product card as it will be drawn.
type CatalogCard struct {
	Product  catalog.Product
	Selected bool
	Cursor   bool
}

// CatalogCards derives cards from the loaded products. cursor < 0 marks
// no card.
func CatalogCards(products []catalog.Product, sel Membership, cursor int) []CatalogCard {
	cards := make([]CatalogCard, len(products))
	for i, p := range products {
		cards[i] = CatalogCard{
			Product:  p,
			Selected: sel.Contains(p.Name),
			Cursor:   i == cursor,
		}
	}
	return cards
}

// CatalogState is what the catalog region needs to draw one frame.
type CatalogState struct {
	Categories []string
	Category   string
	Products   []catalog.Product
	Err        error
	Loading    bool
	Cursor     int
	Focused    bool
}

// CatalogView draws category tabs and the product grid.
type CatalogView struct {
	Theme            *styles.Theme
	Width            int
	ShowDescriptions bool
}

// Render draws the region.
func (v CatalogView) Render(st CatalogState, sel Membership) string {
	var b strings.Builder
	b.WriteString(v.tabs(st.Categories, st.Category))
	b.WriteString("\n")

	switch {
	case st.Category == "":
		b.WriteString(v.Theme.Placeholder.Render(PlaceholderText))
	case st.Err != nil:
		b.WriteString(v.Theme.NoticeError.Render(UnavailableText))
	case st.Loading && len(st.Products) == 0:
		b.WriteString(v.Theme.Placeholder.Render("Loading..."))
	case len(st.Products) == 0:
		b.WriteString(v.Theme.Placeholder.Render(EmptyCategoryText))
	default:
		cursor := -1
		if st.Focused {
			cursor = st.Cursor
		}
		b.WriteString(v.grid(CatalogCards(st.Products, sel, cursor)))
	}
	return b.String()
}

func (v CatalogView) tabs(categories []string, active string) string {
	if len(categories) == 0 {
		return ""
	}
	parts := make([]string, len(categories))
	for i, c := range categories {
		label := catalog.CategoryLabel(c)
		if c == active {
			parts[i] = v.Theme.TabActive.Render(label)
		} else {
			parts[i] = v.Theme.Tab.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (v CatalogView) grid(cards []CatalogCard) string {
	cols := v.Theme.Columns(v.Width)
	var rows []string
	for start := 0; start < len(cards); start += cols {
		end := start + cols
		if end > len(cards) {
			end = len(cards)
		}
		row := make([]string, 0, end-start)
		for _, c := range cards[start:end] {
			row = append(row, v.card(c))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v CatalogView) card(c CatalogCard) string {
	inner := v.Theme.Card.GetWidth() - v.Theme.Card.GetHorizontalPadding()

	name := util.Truncate(c.Product.Name, inner-2)
	marker := "  "
	if c.Selected {
		marker = v.Theme.SelectedMarker.Render("✓ ")
	}
	lines := []string{
		marker + v.Theme.CardName.Render(name),
		v.Theme.CardBrand.Render(util.Truncate(c.Product.Brand, inner)),
	}
	if v.ShowDescriptions && c.Product.Description != "" {
		lines = append(lines, v.Theme.CardDesc.Render(util.Truncate(c.Product.Description, inner)))
	}

	style := v.Theme.Card
	if c.Selected {
		style = v.Theme.CardSelected
	}
	if c.Cursor {
		style = style.BorderForeground(styles.Teal)
	}
	return style.Render(strings.Join(lines, "\n"))
}
