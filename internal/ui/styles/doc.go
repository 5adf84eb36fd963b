// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles defines the palette and Lip Gloss styles for the routine
// builder screens.
//
// Colors are AdaptiveColor values so one palette serves light and dark
// terminals. NewTheme picks the background from the terminal ("auto") or
// forces it ("dark", "light").
//
//	theme := styles.NewTheme(cfg.UI.Theme)
//	card := theme.Card.Render(name)
//	if selected {
//	    card = theme.CardSelected.Render(name)
//	}
package styles
