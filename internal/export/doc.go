// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a generated routine to a file.
//
// A Routine bundles the selected products with the visible conversation:
// the hidden system instruction and product payload are never exported.
// Two formats exist, Markdown for reading and JSON for other tools:
//
//	r := export.New(sel.Snapshot(), conv.Visible(), "Marie", "gpt-4o")
//	path, err := export.WriteFile("routine.md", r)
//
// The format is chosen from the file extension, Markdown by default.
package export
