// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package views renders the three screens regions as plain strings.
//
// Renderers are pure: they take store snapshots and return text, so every
// frame can be re-derived from scratch. Each view also exposes the model it
// renders (cards, rows, lines) for tests and headless output.
package views
