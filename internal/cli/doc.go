// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli is the routine command tree.
//
// With no subcommand the interactive TUI starts. The headless subcommands
// (categories, products, toggle, selected, remove, clear, generate, chat,
// config, version) work on the same stores and configuration so the
// selection made in one carries over to the others.
package cli
