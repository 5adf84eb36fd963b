// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the storage and UI layers.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: crash-safe write (temp file, fsync, rename)
//
// Display Text:
//   - Truncate: width-aware truncation with an ellipsis
//   - PadRight: width-aware right padding
//
// # Usage
//
//	// Persist a snapshot so a crash leaves either the old or the new file
//	err := util.AtomicWriteFile(path, data, 0600, 0700)
//
//	// Fit a product name into a card column
//	label := util.Truncate(product.Name, 24)
package util
