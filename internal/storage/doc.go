// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the durable key-value slot the selection is
// saved to.
//
// Values are opaque strings (the selection store writes JSON). Three
// backends implement KV:
//
//   - FileKV: one file per key under a directory, written atomically
//   - SQLiteKV: a single-table SQLite database (pure Go driver)
//   - MemoryKV: process-local, for tests and --ephemeral runs
//
// # Usage
//
//	kv, err := storage.Open(storage.DriverFile, "~/.routine/state")
//	if err != nil {
//	    return err
//	}
//	defer kv.Close()
//
//	raw, err := kv.Get("selectedProducts")
//	if errors.Is(err, storage.ErrNotFound) {
//	    // first run
//	}
package storage
