// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package catalog loads the static product catalog and filters it by
// category.
//
// The catalog is read-only: a JSON document of the form
//
//	{"products": [{"name": "...", "brand": "...", "category": "...",
//	               "image": "...", "description": "..."}]}
//
// served from an http(s) URL or a local file.
package catalog
