// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package selection owns the user's ordered set of chosen products and
// writes it through to durable storage after every change.
package selection
