// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import "github.com/Evn42/routine-builder/internal/catalog"

// catalogLoadedMsg carries the result of one category load. seq identifies
// the request so older responses can be dropped.
type catalogLoadedMsg struct {
	seq      int
	category string
	products []catalog.Product
	err      error
}

// replyMsg carries the gateway result for one turn.
type replyMsg struct {
	turnID string
	reply  string
	err    error
}

// CatalogChangedMsg tells the program the catalog source changed on disk.
// Send it with tea.Program.Send after invalidating any cache.
type CatalogChangedMsg struct{}
