// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Evn42/routine-builder/internal/catalog"
	"github.com/Evn42/routine-builder/internal/config"
	"github.com/Evn42/routine-builder/internal/ui/app"
	"github.com/Evn42/routine-builder/internal/ui/styles"
)

// catalogDebounce coalesces editor save bursts into one reload.
const catalogDebounce = 300 * time.Millisecond

// runTUI starts the interactive interface and blocks until it exits.
func runTUI(ctx context.Context, o *rootOptions) error {
	if !IsTTY() || !IsStdoutTTY() {
		return &UsageError{Reason: "the interactive interface needs a terminal; see 'routine --help' for headless commands"}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := o.App()
	if err != nil {
		return err
	}
	cfg := a.Config

	exportDir := ""
	if dir, err := config.ConfigDir(); err == nil {
		exportDir = filepath.Join(dir, "exports")
	}

	model := app.New(a.Catalog, a.Selection, a.Conversation, a.Gateway, app.Options{
		Categories:       a.Categories(ctx),
		AssistantName:    cfg.Assistant.Name,
		ShowDescriptions: cfg.UI.ShowDescriptions,
		Theme:            styles.NewTheme(cfg.UI.Theme),
		Logger:           a.Log.Named("tui"),
		ExportDir:        exportDir,
		Model:            cfg.Gateway.Model,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if cfg.Catalog.Watch && catalog.IsLocal(cfg.Catalog.Source) {
		w, err := catalog.NewWatcher(cfg.Catalog.Source, catalogDebounce, func() {
			a.Catalog.Invalidate()
			p.Send(app.CatalogChangedMsg{})
		}, a.Log.Named("watcher"))
		if err != nil {
			a.Log.Warn("catalog watch disabled", zap.String("source", cfg.Catalog.Source), zap.Error(err))
		} else {
			defer w.Close()
		}
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("interface error: %w", err)
	}
	return nil
}
