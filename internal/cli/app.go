// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Evn42/routine-builder/internal/catalog"
	"github.com/Evn42/routine-builder/internal/config"
	"github.com/Evn42/routine-builder/internal/conversation"
	"github.com/Evn42/routine-builder/internal/gateway"
	"github.com/Evn42/routine-builder/internal/selection"
	"github.com/Evn42/routine-builder/internal/storage"
)

// App holds everything built from one configuration.
type App struct {
	Config       *config.Config
	Log          *zap.Logger
	KV           storage.KV
	Catalog      *catalog.Service
	Selection    *selection.Store
	Conversation *conversation.Store
	Gateway      conversation.Gateway
}

// AppOptions tweaks how an App is built.
type AppOptions struct {
	// Ephemeral keeps the selection in memory only.
	Ephemeral bool
}

// OpenApp builds the stores and clients described by cfg and restores the
// previous selection.
func OpenApp(cfg *config.Config, log *zap.Logger, opts AppOptions) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	driver, path := cfg.Storage.Driver, cfg.Storage.Path
	if opts.Ephemeral {
		driver = storage.DriverMemory
	}
	kv, err := storage.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", driver, err)
	}

	svc := catalog.NewService(catalog.NewLoader(cfg.Catalog.Source),
		catalog.WithCacheTTL(cfg.CacheTTL()),
		catalog.WithCategories(cfg.Catalog.Categories),
		catalog.WithLogger(log.Named("catalog")),
	)

	sel := selection.New(kv, log.Named("selection"))
	outcome := sel.Initialize()
	log.Info("selection restored",
		zap.String("driver", driver),
		zap.Stringer("outcome", outcome),
		zap.Int("count", sel.Len()))

	gw := gateway.New(cfg.Gateway.URL,
		gateway.WithModel(cfg.Gateway.Model),
		gateway.WithAPIKey(cfg.Gateway.APIKey),
		gateway.WithTimeout(cfg.GatewayTimeout()),
		gateway.WithRateLimit(cfg.Gateway.RequestsPerMinute),
		gateway.WithLogger(log.Named("gateway")),
	)
	log.Debug("gateway configured", zap.String("url", gw.URL()), zap.String("model", gw.Model()))

	return &App{
		Config:       cfg,
		Log:          log,
		KV:           kv,
		Catalog:      svc,
		Selection:    sel,
		Conversation: conversation.New(cfg.Assistant.SystemPrompt, log.Named("conversation")),
		Gateway:      gw,
	}, nil
}

// Categories returns the category list, logging and returning nil if the
// catalog cannot be read.
func (a *App) Categories(ctx context.Context) []string {
	cats, err := a.Catalog.Categories(ctx)
	if err != nil {
		a.Log.Warn("categories unavailable", zap.Error(err))
		return nil
	}
	return cats
}

// FindProduct looks a product up by exact name.
func (a *App) FindProduct(ctx context.Context, name string) (catalog.Product, error) {
	p, ok, err := a.Catalog.Find(ctx, name)
	if err != nil {
		return catalog.Product{}, err
	}
	if !ok {
		return catalog.Product{}, &NotFoundError{Resource: "product", ID: name}
	}
	return p, nil
}

// Close releases storage.
func (a *App) Close() error {
	if a.KV == nil {
		return nil
	}
	err := a.KV.Close()
	if errors.Is(err, storage.ErrClosed) {
		return nil
	}
	return err
}
