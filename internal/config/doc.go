// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and validation for the
// routine builder.
//
// # Configuration Precedence
//
// Configuration is loaded from (highest precedence first):
//   - Environment variables (ROUTINE_*), including a .env file in the
//     working directory
//   - ~/.routine/config.toml (or the file given with --config)
//   - ~/.routine/config.json
//   - Built-in defaults
//
// The ROUTINE_HOME environment variable relocates ~/.routine.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	loader := catalog.NewLoader(cfg.Catalog.Source)
package config
