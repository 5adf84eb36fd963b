// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points ROUTINE_HOME at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ROUTINE_HOME", dir)
	for _, env := range []string{
		"ROUTINE_CATALOG_SOURCE", "ROUTINE_GATEWAY_URL", "ROUTINE_MODEL",
		"ROUTINE_API_KEY", "ROUTINE_STORAGE_DRIVER", "ROUTINE_STORAGE_PATH",
		"ROUTINE_LOG_LEVEL",
	} {
		t.Setenv(env, "")
	}
	return dir
}

func TestDefault_IsValid(t *testing.T) {
	isolate(t)

	cfg := Default()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Gateway.Model != "gpt-4o" {
		t.Errorf("Gateway.Model = %q, want gpt-4o", cfg.Gateway.Model)
	}
	if cfg.Catalog.CacheTTLSecs != 0 {
		t.Errorf("Catalog.CacheTTLSecs = %d, want 0 (fresh fetch)", cfg.Catalog.CacheTTLSecs)
	}
	if cfg.Assistant.SystemPrompt != DefaultSystemPrompt {
		t.Error("Assistant.SystemPrompt should default to DefaultSystemPrompt")
	}
	if cfg.GatewayTimeout() != 60*time.Second {
		t.Errorf("GatewayTimeout = %v, want 60s", cfg.GatewayTimeout())
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Storage.Driver != DriverFile {
		t.Errorf("Storage.Driver = %q, want file", cfg.Storage.Driver)
	}
	if want := filepath.Join(dir, "state"); cfg.Storage.Path != want {
		t.Errorf("Storage.Path = %q, want %q", cfg.Storage.Path, want)
	}
	if want := filepath.Join(dir, "logs", "routine.log"); cfg.Logging.Path != want {
		t.Errorf("Logging.Path = %q, want %q", cfg.Logging.Path, want)
	}
}

func TestLoad_TOMLFile(t *testing.T) {
	dir := isolate(t)

	content := `
[catalog]
source = "https://example.com/products.json"
categories = ["cleanser", "moisturizer"]
cache_ttl_secs = 300

[gateway]
url = "https://worker.example.com/"
model = "gpt-4o-mini"

[storage]
driver = "sqlite"
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Catalog.Source != "https://example.com/products.json" {
		t.Errorf("Catalog.Source = %q", cfg.Catalog.Source)
	}
	if len(cfg.Catalog.Categories) != 2 {
		t.Errorf("Catalog.Categories = %v, want 2 entries", cfg.Catalog.Categories)
	}
	if cfg.CacheTTL() != 5*time.Minute {
		t.Errorf("CacheTTL = %v, want 5m", cfg.CacheTTL())
	}
	if cfg.Gateway.Model != "gpt-4o-mini" {
		t.Errorf("Gateway.Model = %q", cfg.Gateway.Model)
	}
	if want := filepath.Join(dir, "state.db"); cfg.Storage.Path != want {
		t.Errorf("Storage.Path = %q, want %q", cfg.Storage.Path, want)
	}
	// Untouched sections keep their defaults
	if cfg.Assistant.Name != "Marie" {
		t.Errorf("Assistant.Name = %q, want Marie", cfg.Assistant.Name)
	}
}

func TestLoad_JSONFallback(t *testing.T) {
	dir := isolate(t)

	content := `{"gateway": {"model": "from-json"}}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Gateway.Model != "from-json" {
		t.Errorf("Gateway.Model = %q, want from-json", cfg.Gateway.Model)
	}
}

func TestLoad_MalformedFileFails(t *testing.T) {
	dir := isolate(t)

	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[catalog\nsource="), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Error("expected error for malformed TOML")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("ROUTINE_GATEWAY_URL", "https://override.example.com/chat")
	t.Setenv("ROUTINE_MODEL", "override-model")
	t.Setenv("ROUTINE_STORAGE_DRIVER", "MEMORY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Gateway.URL != "https://override.example.com/chat" {
		t.Errorf("Gateway.URL = %q", cfg.Gateway.URL)
	}
	if cfg.Gateway.Model != "override-model" {
		t.Errorf("Gateway.Model = %q", cfg.Gateway.Model)
	}
	if cfg.Storage.Driver != DriverMemory {
		t.Errorf("Storage.Driver = %q, want memory", cfg.Storage.Driver)
	}
}

func TestValidate_CollectsErrors(t *testing.T) {
	isolate(t)

	cfg := Default()
	cfg.Gateway.URL = "not a url"
	cfg.Storage.Driver = "redis"
	cfg.UI.Theme = "neon"
	cfg.Gateway.TimeoutSecs = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}

	var verrs ValidateErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("error is %T, want ValidateErrors", err)
	}
	fields := make(map[string]bool)
	for _, v := range verrs {
		fields[v.Field] = true
	}
	for _, want := range []string{"gateway.url", "storage.driver", "ui.theme", "gateway.timeout_secs"} {
		if !fields[want] {
			t.Errorf("missing validation error for %s (got %v)", want, err)
		}
	}
}

func TestGet(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("gateway.model")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v != "gpt-4o" {
		t.Errorf("Get(gateway.model) = %v, want gpt-4o", v)
	}

	if _, err := cfg.Get("gateway.nope"); err == nil {
		t.Error("expected error for unknown field")
	}
	if _, err := cfg.Get("gateway.model.deeper"); err == nil {
		t.Error("expected error when descending into a scalar")
	}
	if _, err := cfg.Get(""); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "saved.toml")

	cfg := Default()
	cfg.Gateway.Model = "saved-model"
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if loaded.Gateway.Model != "saved-model" {
		t.Errorf("Gateway.Model = %q, want saved-model", loaded.Gateway.Model)
	}
}

func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.Gateway.APIKey = "sk-secret-value"

	red := cfg.Redacted()
	if strings.Contains(red.Gateway.APIKey, "secret") {
		t.Errorf("Redacted leaked key: %q", red.Gateway.APIKey)
	}
	if cfg.Gateway.APIKey != "sk-secret-value" {
		t.Error("Redacted modified the original")
	}
}
