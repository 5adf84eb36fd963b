// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/Evn42/routine-builder/internal/util"
)

// DefaultSystemPrompt is the fixed instruction that seeds every transcript.
const DefaultSystemPrompt = "You are a helpful beauty assistant. Create routines and answer questions about skincare, haircare, makeup, fragrance, and beauty routines. Use clear, friendly, and beginner-friendly language."

// Storage drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete application configuration.
type Config struct {
	Catalog   CatalogConfig   `toml:"catalog" json:"catalog"`
	Gateway   GatewayConfig   `toml:"gateway" json:"gateway"`
	Storage   StorageConfig   `toml:"storage" json:"storage"`
	Assistant AssistantConfig `toml:"assistant" json:"assistant"`
	UI        UIConfig        `toml:"ui" json:"ui"`
	Logging   LoggingConfig   `toml:"logging" json:"logging"`
}

// CatalogConfig locates the product catalog.
type CatalogConfig struct {
	// Source is an http(s) URL or a local file path serving {"products": [...]}
	Source string `toml:"source" json:"source"`
	// Categories fixes the selector's options; empty derives them from the catalog
	Categories []string `toml:"categories" json:"categories"`
	// CacheTTLSecs caches filtered results per category; 0 fetches fresh every time
	CacheTTLSecs int `toml:"cache_ttl_secs" json:"cache_ttl_secs"`
	// Watch reloads the current category when a local catalog file changes
	Watch bool `toml:"watch" json:"watch"`
}

// GatewayConfig describes the remote completion endpoint.
type GatewayConfig struct {
	URL               string `toml:"url" json:"url"`
	Model             string `toml:"model" json:"model"`
	APIKey            string `toml:"api_key" json:"api_key"`
	TimeoutSecs       int    `toml:"timeout_secs" json:"timeout_secs"`
	RequestsPerMinute int    `toml:"requests_per_minute" json:"requests_per_minute"`
}

// StorageConfig selects the durable store for the selected products.
type StorageConfig struct {
	// Driver is one of "file", "sqlite", "memory"
	Driver string `toml:"driver" json:"driver"`
	// Path is a directory for "file" and a database file for "sqlite".
	// Empty means a location under the config directory.
	Path string `toml:"path" json:"path"`
}

// AssistantConfig holds the assistant persona.
type AssistantConfig struct {
	SystemPrompt string `toml:"system_prompt" json:"system_prompt"`
	// Name labels assistant turns in the conversation view
	Name string `toml:"name" json:"name"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is "auto", "dark", or "light"
	Theme            string `toml:"theme" json:"theme"`
	ShowDescriptions bool   `toml:"show_descriptions" json:"show_descriptions"`
}

// LoggingConfig controls the log file.
type LoggingConfig struct {
	// Path of the log file; empty means <config dir>/logs/routine.log
	Path  string `toml:"path" json:"path"`
	Level string `toml:"level" json:"level"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Source:       "products.json",
			CacheTTLSecs: 0, // fetch fresh on every category change
			Watch:        true,
		},
		Gateway: GatewayConfig{
			URL:         "http://127.0.0.1:8787/",
			Model:       "gpt-4o",
			TimeoutSecs: 60,
		},
		Storage: StorageConfig{
			Driver: DriverFile,
		},
		Assistant: AssistantConfig{
			SystemPrompt: DefaultSystemPrompt,
			Name:         "Marie",
		},
		UI: UIConfig{
			Theme:            "auto",
			ShowDescriptions: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// GatewayTimeout returns the per-request timeout as a duration.
func (c *Config) GatewayTimeout() time.Duration {
	return time.Duration(c.Gateway.TimeoutSecs) * time.Second
}

// CacheTTL returns the catalog cache lifetime; zero disables caching.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Catalog.CacheTTLSecs) * time.Second
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the application directory, ~/.routine unless
// ROUTINE_HOME is set.
func ConfigDir() (string, error) {
	if dir := os.Getenv("ROUTINE_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".routine"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()

	tomlPath, err := ConfigPathTOML()
	if err != nil {
		return nil, err
	}
	jsonPath, err := ConfigPathJSON()
	if err != nil {
		return nil, err
	}

	switch {
	case fileExists(tomlPath):
		if err := LoadTOML(cfg, tomlPath); err != nil {
			return nil, err
		}
	case fileExists(jsonPath):
		if err := LoadJSON(cfg, jsonPath); err != nil {
			return nil, err
		}
	}

	return finish(cfg)
}

// LoadFromPath loads configuration from a specific file path.
// Files ending in .json are decoded as JSON, everything else as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(strings.ToLower(path), ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, err
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, err
		}
	}

	return finish(cfg)
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML config %s: %w", path, err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON config %s: %w", path, err)
	}
	return nil
}

// finish applies env overrides and defaults, then validates.
func finish(cfg *Config) (*Config, error) {
	// .env never overrides variables already present in the environment
	_ = godotenv.Load()

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML writes the configuration as TOML with owner-only permissions,
// since it may hold the gateway API key.
func SaveTOML(cfg *Config, path string) error {
	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, []byte(buf.String()), 0600, 0700)
}

// =============================================================================
// DEFAULTS & ENVIRONMENT
// =============================================================================

// SetDefaults fills zero-valued fields that must never be empty.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Catalog.Source == "" {
		c.Catalog.Source = d.Catalog.Source
	}
	if c.Gateway.Model == "" {
		c.Gateway.Model = d.Gateway.Model
	}
	if c.Gateway.URL == "" {
		c.Gateway.URL = d.Gateway.URL
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = d.Storage.Driver
	}
	c.Storage.Driver = strings.ToLower(c.Storage.Driver)
	if c.Assistant.SystemPrompt == "" {
		c.Assistant.SystemPrompt = d.Assistant.SystemPrompt
	}
	if c.Assistant.Name == "" {
		c.Assistant.Name = d.Assistant.Name
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}

	if dir, err := ConfigDir(); err == nil {
		if c.Storage.Path == "" {
			switch c.Storage.Driver {
			case DriverSQLite:
				c.Storage.Path = filepath.Join(dir, "state.db")
			case DriverFile:
				c.Storage.Path = filepath.Join(dir, "state")
			}
		}
		if c.Logging.Path == "" {
			c.Logging.Path = filepath.Join(dir, "logs", "routine.log")
		}
	}
}

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - ROUTINE_CATALOG_SOURCE: overrides catalog.source
//   - ROUTINE_GATEWAY_URL: overrides gateway.url
//   - ROUTINE_MODEL: overrides gateway.model
//   - ROUTINE_API_KEY: overrides gateway.api_key
//   - ROUTINE_STORAGE_DRIVER: overrides storage.driver
//   - ROUTINE_STORAGE_PATH: overrides storage.path
//   - ROUTINE_LOG_LEVEL: overrides logging.level
func (c *Config) ApplyEnvOverrides() {
	overrides := []struct {
		env    string
		target *string
	}{
		{"ROUTINE_CATALOG_SOURCE", &c.Catalog.Source},
		{"ROUTINE_GATEWAY_URL", &c.Gateway.URL},
		{"ROUTINE_MODEL", &c.Gateway.Model},
		{"ROUTINE_API_KEY", &c.Gateway.APIKey},
		{"ROUTINE_STORAGE_DRIVER", &c.Storage.Driver},
		{"ROUTINE_STORAGE_PATH", &c.Storage.Path},
		{"ROUTINE_LOG_LEVEL", &c.Logging.Level},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.env)); v != "" {
			*o.target = v
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.Gateway.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "gateway.url",
			Message: fmt.Sprintf("invalid URL '%s', must be an absolute http or https URL", c.Gateway.URL),
		})
	}
	if strings.TrimSpace(c.Gateway.Model) == "" {
		errs = append(errs, ValidationError{Field: "gateway.model", Message: "must not be empty"})
	}
	if c.Gateway.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "gateway.timeout_secs", Message: "must not be negative"})
	}
	if c.Gateway.RequestsPerMinute < 0 {
		errs = append(errs, ValidationError{Field: "gateway.requests_per_minute", Message: "must not be negative"})
	}
	if c.Catalog.CacheTTLSecs < 0 {
		errs = append(errs, ValidationError{Field: "catalog.cache_ttl_secs", Message: "must not be negative"})
	}

	switch c.Storage.Driver {
	case DriverFile, DriverSQLite, DriverMemory:
	default:
		errs = append(errs, ValidationError{
			Field:   "storage.driver",
			Message: fmt.Sprintf("invalid driver '%s', must be one of: file, sqlite, memory", c.Storage.Driver),
		})
	}

	switch strings.ToLower(c.UI.Theme) {
	case "auto", "dark", "light":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// GET HELPER (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using its file key in dot notation,
// e.g. "gateway.model" or "catalog.cache_ttl_secs".
func (c *Config) Get(key string) (interface{}, error) {
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		field, ok := fieldByTag(v, part)
		if !ok {
			return nil, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field.Interface(), nil
		}
		if field.Kind() != reflect.Struct {
			return nil, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return nil, fmt.Errorf("invalid key: %s", key)
}

// fieldByTag finds the struct field whose toml tag equals name.
func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("toml") == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// Redacted returns a copy safe to print: the API key is masked.
func (c *Config) Redacted() *Config {
	cp := *c
	cp.Catalog.Categories = append([]string(nil), c.Catalog.Categories...)
	if cp.Gateway.APIKey != "" {
		cp.Gateway.APIKey = "[REDACTED, length=" + strconv.Itoa(len(c.Gateway.APIKey)) + "]"
	}
	return &cp
}
