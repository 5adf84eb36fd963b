// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// MaxCatalogSize bounds how much of a catalog response is read.
const MaxCatalogSize = 8 * 1024 * 1024

// Loader fetches the full catalog. Implementations hold no state between
// calls; every Load reads the source again.
type Loader interface {
	Load(ctx context.Context) (*Catalog, error)
}

// NewLoader picks an HTTP loader for http(s) sources and a file loader for
// everything else.
func NewLoader(source string) Loader {
	lower := strings.ToLower(source)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return NewHTTPLoader(source, nil)
	}
	return &FileLoader{Path: source}
}

// IsLocal reports whether source names a local file.
func IsLocal(source string) bool {
	_, ok := NewLoader(source).(*FileLoader)
	return ok
}

// =============================================================================
// HTTP LOADER
// =============================================================================

// HTTPLoader fetches the catalog with a GET request.
type HTTPLoader struct {
	URL    string
	client *http.Client
}

// NewHTTPLoader creates an HTTP loader. A nil client gets a 30s timeout.
func NewHTTPLoader(url string, client *http.Client) *HTTPLoader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPLoader{URL: url, client: client}
}

// Load implements Loader.
func (l *HTTPLoader) Load(ctx context.Context) (*Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrCatalogUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxCatalogSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	if len(data) > MaxCatalogSize {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", ErrCatalogUnavailable, MaxCatalogSize)
	}
	return Parse(data)
}

// =============================================================================
// FILE LOADER
// =============================================================================

// FileLoader reads the catalog from disk.
type FileLoader struct {
	Path string
}

// Load implements Loader.
func (l *FileLoader) Load(ctx context.Context) (*Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return Parse(data)
}
