// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const sampleCatalog = `{
  "products": [
    {"name": "Gentle Cleanser", "brand": "CeraVe", "category": "cleanser", "image": "c.jpg", "description": "Hydrating."},
    {"name": "Daily Moisturizer", "brand": "CeraVe", "category": "moisturizer", "image": "m.jpg"},
    {"name": "Foaming Wash", "brand": "La Roche", "category": "cleanser", "image": "f.jpg"},
    {"name": "", "brand": "Nobody", "category": "cleanser"},
    {"name": "No Category", "brand": "Nobody"}
  ]
}`

func TestParse(t *testing.T) {
	cat, err := Parse([]byte(sampleCatalog))
	require.NoError(t, err)
	assert.Len(t, cat.Products, 3)
	assert.Equal(t, 2, cat.Skipped)
	assert.Equal(t, "Hydrating.", cat.Products[0].Description)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "<html>"},
		{"missing products", `{"items": []}`},
		{"products not array", `{"products": {}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.ErrorIs(t, err, ErrCatalogUnavailable)
		})
	}
}

func TestInCategory(t *testing.T) {
	cat, err := Parse([]byte(sampleCatalog))
	require.NoError(t, err)

	var names []string
	for _, p := range cat.InCategory("cleanser") {
		names = append(names, p.Name)
	}
	if diff := cmp.Diff([]string{"Gentle Cleanser", "Foaming Wash"}, names); diff != "" {
		t.Errorf("InCategory order mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, cat.InCategory("Cleanser"), "match must be exact")
	assert.Empty(t, cat.InCategory("clean"), "no partial match")
	assert.NotNil(t, cat.InCategory("unknown"))
}

func TestCategories_FirstSeenOrder(t *testing.T) {
	cat, err := Parse([]byte(sampleCatalog))
	require.NoError(t, err)
	assert.Equal(t, []string{"cleanser", "moisturizer"}, cat.Categories())
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "Haircare", CategoryLabel("haircare"))
	assert.Equal(t, "Men's Grooming", CategoryLabel("men's grooming"))
}

func TestNewLoader(t *testing.T) {
	_, ok := NewLoader("https://example.com/products.json").(*HTTPLoader)
	assert.True(t, ok)
	_, ok = NewLoader("HTTP://example.com/products.json").(*HTTPLoader)
	assert.True(t, ok)
	_, ok = NewLoader("products.json").(*FileLoader)
	assert.True(t, ok)
	assert.True(t, IsLocal("./data/products.json"))
}

func TestHTTPLoader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleCatalog))
	}))
	defer server.Close()

	cat, err := NewHTTPLoader(server.URL, server.Client()).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, cat.Products, 3)
}

func TestHTTPLoader_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status 500", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"status 404", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}},
		{"bad body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := NewHTTPLoader(server.URL, server.Client()).Load(context.Background())
			assert.ErrorIs(t, err, ErrCatalogUnavailable)
		})
	}
}

func TestHTTPLoader_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewHTTPLoader(url, nil).Load(context.Background())
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestFileLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0644))

	cat, err := (&FileLoader{Path: path}).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, cat.Products, 3)

	_, err = (&FileLoader{Path: filepath.Join(t.TempDir(), "missing.json")}).Load(context.Background())
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

// countingLoader serves a fixed catalog and counts calls.
type countingLoader struct {
	data  string
	err   error
	calls atomic.Int32
}

func (l *countingLoader) Load(ctx context.Context) (*Catalog, error) {
	l.calls.Add(1)
	if l.err != nil {
		return nil, l.err
	}
	return Parse([]byte(l.data))
}

func TestService_NoCacheRefetches(t *testing.T) {
	loader := &countingLoader{data: sampleCatalog}
	svc := NewService(loader)

	for i := 0; i < 3; i++ {
		products, err := svc.Products(context.Background(), "cleanser")
		require.NoError(t, err)
		assert.Len(t, products, 2)
	}
	assert.Equal(t, int32(3), loader.calls.Load())
}

func TestService_EmptyCategory(t *testing.T) {
	loader := &countingLoader{data: sampleCatalog}
	svc := NewService(loader)

	products, err := svc.Products(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Equal(t, int32(0), loader.calls.Load())
}

func TestService_Cache(t *testing.T) {
	defer goleak.VerifyNone(t)
	loader := &countingLoader{data: sampleCatalog}
	svc := NewService(loader, WithCacheTTL(time.Minute))

	_, err := svc.Products(context.Background(), "cleanser")
	require.NoError(t, err)
	products, err := svc.Products(context.Background(), "cleanser")
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, int32(1), loader.calls.Load())

	// Mutating a returned slice must not leak into the cache.
	products[0].Name = "mutated"
	again, err := svc.Products(context.Background(), "cleanser")
	require.NoError(t, err)
	assert.Equal(t, "Gentle Cleanser", again[0].Name)

	svc.Invalidate()
	_, err = svc.Products(context.Background(), "cleanser")
	require.NoError(t, err)
	assert.Equal(t, int32(2), loader.calls.Load())
}

func TestService_CacheExpiresWithoutJanitor(t *testing.T) {
	defer goleak.VerifyNone(t)
	loader := &countingLoader{data: sampleCatalog}
	svc := NewService(loader, WithCacheTTL(20*time.Millisecond))

	_, err := svc.Products(context.Background(), "cleanser")
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	_, err = svc.Products(context.Background(), "cleanser")
	require.NoError(t, err)
	assert.Equal(t, int32(2), loader.calls.Load())
}

func TestService_LoadError(t *testing.T) {
	defer goleak.VerifyNone(t)
	loader := &countingLoader{err: ErrCatalogUnavailable}
	svc := NewService(loader, WithCacheTTL(time.Minute))

	_, err := svc.Products(context.Background(), "cleanser")
	assert.True(t, errors.Is(err, ErrCatalogUnavailable))

	// Failures are never cached.
	_, _ = svc.Products(context.Background(), "cleanser")
	assert.Equal(t, int32(2), loader.calls.Load())
}

func TestService_Categories(t *testing.T) {
	loader := &countingLoader{data: sampleCatalog}

	got, err := NewService(loader).Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"cleanser", "moisturizer"}, got)

	fixed := []string{"suncare", "cleanser"}
	got, err = NewService(loader, WithCategories(fixed)).Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fixed, got)
}

func TestService_Find(t *testing.T) {
	svc := NewService(&countingLoader{data: sampleCatalog})

	p, ok, err := svc.Find(context.Background(), "Daily Moisturizer")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "moisturizer", p.Category)

	_, ok, err = svc.Find(context.Background(), "Nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWatcher_DebouncesAndStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0644))

	changed := make(chan struct{}, 8)
	w, err := NewWatcher(path, 50*time.Millisecond, func() { changed <- struct{}{} }, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0644))
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	require.NoError(t, w.Close())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "products.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0644))

	changed := make(chan struct{}, 8)
	w, err := NewWatcher(path, 20*time.Millisecond, func() { changed <- struct{}{} }, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0644))

	select {
	case <-changed:
		t.Fatal("unexpected notification for unrelated file")
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, w.Close())
}
