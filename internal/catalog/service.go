// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Service answers the questions the views ask of the catalog: which products
// are in a category, and which categories exist.
//
// With a zero TTL every call goes to the Loader. With a positive TTL the
// filtered result for each category is cached until it expires or
// Invalidate is called.
type Service struct {
	loader     Loader
	cache      *cache.Cache
	categories []string
	log        *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCacheTTL enables per-category caching. Expired entries are dropped
// on read; no janitor goroutine is started.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cache = cache.New(ttl, 0)
		}
	}
}

// WithCategories fixes the category list instead of deriving it.
func WithCategories(categories []string) Option {
	return func(s *Service) {
		s.categories = append([]string(nil), categories...)
	}
}

// WithLogger sets the service logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService wraps loader.
func NewService(loader Loader, opts ...Option) *Service {
	s := &Service{loader: loader, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const categoryKeyPrefix = "category:"

// Products returns the products in category. An empty category never
// reaches the loader and yields nil.
func (s *Service) Products(ctx context.Context, category string) ([]Product, error) {
	if category == "" {
		return nil, nil
	}

	key := categoryKeyPrefix + category
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			return copyProducts(v.([]Product)), nil
		}
	}

	cat, err := s.loader.Load(ctx)
	if err != nil {
		s.log.Warn("catalog load failed", zap.String("category", category), zap.Error(err))
		return nil, err
	}
	if cat.Skipped > 0 {
		s.log.Warn("catalog entries skipped", zap.Int("skipped", cat.Skipped))
	}

	products := cat.InCategory(category)
	if s.cache != nil {
		s.cache.SetDefault(key, copyProducts(products))
	}
	s.log.Debug("catalog filtered", zap.String("category", category), zap.Int("count", len(products)))
	return products, nil
}

// Categories returns the configured categories, or the catalog's distinct
// categories when none are configured.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	if len(s.categories) > 0 {
		return append([]string(nil), s.categories...), nil
	}
	cat, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return cat.Categories(), nil
}

// Find looks a product up by name across the whole catalog.
func (s *Service) Find(ctx context.Context, name string) (Product, bool, error) {
	cat, err := s.loader.Load(ctx)
	if err != nil {
		return Product{}, false, err
	}
	p, ok := cat.Find(name)
	return p, ok, nil
}

// Invalidate drops every cached category.
func (s *Service) Invalidate() {
	if s.cache != nil {
		s.cache.Flush()
	}
}

func copyProducts(in []Product) []Product {
	out := make([]Product, len(in))
	copy(out, in)
	return out
}
