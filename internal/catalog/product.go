// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrCatalogUnavailable is returned when the catalog cannot be fetched or
// parsed. Callers degrade to an empty grid.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// =============================================================================
// PRODUCT TYPE
// =============================================================================

// Product is a selectable catalog entry. Name is its identity: two products
// with the same name are the same selectable entity.
type Product struct {
	Name        string `json:"name" validate:"required"`
	Brand       string `json:"brand"`
	Category    string `json:"category" validate:"required"`
	Image       string `json:"image"`
	Description string `json:"description,omitempty"`
}

// Catalog is a parsed product list.
type Catalog struct {
	Products []Product `json:"products"`

	// Skipped counts entries dropped because they failed validation.
	Skipped int `json:"-"`
}

var validate = validator.New()

// Parse decodes a catalog document. Entries without a name or category are
// dropped and counted in Skipped; a document that is not valid JSON, or has
// no "products" array, is ErrCatalogUnavailable.
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Products *[]Product `json:"products"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	if doc.Products == nil {
		return nil, fmt.Errorf("%w: missing \"products\" array", ErrCatalogUnavailable)
	}

	cat := &Catalog{Products: make([]Product, 0, len(*doc.Products))}
	for _, p := range *doc.Products {
		if err := validate.Struct(p); err != nil {
			cat.Skipped++
			continue
		}
		cat.Products = append(cat.Products, p)
	}
	return cat, nil
}

// InCategory returns the products whose category equals category exactly.
// No normalization or partial matching is applied.
func (c *Catalog) InCategory(category string) []Product {
	out := make([]Product, 0)
	for _, p := range c.Products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Categories returns the distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range c.Products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

// Find returns the first product named name.
func (c *Catalog) Find(name string) (Product, bool) {
	for _, p := range c.Products {
		if p.Name == name {
			return p, true
		}
	}
	return Product{}, false
}

var titleCaser = cases.Title(language.English)

// CategoryLabel formats a raw category value for display ("haircare" ->
// "Haircare", "men's grooming" -> "Men's Grooming"). Matching always uses the
// raw value.
func CategoryLabel(category string) string {
	return titleCaser.String(category)
}
