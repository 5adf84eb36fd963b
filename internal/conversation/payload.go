// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"encoding/json"

	"github.com/Evn42/routine-builder/internal/catalog"
)

// PayloadPrefix starts every product-summary message. Views hide user
// messages that begin with it.
const PayloadPrefix = "Here are my selected products as JSON:"

const payloadSuffix = "\nPlease build my routine."

// payloadProduct is the subset of a product the assistant sees.
type payloadProduct struct {
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Payload builds the summary message for selection.
func Payload(selection []catalog.Product) string {
	items := make([]payloadProduct, len(selection))
	for i, p := range selection {
		items[i] = payloadProduct{
			Name:        p.Name,
			Brand:       p.Brand,
			Category:    p.Category,
			Description: p.Description,
		}
	}
	// Four string fields cannot fail to marshal.
	data, _ := json.MarshalIndent(items, "", "  ")
	return PayloadPrefix + " " + string(data) + payloadSuffix
}
