// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Evn42/routine-builder/internal/catalog"
	"github.com/Evn42/routine-builder/internal/util"
)

func newCategoriesCommand(o *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List product categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.App()
			if err != nil {
				return err
			}
			cats, err := a.Catalog.Categories(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, cats)
			}
			for _, c := range cats {
				fmt.Fprintf(out, "%s  %s\n", util.PadRight(c, 16), mutedStyle.Render(catalog.CategoryLabel(c)))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	return cmd
}

func newProductsCommand(o *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "products <category>",
		Short: "List the products in a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.App()
			if err != nil {
				return err
			}
			products, err := a.Catalog.Products(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, products)
			}
			if len(products) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No products in "+args[0]+"."))
				return nil
			}
			for _, p := range products {
				mark := "  "
				if a.Selection.Contains(p.Name) {
					mark = checkedStyle.Render("✓ ")
				}
				fmt.Fprintf(out, "%s%s %s\n", mark, titleStyle.Render(p.Name), mutedStyle.Render(p.Brand))
				if p.Description != "" {
					fmt.Fprintf(out, "    %s\n", util.Truncate(p.Description, 76))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	return cmd
}

// writeJSON writes v indented. A nil slice is written as [].
func writeJSON(w io.Writer, v interface{}) error {
	switch s := v.(type) {
	case []string:
		if s == nil {
			v = []string{}
		}
	case []catalog.Product:
		if s == nil {
			v = []catalog.Product{}
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
