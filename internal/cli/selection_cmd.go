// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Evn42/routine-builder/internal/catalog"
)

func newToggleCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <name>",
		Short: "Add a product to the selection, or remove it if already selected",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.App()
			if err != nil {
				return err
			}
			p, err := a.FindProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			added, err := a.Selection.Toggle(p)
			out := cmd.OutOrStdout()
			if added {
				fmt.Fprintf(out, "%s %s\n", checkedStyle.Render("Added"), p.Name)
			} else {
				fmt.Fprintf(out, "%s %s\n", mutedStyle.Render("Removed"), p.Name)
			}
			return err
		},
	}
}

func newSelectedCommand(o *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "selected",
		Aliases: []string{"list"},
		Short:   "Show the selected products",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.App()
			if err != nil {
				return err
			}
			snap := a.Selection.Snapshot()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), snap)
			}
			printSelection(cmd.OutOrStdout(), snap)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	return cmd
}

func printSelection(w io.Writer, snap []catalog.Product) {
	if len(snap) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No products selected."))
		return
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Selected products (%d)", len(snap))))
	for i, p := range snap {
		fmt.Fprintf(w, "%3d. %s %s\n", i, p.Name, mutedStyle.Render(p.Brand))
	}
}

func newRemoveCommand(o *rootOptions) *cobra.Command {
	var index int
	cmd := &cobra.Command{
		Use:   "remove [name]",
		Short: "Remove a product from the selection by name or --index",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			byIndex := cmd.Flags().Changed("index")
			if byIndex == (len(args) == 1) {
				return &UsageError{Reason: "give either a product name or --index, not both"}
			}
			a, err := o.App()
			if err != nil {
				return err
			}

			var removed bool
			var label string
			if byIndex {
				label = fmt.Sprintf("index %d", index)
				removed, err = a.Selection.Remove(index)
			} else {
				label = args[0]
				removed, err = a.Selection.RemoveByName(args[0])
			}

			out := cmd.OutOrStdout()
			if !removed {
				fmt.Fprintf(out, "%s %s\n", mutedStyle.Render("Not selected:"), label)
				return nil
			}
			fmt.Fprintf(out, "%s %s\n", mutedStyle.Render("Removed"), label)
			return err
		},
	}
	cmd.Flags().IntVar(&index, "index", 0, "zero-based position in the selection")
	return cmd
}

func newClearCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every product from the selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.App()
			if err != nil {
				return err
			}
			if err := a.Selection.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Selection cleared."))
			return nil
		},
	}
}

