package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/layoutkit/internal/cli"
	"github.com/aretw0/layoutkit/internal/compiler"
	"github.com/aretw0/layoutkit/internal/presentation/graph"
	"github.com/aretw0/layoutkit/internal/presentation/tui"
	"github.com/aretw0/layoutkit/internal/validator"
	"github.com/aretw0/layoutkit/pkg/domain"
	"github.com/spf13/cobra"
)

const (
	formatJSON     = "json"
	formatMarkdown = "markdown"
	formatMermaid  = "mermaid"
)

func newLayoutCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "layout",
		Aliases: []string{"layouts"},
		Short:   "Inspect and manage saved layouts",
	}
	cmd.AddCommand(
		newLayoutListCmd(a),
		newLayoutShowCmd(a),
		newLayoutRemoveCmd(a),
		newLayoutDiffCmd(a),
		newLayoutSaveCmd(a),
		newLayoutCheckCmd(a),
	)
	return cmd
}

func newLayoutListCmd(a *app) *cobra.Command {
	var format string
	var plain bool

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List saved layouts, most recent first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.rt.Repository.List(cmd.Context())
			if err != nil {
				return err
			}
			switch format {
			case formatJSON:
				if list == nil {
					list = []domain.LayoutSummary{}
				}
				return cli.PrintJSON(cmd.OutOrStdout(), list)
			case formatMarkdown:
				return cli.PrintMarkdown(cmd.OutOrStdout(), tui.LayoutListMarkdown(list), plain)
			default:
				return unknownFormat(format, formatJSON, formatMarkdown)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatMarkdown, "Output format: markdown or json")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print raw markdown instead of styled output")
	return cmd
}

func newLayoutShowCmd(a *app) *cobra.Command {
	var format string
	var plain bool

	cmd := &cobra.Command{
		Use:   "show <filename>",
		Short: "Print a saved layout as JSON, markdown or a Mermaid diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.rt.Repository.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch format {
			case formatJSON:
				return cli.PrintJSON(out, doc)
			case formatMarkdown:
				return cli.PrintMarkdown(out, tui.LayoutMarkdown(doc), plain)
			case formatMermaid:
				_, err := io.WriteString(out, graph.GenerateMermaid(doc, nil))
				return err
			default:
				return unknownFormat(format, formatJSON, formatMarkdown, formatMermaid)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "Output format: json, markdown or mermaid")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print raw markdown instead of styled output")
	return cmd
}

func newLayoutRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <filename>...",
		Aliases: []string{"delete"},
		Short:   "Delete saved layouts",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, filename := range args {
				if err := a.rt.Repository.Delete(cmd.Context(), filename); err != nil {
					return fmt.Errorf("failed to delete %s: %w", filename, err)
				}
			}
			cli.PrintSystemMessage(cmd.OutOrStdout(), "Deleted %d layout(s).", len(args))
			return nil
		},
	}
}

func newLayoutDiffCmd(a *app) *cobra.Command {
	var format string
	var plain bool

	cmd := &cobra.Command{
		Use:   "diff <from> <to>",
		Short: "Compare two saved layouts by group name and dataField",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := a.rt.Repository.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			to, err := a.rt.Repository.Get(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			diff := domain.DiffLayouts(from.Layout, to.Layout)

			out := cmd.OutOrStdout()
			switch format {
			case formatJSON:
				if diff == nil {
					diff = &domain.LayoutDiff{}
				}
				return cli.PrintJSON(out, diff)
			case formatMarkdown:
				return cli.PrintMarkdown(out, tui.DiffMarkdown(diff), plain)
			case formatMermaid:
				_, err := io.WriteString(out, graph.GenerateMermaid(to, graph.OverlayFromDiff(diff)))
				return err
			default:
				return unknownFormat(format, formatJSON, formatMarkdown, formatMermaid)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatMarkdown, "Output format: markdown, json or mermaid (changes highlighted on <to>)")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print raw markdown instead of styled output")
	return cmd
}

func newLayoutSaveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "save <name> <file.json|->",
		Short: "Save a layout document read from a file or stdin",
		Long: `Reads a layout (an array of groups, or an object with a "layout" array)
and stores it under <name>. An existing layout with the same name is overwritten.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if args[1] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[1])
			}
			if err != nil {
				return fmt.Errorf("failed to read layout: %w", err)
			}

			layout, err := compiler.NewParser().Parse(data)
			if err != nil {
				return err
			}
			saved, err := a.rt.Repository.Save(cmd.Context(), args[0], layout)
			if err != nil {
				return err
			}
			cli.PrintSystemMessage(cmd.OutOrStdout(), "Saved %s (%s)", saved.Filename, saved.StorageLocation)
			return nil
		},
	}
}

func newLayoutCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <filename>...",
		Short: "Check saved layouts against the catalog",
		Long: `Reports unnamed or duplicate groups, invalid column counts, items without a
dataField, fields placed twice and fields missing from the catalog.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.rt.Catalog.LoadCatalog(cmd.Context())
			if err != nil {
				return err
			}

			failed := 0
			for _, filename := range args {
				doc, err := a.rt.Repository.Get(cmd.Context(), filename)
				if err != nil {
					return err
				}
				if err := validator.ValidateLayout(doc.Layout, cat); err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", doc.Filename, err)
					continue
				}
				cli.PrintSystemMessage(cmd.OutOrStdout(), "%s: ok", doc.Filename)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d layout(s) failed the check", failed, len(args))
			}
			return nil
		},
	}
}

func unknownFormat(got string, want ...string) error {
	return fmt.Errorf("unknown format %q (want %s)", got, strings.Join(want, ", "))
}
