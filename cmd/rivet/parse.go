package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rivet/internal/ast"
	"rivet/internal/diagfmt"
	"rivet/internal/driver"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] file.rv",
	Short: "Parse a rivet source file and list its top-level items",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type itemSummary struct {
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	StartLine uint32 `json:"start_line"`
	EndLine   uint32 `json:"end_line"`
}

func runParse(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	result, err := driver.Parse(filePath, maxDiagnostics)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	if result.Bag.Len() > 0 {
		opts := diagfmt.PrettyOpts{
			Color:     useColor(cmd, os.Stderr),
			ShowNotes: true,
		}
		diagfmt.Pretty(os.Stderr, result.Bag, result.FileSet, opts)
	}

	items := collectItemSummaries(result)
	switch format {
	case "pretty":
		for _, it := range items {
			fmt.Fprintf(os.Stdout, "%-6s %-20s lines %d-%d\n", it.Kind, it.Name, it.StartLine, it.EndLine)
		}
		if result.Bag.HasErrors() {
			cmd.SilenceUsage = true
			return fmt.Errorf("parse finished with errors")
		}
		return nil
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(items)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func collectItemSummaries(result *driver.ParseResult) []itemSummary {
	builder := result.Builder
	file := builder.Files.Get(result.FileID)
	summaries := make([]itemSummary, 0, len(file.Items))
	for _, itemID := range file.Items {
		item := builder.Items.Get(itemID)
		summary := itemSummary{Kind: "item", Name: "?"}
		switch item.Kind {
		case ast.ItemFn:
			summary.Kind = "fn"
			if fn, ok := builder.Items.Fn(itemID); ok {
				summary.Name = builder.StringsInterner.MustLookup(fn.Name)
			}
		case ast.ItemType:
			summary.Kind = "type"
			if ty, ok := builder.Items.Type(itemID); ok {
				summary.Name = builder.StringsInterner.MustLookup(ty.Name)
			}
		}
		start, end := result.FileSet.Resolve(item.Span)
		summary.StartLine = start.Line
		summary.EndLine = end.Line
		summaries = append(summaries, summary)
	}
	return summaries
}
