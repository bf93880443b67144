package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/gw-dashboard-api/internal/models"
	"github.com/noah-isme/gw-dashboard-api/internal/service"
	"github.com/noah-isme/gw-dashboard-api/pkg/export"
	"github.com/noah-isme/gw-dashboard-api/pkg/tabular"
)

type mergeOptions struct {
	screen  string
	selects []string
	search  string
	format  string
	scope   string
	output  string
}

func newMergeCmd(root *rootOptions) *cobra.Command {
	opts := &mergeOptions{}
	cmd := &cobra.Command{
		Use:   "merge FILE...",
		Short: "Merge CSV/XLSX uploads and export the filtered view",
		Example: `  gwctl merge --screen teacher-issues --select "Issue Type=Late" -o late.xlsx a.csv b.xlsx
  gwctl merge --search rao jan.csv feb.csv > rao.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd, root, opts, args)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.screen, "screen", string(models.ScreenStudentIssues), "screen whose filters apply")
	f.StringArrayVar(&opts.selects, "select", nil, "filter as Column=Value (repeatable)")
	f.StringVar(&opts.search, "search", "", "case-insensitive text search")
	f.StringVar(&opts.format, "format", "", "csv or xlsx (default from --output extension, else csv)")
	f.StringVar(&opts.scope, "scope", string(models.ExportScopeFiltered), "filtered or all")
	f.StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func runMerge(cmd *cobra.Command, root *rootOptions, opts *mergeOptions, paths []string) error {
	log := root.logger()
	defer log.Sync() //nolint:errcheck

	schema, ok := models.LookupScreen(opts.screen)
	if !ok {
		return fmt.Errorf("unknown screen %q", opts.screen)
	}
	selections, err := parseSelections(opts.selects)
	if err != nil {
		return err
	}
	format := models.ExportFormat(strings.ToLower(opts.format))
	if format == "" {
		format = models.ExportFormatCSV
		if strings.EqualFold(filepath.Ext(opts.output), ".xlsx") {
			format = models.ExportFormatXLSX
		}
	}
	if format != models.ExportFormatCSV && format != models.ExportFormatXLSX {
		return fmt.Errorf("unsupported format %q", format)
	}

	uploads := make([]service.Upload, 0, len(paths))
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		uploads = append(uploads, service.Upload{Filename: filepath.Base(p), Content: content})
	}

	ingestSvc := service.NewIngestService(nil, nil, service.IngestConfig{MaxFiles: len(uploads)}, log)
	result, err := ingestSvc.Ingest(context.Background(), uploads)
	if err != nil {
		return err
	}
	stderr := cmd.ErrOrStderr()
	for _, src := range result.Sources {
		if src.Status == models.SourceFailed {
			fmt.Fprintf(stderr, "✗ %s: %s\n", src.File, src.Error)
			continue
		}
		fmt.Fprintf(stderr, "✓ %s: %d rows\n", src.File, src.Rows)
	}
	if result.Parsed == 0 {
		return fmt.Errorf("no file could be parsed")
	}

	view := result.Merged
	if models.ExportScope(opts.scope) != models.ExportScopeAll {
		filtered, diags, err := service.ApplyCascade(result.Merged, schema, selections)
		if err != nil {
			return err
		}
		for _, d := range diags {
			fmt.Fprintf(stderr, "! %s\n", d.Message)
		}
		view = service.ApplySearch(filtered, opts.search)
	}
	fmt.Fprintf(stderr, "%d of %d records\n", view.Len(), result.Merged.Len())

	payload, err := renderDataset(view, format)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), opts.output, payload)
}

func parseSelections(raw []string) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, s := range raw {
		col, val, ok := strings.Cut(s, "=")
		if !ok || strings.TrimSpace(col) == "" {
			return nil, fmt.Errorf("invalid --select %q, want Column=Value", s)
		}
		col = strings.TrimSpace(col)
		out[col] = append(out[col], strings.TrimSpace(val))
	}
	return out, nil
}

func renderDataset(data tabular.Dataset, format models.ExportFormat) ([]byte, error) {
	if format == models.ExportFormatXLSX {
		return export.NewXLSXExporter().Render(data, export.DefaultSheetName)
	}
	return export.NewCSVExporter().Render(data)
}

func writeOutput(stdout io.Writer, path string, payload []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(payload)
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}
