package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/noah-isme/gw-dashboard-api/internal/dto"
	"github.com/noah-isme/gw-dashboard-api/internal/models"
	"github.com/noah-isme/gw-dashboard-api/internal/service"
	"github.com/noah-isme/gw-dashboard-api/pkg/scenario"
)

type breakevenOptions struct {
	scenarioFile string
	remaining    int
	format       string
	output       string
}

func newBreakevenCmd(root *rootOptions) *cobra.Command {
	opts := &breakevenOptions{}
	cmd := &cobra.Command{
		Use:   "breakeven",
		Short: "Compute the breakeven model from a scenario file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBreakeven(cmd, root, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.scenarioFile, "scenario", "", "scenario YAML (default: built-in)")
	f.IntVar(&opts.remaining, "remaining", -1, "students remaining for the what-if (default: existing school count)")
	f.StringVar(&opts.format, "format", "table", "table, csv, xlsx or pdf")
	f.StringVarP(&opts.output, "output", "o", "", "output file for csv/xlsx/pdf (default stdout)")
	return cmd
}

func runBreakeven(cmd *cobra.Command, root *rootOptions, opts *breakevenOptions) error {
	log := root.logger()
	defer log.Sync() //nolint:errcheck

	store, err := scenario.NewStore(opts.scenarioFile, log)
	if err != nil {
		return err
	}
	calc := service.NewCalculatorService(store, nil, service.CalculatorConfig{}, log)
	req := dto.CalculatorRequest{}
	if opts.remaining >= 0 {
		req.RemainingStudents = &opts.remaining
	}

	format := strings.ToLower(opts.format)
	if format != "table" {
		file, err := calc.Report(context.Background(), req, models.ExportFormat(format))
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), opts.output, file.Payload)
	}

	res, err := calc.Compute(context.Background(), req, false)
	if err != nil {
		return err
	}
	printComparison(cmd.OutOrStdout(), res)
	return nil
}

func printComparison(w io.Writer, res *models.CalculatorResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	data := service.ComparisonDataset(res)
	fmt.Fprintf(tw, "%s\t%s\t%s\t\n", data.Columns[0], data.Columns[1], data.Columns[2])
	for _, rec := range data.Records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", rec.Text("Metric"), amount(rec.Get("Your Model").Float()), amount(rec.Get("Existing School").Float()))
	}
	_ = tw.Flush()
	fmt.Fprintln(w)
	for _, d := range res.Diagnostics {
		fmt.Fprintf(w, "[%s] %s\n", d.Level, d.Message)
	}
}

func amount(v float64, ok bool) string {
	if !ok {
		return "-"
	}
	return humanize.Commaf(v)
}
