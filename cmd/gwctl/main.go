package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/gw-dashboard-api/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "gwctl",
		Short:         "Offline tools for the GW dashboard",
		Long:          "Merge issue spreadsheets and run the breakeven calculator without the API server.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging on stderr")
	cmd.AddCommand(newMergeCmd(opts), newBreakevenCmd(opts))
	return cmd
}

func (o *rootOptions) logger() *zap.Logger {
	l, err := logger.NewConsole(o.verbose)
	if err != nil {
		return zap.NewNop()
	}
	return l
}
