package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cfnts/cfnts/internal/diagnostic"
	"github.com/cfnts/cfnts/internal/generate"
	"github.com/cfnts/cfnts/internal/logging"
	"github.com/cfnts/cfnts/internal/source"
)

func newDumpCmd(g *globalFlags) *cobra.Command {
	var format, docsPath string
	cmd := &cobra.Command{
		Use:   "dump <schema.json>",
		Short: "Print the compiled type model of one schema (debug)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading schema: %w", err)
			}
			var docs *source.DocFile
			if docsPath != "" {
				if docs, err = source.LoadDocFile(docsPath); err != nil {
					return err
				}
			}
			reporter := diagnostic.NewLogReporter(logging.Logger(), nil)
			rt, err := generate.Compile(data, reporter, docs)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return generate.WriteDump(cmd.OutOrStdout(), rt, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", generate.DumpJSON, "output format: json or go")
	cmd.Flags().StringVar(&docsPath, "docs", "", "supplemental documentation file")
	return cmd
}
