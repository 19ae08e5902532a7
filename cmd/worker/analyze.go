package main

import (
	"fmt"

	"github.com/pnt-cleaner/internal/report"
	"github.com/spf13/cobra"
)

func (c *cli) analyzeCmd() *cobra.Command {
	var (
		input   string
		output  string
		columns []string
		limit   uint64
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Write a workbook with the value distribution of each column",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if cmd.Flags().Changed("limit") {
				c.cfg.Database.Limit = limit
			}
			if output == "" {
				output = c.cfg.Output.VariationPath
			}

			src, err := c.openSource(ctx, input)
			if err != nil {
				return err
			}
			defer src.Close()

			analyzer := report.NewAnalyzer(columns, c.logger)
			if err := analyzer.AddAll(ctx, src); err != nil {
				return err
			}
			variation := analyzer.Result()
			if err := report.SaveVariation(c.fs, output, variation); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d records, %d columns analyzed, written to %s\n",
				variation.Records, len(variation.Columns), output)
			for _, col := range variation.Missing {
				fmt.Fprintf(cmd.ErrOrStderr(), "missing column: %s\n", col)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&input, "input", "", "CSV export to analyze instead of the database table")
	flags.StringVar(&output, "output", "", "workbook path (default output.variation_path)")
	flags.StringSliceVar(&columns, "columns", nil, "columns to analyze (default every column)")
	flags.Uint64Var(&limit, "limit", 0, "maximum rows read from the database")
	return cmd
}
