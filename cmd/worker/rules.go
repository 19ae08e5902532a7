package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/pnt-cleaner/internal/rules"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func (c *cli) rulesCmd() *cobra.Command {
	var dump bool
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the rule applied to each column",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if dump {
				source := rules.DefaultYAML()
				if path := c.cfg.Resources.RulesFile; path != "" {
					var err error
					if source, err = afero.ReadFile(c.fs, path); err != nil {
						return err
					}
				}
				_, err := out.Write(source)
				return err
			}

			eng, err := c.deps.BuildEngine(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "rules version %s\n\n", eng.Rules.Version)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "COLUMN\tRULE\tRESOURCES")
			for _, r := range eng.Processor.Dispatcher().Rules() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.Column, r.Kind, strings.Join(r.Resources, ", "))
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&dump, "dump", false, "print the rule set YAML instead")
	return cmd
}
