package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/grez-lucas/bank-uicheck/internal/harness/scenario"
	"github.com/spf13/cobra"
)

func newListCommand(root *rootCommand) *cobra.Command {
	var only []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the available scenarios",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			scenarios, err := scenario.Select(scenario.Catalogue(), only)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(root.stdout, 0, 4, 2, ' ', 0)
			for _, sc := range scenarios {
				_, _ = fmt.Fprintf(tw, "%s\t%s\n", sc.Name, sc.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringArrayVar(&only, "only", nil, "list only scenarios matching this glob")
	return cmd
}
