// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the built-in models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "name\tmodel\tparameters")
			for _, name := range builtinNames() {
				b := builtins[name]
				fmt.Fprintf(tw, "%s\t%s\t%s\n", name, b.desc, strings.Join(b.names, ", "))
			}
			return tw.Flush()
		},
	}
}
