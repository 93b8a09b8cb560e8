package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/shiver/pkg/shiver/dispatch"
)

func labelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "labels",
		Short: "List the predefined context labels and their collections",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, l := range dispatch.Labels() {
				r := dispatch.Resolve(l)
				fmt.Fprintf(out, "%s\t%s\t%s\n", l, r.Shape, r.Branch)
			}
		},
	}
}
