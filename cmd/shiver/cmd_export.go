package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cognicore/shiver/pkg/shiver/export"
)

func (a *app) exportCmd() *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every collection as a workbook or a JSON backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var write func(w io.Writer) error

			ctx := cmd.Context()
			s, err := a.open(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			switch format {
			case "xlsx":
				write = func(w io.Writer) error { return export.Workbook(ctx, s.Store(), w) }
			case "json":
				write = func(w io.Writer) error { return export.Backup(ctx, s.Store(), w) }
			default:
				return fmt.Errorf("unknown export format %q (want xlsx or json)", format)
			}

			if output == "" || output == "-" {
				return write(cmd.OutOrStdout())
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := write(f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "xlsx or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (a *app) restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup.json>",
		Short: "Add every record of a JSON backup to the collections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			ctx := cmd.Context()
			s, err := a.open(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := export.Restore(ctx, s.Store(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %d records\n", n)
			return nil
		},
	}
}
