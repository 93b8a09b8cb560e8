package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func (a *app) templateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage custom mapping templates",
		Long: `Manage custom mapping templates.

A template is JSON of the form {"kind": "<collection>", "fields": {...}}.
Items whose context label equals a template name map to its collection,
with its fields filling whatever the draft leaves empty.`,
	}

	add := &cobra.Command{
		Use:   "add <name> <file|->",
		Short: "Validate and register a template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				raw []byte
				err error
			)
			if args[1] == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(args[1])
			}
			if err != nil {
				return err
			}

			s, err := a.open(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := s.AddTemplate(args[0], string(raw))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Template %q maps to %s\n", t.Name, t.Kind)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			tpls := s.Templates().List()
			if len(tpls) == 0 {
				fmt.Fprintln(out, "No templates.")
				return nil
			}
			for _, t := range tpls {
				fmt.Fprintf(out, "%s\t%s\t%d fields\n", t.Name, t.Kind, len(t.Fields))
			}
			return nil
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}
