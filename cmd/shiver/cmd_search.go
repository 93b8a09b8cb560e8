package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/shiver/pkg/shiver/records"
	"github.com/cognicore/shiver/pkg/shiver/search"
)

func (a *app) searchCmd() *cobra.Command {
	var (
		kinds []string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search saved records across collections",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := search.Query{Text: strings.Join(args, " "), Limit: limit}
			for _, k := range kinds {
				kind, err := records.ParseKind(k)
				if err != nil {
					return err
				}
				q.Kinds = append(q.Kinds, kind)
			}

			ctx := cmd.Context()
			s, err := a.open(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			hits, err := s.Search(ctx, q)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(hits) == 0 {
				fmt.Fprintln(out, "No matches.")
				return nil
			}
			for _, h := range hits {
				fmt.Fprintf(out, "%.1f\t%s #%d\t%s\t%s\n", h.Score, h.Kind, h.ID, h.Title, h.Route)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&kinds, "kind", "k", nil, "restrict to collections (character, location, chapter, case, media)")
	cmd.Flags().IntVarP(&limit, "limit", "n", search.DefaultLimit, "maximum number of hits")
	return cmd
}
