package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cognicore/shiver/internal/manifest"
	"github.com/cognicore/shiver/pkg/shiver/content"
	"github.com/cognicore/shiver/pkg/shiver/extract"
	"github.com/cognicore/shiver/pkg/shiver/records"
)

func (a *app) importCmd() *cobra.Command {
	var (
		label        string
		save         bool
		manifestPath string
	)
	cmd := &cobra.Command{
		Use:   "import [file]...",
		Short: "Extract, parse and map documents, optionally saving the drafts",
		Long: `Run files through upload, parse and map under one context label.

Without --save the mapped drafts are printed as JSON and nothing is stored.
With --save every draft is approved as-is and added to its collection.

--manifest reads a JSONL batch instead, one {"label", "fileName", "text"}
or {"label", "path"} object per line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.open(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			var batches []manifest.Batch
			switch {
			case manifestPath != "":
				b, err := manifest.Load(manifestPath, a.log)
				if err != nil {
					return err
				}
				batches = b
			case label == "" || len(args) == 0:
				return fmt.Errorf("import needs --label and at least one file, or --manifest")
			default:
				b := manifest.Batch{Label: content.Label(label)}
				for _, path := range args {
					data, err := os.ReadFile(path)
					if err != nil {
						return err
					}
					b.Uploads = append(b.Uploads, extract.Upload{
						FileName:    filepath.Base(path),
						ContentType: extract.ContentTypeFor(path),
						Data:        data,
					})
				}
				batches = append(batches, b)
			}

			for _, b := range batches {
				res, err := s.Import(ctx, b.Label, b.Uploads, save, nil)
				if err != nil {
					return fmt.Errorf("%s: %w", b.Label, err)
				}
				for _, rep := range res.Reports {
					for _, o := range rep.Failed() {
						name := o.Name
						if name == "" {
							name = o.ID
						}
						fmt.Fprintf(cmd.ErrOrStderr(), "%s failed for %s: %v\n", rep.Stage, name, o.Err)
					}
				}
			}

			out := cmd.OutOrStdout()
			for _, it := range s.Workspace().List() {
				fmt.Fprintf(out, "%s\t%s\t%s\n", it.FileName, it.Status, describe(it))
				if !save && it.Mapped != nil {
					body, err := records.MarshalRecord(it.Mapped)
					if err != nil {
						return err
					}
					fmt.Fprintln(out, string(body))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&label, "label", "l", "", "context label for the files")
	cmd.Flags().BoolVar(&save, "save", false, "approve and save every mapped draft")
	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "JSONL batch manifest")
	return cmd
}

func describe(it *content.Item) string {
	switch {
	case it.Status == content.StatusSaved:
		return fmt.Sprintf("%s #%d %q", it.Mapped.Kind(), it.SavedID, it.Mapped.Title())
	case it.Mapped != nil:
		return fmt.Sprintf("%s %q", it.Mapped.Kind(), it.Mapped.Title())
	case it.Annotation != "":
		return it.Annotation
	default:
		return ""
	}
}
