package main

import (
	"fmt"
	"text/tabwriter"

	"remember_galleries/internal/editor"

	"github.com/spf13/cobra"
)

func newSearchCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Search galleries by name; no term lists recent galleries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := ""
			if len(args) == 1 {
				term = args[0]
			}

			return withClient(opts, func(client *editor.Client) error {
				widget := editor.NewWidget(client, editor.DefaultMessages())
				if err := widget.Type(cmd.Context(), term); err != nil {
					return err
				}
				widget.Wait()

				if err := widget.Err(); err != nil {
					return err
				}

				results := widget.Results()
				if opts.json {
					return writeJSON(cmd, results)
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tSLUG\tCOUNT")
				for _, r := range results {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", r.ID, r.Name, r.Slug, r.Count)
				}
				return tw.Flush()
			})
		},
	}

	return cmd
}
