package main

import (
	"io"
	"os"

	"remember_galleries/internal/editor"

	"github.com/spf13/cobra"
)

func newExpandCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expand [file]",
		Short: "Rewrite [gallery slug=...] shortcodes to explicit attachment ids",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			content, err := io.ReadAll(in)
			if err != nil {
				return err
			}

			return withClient(opts, func(client *editor.Client) error {
				expanded, err := client.ExpandShortcodes(cmd.Context(), string(content))
				if err != nil {
					return err
				}

				if opts.json {
					return writeJSON(cmd, expanded)
				}
				_, err = io.WriteString(cmd.OutOrStdout(), expanded.Content)
				return err
			})
		},
	}

	return cmd
}
