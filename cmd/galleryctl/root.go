package main

import (
	"encoding/json"
	"fmt"
	"os"

	"remember_galleries/internal/editor"

	"github.com/spf13/cobra"
)

type globalOptions struct {
	server string
	token  string
	json   bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "galleryctl",
		Short:         "galleryctl manages remembered galleries from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Version = "0.1.0"
	cmd.PersistentFlags().StringVar(&opts.server, "server", envOr("GALLERYCTL_SERVER", "http://localhost:8080"), "service base URL")
	cmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("GALLERYCTL_TOKEN"), "capability token")
	cmd.PersistentFlags().BoolVar(&opts.json, "json", false, "output JSON")

	cmd.AddCommand(
		newTokenCmd(opts),
		newSearchCmd(opts),
		newSaveCmd(opts),
		newExpandCmd(opts),
	)

	return cmd
}

func withClient(opts *globalOptions, fn func(*editor.Client) error) error {
	client, err := editor.NewClient(opts.server, opts.token)
	if err != nil {
		return err
	}
	return fn(client)
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
