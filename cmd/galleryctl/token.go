package main

import (
	"errors"
	"os"
	"time"

	"remember_galleries/internal/lib/jwt"

	"github.com/spf13/cobra"
)

func newTokenCmd(opts *globalOptions) *cobra.Command {
	var (
		secret  string
		subject string
		caps    []string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a capability token signed with the service secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("--secret or AUTH_SECRET is required")
			}

			token, err := jwt.NewToken(subject, caps, ttl, secret)
			if err != nil {
				return err
			}

			if opts.json {
				return writeJSON(cmd, map[string]any{"token": token, "subject": subject, "caps": caps})
			}
			printf(cmd, "%s\n", token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", os.Getenv("AUTH_SECRET"), "signing secret")
	cmd.Flags().StringVar(&subject, "subject", "editor", "token subject")
	cmd.Flags().StringSliceVar(&caps, "cap", []string{jwt.CapEditGalleries, jwt.CapUploadFiles}, "granted capability")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")

	return cmd
}
