package main

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"greentrack/internal/middleware"
)

func newTokenCommand(a *app, stdout io.Writer) *cobra.Command {
	var (
		role    string
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a signed JWT for the HTTP admin endpoints.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := middleware.GenerateToken(a.settings.JWTSecret, subject, role, ttl)
			if err != nil {
				return err
			}
			printf(stdout, "%s\n", tok)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&role, "role", middleware.RoleAdmin, "role claim")
	flags.StringVar(&subject, "subject", "greentrack-cli", "subject claim")
	flags.DurationVar(&ttl, "ttl", 72*time.Hour, "token lifetime")
	return cmd
}
