package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dinofightergenesis/dinofighterg/internal/identity"
)

func tokenCommand() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token HOLDER",
		Short: "Issue an API bearer token for HOLDER",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("auth.jwt_secret is not configured")
			}
			p := identity.NewJWTProvider(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
			token, err := p.Sign(args[0], ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
