package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/auth"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

func newTokenCommand() *cobra.Command {
	var (
		actor auth.Actor
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a bearer token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			if cfg.Auth.JWTSecret == "" {
				return errors.New("AUTH_JWT_SECRET is required")
			}

			token, err := auth.NewAuthenticator(cfg.Auth.JWTSecret).Sign(actor, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&actor.ID, "subject", "", "actor id (token subject)")
	cmd.Flags().StringVar(&actor.Email, "email", "", "actor email")
	cmd.Flags().StringVar(&actor.Role, "role", auth.RoleCustomer, "actor role (admin or customer)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
