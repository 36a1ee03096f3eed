// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"yamdb/internal/database"
	"yamdb/internal/store"
)

func newCreateSuperuserCmd() *cobra.Command {
	var username, email string

	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create an admin account with superuser rights",
		Long: `Create an admin account with superuser rights.

The account has no password. Request a confirmation code through
POST /api/v1/auth/signup/ with the same username and email, then
exchange it for a token.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			db, err := database.Connect(ctx, cfg.DSN())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(ctx, db); err != nil {
				return err
			}

			u, err := store.NewUserStore(db).CreateSuperuser(ctx, username, email)
			var conflict *store.ConflictError
			if errors.As(err, &conflict) {
				return fmt.Errorf("cannot create superuser: %v already taken", conflict.Fields)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Superuser %q created (id %d).\n", u.Username, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username of the new account")
	cmd.Flags().StringVar(&email, "email", "", "email address of the new account")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")
	return cmd
}
