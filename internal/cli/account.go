package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nyumbalink/nyumbalink/internal/model"
	"github.com/nyumbalink/nyumbalink/internal/repository"
)

// newPromoteCmd covers the one role change the API cannot make: creating
// the first SUPER_ADMIN.
func newPromoteCmd() *cobra.Command {
	var email, role string
	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Change a user's role",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, valid := model.ParseRole(role)
			if !valid {
				return fmt.Errorf("unknown role %q", role)
			}
			db, _, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			users := repository.NewUserRepo(db)
			u, err := users.GetByEmail(ctx, email)
			if err != nil {
				return fmt.Errorf("%s: %w", email, err)
			}
			if u.Role == r {
				info.Printf("%s is already %s\n", u.Email, r)
				return nil
			}
			if err := users.SetRole(ctx, u.ID, r); err != nil {
				return err
			}
			// old access tokens still carry the previous role
			if err := repository.NewTokenRepo(db).RevokeAllForUser(ctx, u.ID); err != nil {
				return err
			}
			ok.Printf("✅ %s: %s -> %s\n", u.Email, u.Role, r)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&role, "role", string(model.RoleSuperAdmin), "TENANT, PROPERTY_ADMIN or SUPER_ADMIN")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newTokensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Refresh token maintenance",
	}
	var olderThan time.Duration
	purge := &cobra.Command{
		Use:   "purge",
		Short: "Delete expired and revoked refresh tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			n, err := repository.NewTokenRepo(db).PurgeExpired(ctx, time.Now().UTC().Add(-olderThan))
			if err != nil {
				return err
			}
			ok.Printf("✅ purged %d refresh tokens\n", n)
			return nil
		},
	}
	purge.Flags().DurationVar(&olderThan, "older-than", 0, "Keep tokens that expired or were revoked more recently than this")
	cmd.AddCommand(purge)
	return cmd
}
