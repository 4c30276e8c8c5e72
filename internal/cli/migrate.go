package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nyumbalink/nyumbalink/internal/database"
)

func newMigrateCmd() *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				ms, err := database.Migrations()
				if err != nil {
					return err
				}
				for _, m := range ms {
					info.Printf("%s  %s\n", m.Checksum[:12], m.Name)
				}
				return nil
			}

			db, _, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			res, err := database.Migrate(ctx, db)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			applied := 0
			for _, r := range res {
				if r.Applied {
					applied++
					ok.Printf("✅ applied %s\n", r.Name)
				}
			}
			if applied == 0 {
				info.Println("schema is up to date")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "List the embedded migrations without connecting")
	return cmd
}
