// Package cli implements nyumbactl, the operator tool for schema
// migrations, fixture seeding and account maintenance.
package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nyumbalink/nyumbalink/internal/config"
	"github.com/nyumbalink/nyumbalink/internal/database"
)

var (
	ok   = color.New(color.FgGreen, color.Bold)
	warn = color.New(color.FgYellow, color.Bold)
	bad  = color.New(color.FgRed, color.Bold)
	info = color.New(color.FgCyan)
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nyumbactl",
		Short: "Operator tool for the NyumbaLink API",
		Long: `nyumbactl manages the NyumbaLink database.

Examples:

  nyumbactl migrate
  nyumbactl seed --file fixtures.yaml
  nyumbactl promote --email admin@example.com --role SUPER_ADMIN
  nyumbactl tokens purge --older-than 720h
`,
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
				warn.Printf("⚠️  .env not loaded: %v\n", err)
			}
		},
	}
	root.AddCommand(newMigrateCmd(), newSeedCmd(), newPromoteCmd(), newTokensCmd())
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		bad.Println("❌", err)
		os.Exit(1)
	}
}

// openDB connects with the DB_* settings only.
func openDB() (*sql.DB, config.Config, error) {
	cfg := config.LoadDB()
	db, err := database.Open(context.Background(), database.Settings{
		User: cfg.DBUser, Pass: cfg.DBPass,
		Host: cfg.DBHost, Port: cfg.DBPort,
		Name:         cfg.DBName,
		MaxOpenConns: 2,
		MaxIdleConns: 2,
	})
	if err != nil {
		return nil, cfg, fmt.Errorf("connect: %w", err)
	}
	return db, cfg, nil
}
