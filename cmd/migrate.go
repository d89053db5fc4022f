package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xiaotaozi1127/story-teller-backend/internal/database"
	"github.com/xiaotaozi1127/story-teller-backend/pkg/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Manage database migrations for the Story Teller API.

Migrations create the voice, story and chunk tables in the sqlite
database configured under database.path. The server migrates on start
when storage.backend is sqlite; these commands do it ahead of time.

Available subcommands:
  up      - Apply all pending migrations
  status  - Show current migration status`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Long: `Apply all pending database migrations.

Missing tables are created and existing ones gain any new columns
and indexes, bringing the schema up to date.`,
	RunE: runMigrateUp,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	Long: `Display the current status of database migrations.

This command lists the tables that exist and the ones still pending.`,
	RunE: runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)

	migrateUpCmd.Flags().Bool("dry-run", false, "show what would be done without making changes")
}

func openDatabase(cmd *cobra.Command) (*database.DB, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openDatabaseWith(cfg.Database)
}

func openDatabaseWith(cfg config.DatabaseConfig) (*database.DB, error) {
	return database.Initialize(database.Options{
		Path:              cfg.Path,
		LogQueries:        cfg.LogQueries,
		EnableWAL:         cfg.EnableWAL,
		EnableForeignKeys: cfg.EnableForeignKeys,
	})
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	db, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	return migrateUp(cmd, db)
}

func migrateUp(cmd *cobra.Command, db *database.DB) error {
	out := cmd.OutOrStdout()
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	pending, err := db.PendingMigrations()
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Fprintln(out, "Dry run mode - no changes will be made")
		if len(pending) == 0 {
			fmt.Fprintln(out, "No tables to create; existing tables would be brought up to date")
			return nil
		}
		fmt.Fprintf(out, "Would create: %s\n", strings.Join(pending, ", "))
		return nil
	}

	if err := db.Migrate(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrations applied (%d new table(s))\n", len(pending))
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	db, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	return migrateStatus(cmd, db)
}

func migrateStatus(cmd *cobra.Command, db *database.DB) error {
	out := cmd.OutOrStdout()

	pending, err := db.PendingMigrations()
	if err != nil {
		return err
	}
	missing := make(map[string]bool, len(pending))
	for _, table := range pending {
		missing[table] = true
	}

	tables, err := db.Tables()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Database Migration Status")
	fmt.Fprintln(out, strings.Repeat("=", 50))
	for _, table := range tables {
		state := "applied"
		if missing[table] {
			state = "pending"
		}
		fmt.Fprintf(out, "  %-10s %s\n", table, state)
	}
	fmt.Fprintf(out, "\n%d pending\n", len(pending))
	return nil
}
