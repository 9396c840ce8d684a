package main

import (
	"github.com/spf13/cobra"

	"github.com/Dosada05/clubhub/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	RunE:  runMigrate,
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Rollback all migrations",
	RunE:  runMigrateDown,
}

func init() {
	migrateCmd.AddCommand(migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	conn, err := db.Connect(cmd.Context(), cfg.DatabaseURL, cfg.DB, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.MigrateUp(conn); err != nil {
		return err
	}
	logger.Info("migrations applied successfully")
	return nil
}

func runMigrateDown(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	conn, err := db.Connect(cmd.Context(), cfg.DatabaseURL, cfg.DB, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.MigrateDown(conn); err != nil {
		return err
	}
	logger.Info("migrations rolled back successfully")
	return nil
}
