package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-cellar-backend/internal/config"
	"github.com/tbourn/go-cellar-backend/internal/repo"
	"github.com/tbourn/go-cellar-backend/internal/sysutil"
)

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:          "vintner",
		Short:        "Wine cellar API with live sync and an AI sommelier",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return loadEnvFile(sysutil.FirstNonEmpty(envFile, os.Getenv("ENV_FILE"), ".env"))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file loaded before reading the environment (default $ENV_FILE or .env; ignored when missing)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP API",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or upgrade the SQLite schema (sqlite driver only)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrate()
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the build version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version)
			},
		},
	)
	return root
}

// loadEnvFile loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

func runMigrate() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	sysutil.SetupLogger(nil, cfg.LogLevel, cfg.LogPretty)

	if cfg.Store.Driver != config.DriverSQLite {
		log.Info().Str("driver", cfg.Store.Driver).Msg("nothing to migrate")
		return nil
	}
	db, err := repo.OpenSQLite(cfg.Store.DBPath)
	if err != nil {
		return fmt.Errorf("open sqlite %q: %w", cfg.Store.DBPath, err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info().Str("path", cfg.Store.DBPath).Msg("schema up to date")
	return nil
}
