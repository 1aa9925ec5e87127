package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/lendx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file when missing, then initializes the database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
			config, err := shared.LoadConfig(configPath)
			if err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
			} else {
				r.config = config
			}
		}
	}

	path := r.config.Database.Path
	if cmd.String("db") != "" {
		path = cmd.String("db")
	}
	r.logger.Info("initializing database", "path", path)

	db, err := shared.NewDatabase(path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, path, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	versions, err := shared.AppliedVersions(db)
	if err != nil {
		return err
	}

	r.logger.Infof("setup complete for database: %v", path)
	r.writePlain("✓ Database ready: %s (%d migrations applied)\n", path, len(versions))
	return nil
}

// Rollback reverts the most recent migration.
func (r *Runner) Rollback(ctx context.Context, cmd *cli.Command) error {
	path := r.config.Database.Path
	if cmd.String("db") != "" {
		path = cmd.String("db")
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := shared.RollbackMigration(db); err != nil {
		return err
	}

	r.logger.Info("rolled back latest migration", "path", path)
	r.writePlain("✓ Rolled back latest migration\n")
	return nil
}
