package main

import (
	"context"
	"os"

	"github.com/desertthunder/lendx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	app := newApp(runner)

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Error("application error", "error", err)
		os.Exit(exitCode(err))
	}
}

// newApp builds the root command with its global flags.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "lendx",
		Usage:   "Keep track of the people you lent money to and what they still owe",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Path to the SQLite database (overrides database.path)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
		Before:   r.loadConfig,
		Commands: r.register(),
	}
}

// loadConfig reads the --config file when it exists, applies LENDX_* overrides and sets the log level.
// A missing file keeps the defaults so every command works before `lendx setup`.
func (r *Runner) loadConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	r.configPath = cmd.String("config")

	if _, err := os.Stat(r.configPath); err == nil {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}
	if err := shared.ApplyEnv(r.config); err != nil {
		return ctx, err
	}

	level := r.config.Log.Level
	if cmd.String("log-level") != "" {
		level = cmd.String("log-level")
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(level))
	return ctx, nil
}
