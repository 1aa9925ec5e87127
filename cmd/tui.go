package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lendx/internal/models"
	"github.com/desertthunder/lendx/internal/registry"
	"github.com/desertthunder/lendx/internal/shared"
	"github.com/desertthunder/lendx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI over the ledger.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	l, err := r.openLedger(cmd)
	if err != nil {
		return err
	}
	defer l.Close()

	key := registry.ParseSortKey(r.config.Display.DefaultSort)
	order := registry.ParseSortOrder(r.config.Display.DefaultOrder)
	if err := l.registry.Sort(key, order); err != nil {
		return err
	}

	model := ui.NewModel(l.registry, ui.Options{
		Currency: r.config.Display.Currency,
		Sort:     key,
		Order:    order,
		Filter:   models.FilterAll,
		Save:     l.repo.Save,
		Logger:   fileLogger,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
