package main

import (
	"context"

	"github.com/desertthunder/lendx/internal/formatter"
	"github.com/desertthunder/lendx/internal/models"
	"github.com/desertthunder/lendx/internal/registry"
	"github.com/desertthunder/lendx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Export writes every person and their loans passing the filter to a file, or to stdout for "-".
//
// The export order follows --sort/--order when given and the stored order otherwise; it is never saved.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	output := cmd.String("output")

	key, order, sorted, err := r.sortOptions(cmd, "sort")
	if err != nil {
		return err
	}
	pred, err := models.ParsePredicate(cmd.String("filter"))
	if err != nil {
		return err
	}

	return r.withLedger(cmd, func(l *ledger) (bool, error) {
		if sorted {
			if err := l.registry.Sort(key, order); err != nil {
				return false, err
			}
		}
		if err := l.registry.Filter(registry.FilterAll, pred); err != nil {
			return false, err
		}

		persons := l.registry.Persons()
		if cmd.Bool("per-person") {
			return false, r.exportStatements(ctx, cmd, persons)
		}

		if output == "-" {
			data, err := formatter.Export(format, persons, r.config.Display.Currency)
			if err != nil {
				return false, err
			}
			return false, r.writePlain("%s", data)
		}

		path, err := formatter.WriteExport(format, persons, r.config.Display.Currency, output)
		if err != nil {
			return false, err
		}

		r.logger.Info("ledger exported", "format", format, "path", path, "persons", len(persons))
		return false, r.writePlain("✓ Exported %d persons to %s\n", len(persons), path)
	})
}

// exportStatements writes a statement per person into the --output directory.
func (r *Runner) exportStatements(ctx context.Context, cmd *cli.Command, persons []*models.Person) error {
	prog := make(chan tasks.ProgressUpdate, len(persons)+2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range prog {
			r.logger.Debug(u.Message, "phase", u.Phase, "step", u.Step, "total", u.Total)
		}
	}()

	engine := tasks.NewStatementEngine(r.config.Display.Currency, r.logger)
	result, err := engine.BulkExport(ctx, prog, persons, tasks.BulkExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate-limit"),
	})
	close(prog)
	<-done
	if err != nil {
		return err
	}

	for _, res := range result.Results {
		if !res.Success {
			r.writePlain("✗ %s: %s\n", res.Person, res.Error)
		}
	}
	return r.writePlain("✓ Exported %d of %d statements to %s (manifest: %s)\n",
		result.Successful, result.TotalPersons, result.OutputDirectory, result.ManifestPath)
}
