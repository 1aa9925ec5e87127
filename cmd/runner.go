package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lendx/internal/models"
	"github.com/desertthunder/lendx/internal/registry"
	"github.com/desertthunder/lendx/internal/repositories"
	"github.com/desertthunder/lendx/internal/shared"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, personCommand, loanCommand, exportCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// ledger is an open database with its persons loaded into a registry.
type ledger struct {
	db       *sql.DB
	repo     *repositories.LedgerRepository
	registry *registry.Registry
	cancel   func()
}

// openLedger opens the configured database, applies pending migrations and loads every person into a new registry.
//
// The --db flag, when set, overrides the configured database path.
func (r *Runner) openLedger(cmd *cli.Command) (*ledger, error) {
	path := r.config.Database.Path
	if cmd != nil && cmd.String("db") != "" {
		path = cmd.String("db")
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, path, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	repo := repositories.NewLedgerRepository(db)
	persons, err := repo.Load()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	reg := registry.New()
	if err := reg.SetPersons(persons); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	logger := shared.WithLogger(r.logger, "db", path)
	cancel := reg.Subscribe(func(e registry.Event) {
		logger.Debug("registry changed", "event", e.Kind, "persons", reg.Len())
	})
	logger.Debug("ledger loaded", "persons", reg.Len())

	return &ledger{db: db, repo: repo, registry: reg, cancel: cancel}, nil
}

// save writes the registry back to the database.
func (l *ledger) save() error {
	return l.repo.Save(l.registry.Persons())
}

func (l *ledger) Close() error {
	l.cancel()
	return l.db.Close()
}

// withLedger opens the ledger, runs fn and closes it again. When fn reports a change the ledger is saved.
func (r *Runner) withLedger(cmd *cli.Command, fn func(*ledger) (changed bool, err error)) error {
	l, err := r.openLedger(cmd)
	if err != nil {
		return err
	}
	defer l.Close()

	changed, err := fn(l)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	if err := l.save(); err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	return nil
}

// personAt resolves a 1-based person argument.
func (l *ledger) personAt(cmd *cli.Command, name string) (int, *models.Person, error) {
	idx, err := parseIndex(cmd.StringArg(name), name, l.registry.Len())
	if err != nil {
		return 0, nil, err
	}
	return idx, l.registry.View().At(idx), nil
}

// parseIndex converts a 1-based index argument into a 0-based index below n.
func parseIndex(raw, name string, n int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	i, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number, got %q", shared.ErrInvalidArgument, name, raw)
	}
	if i < 1 || i > n {
		return 0, fmt.Errorf("%w: %s %d (have %d)", shared.ErrIndexOutOfRange, name, i, n)
	}
	return i - 1, nil
}

// sortOptions reads the sort key flag byFlag and --order, falling back to the display defaults.
// set reports whether either flag was given on the command line.
func (r *Runner) sortOptions(cmd *cli.Command, byFlag string) (registry.SortKey, registry.SortOrder, bool, error) {
	by := cmd.String(byFlag)
	if by == "" {
		by = r.config.Display.DefaultSort
	}
	key := registry.SortKey(strings.ToLower(strings.TrimSpace(by)))
	if !key.Valid() {
		return "", "", false, fmt.Errorf("%w: unknown sort key %q (expected name, overdue or amount)", shared.ErrInvalidFlag, by)
	}

	orderFlag := cmd.String("order")
	if orderFlag == "" {
		orderFlag = r.config.Display.DefaultOrder
	}
	order := registry.SortOrder(strings.ToLower(strings.TrimSpace(orderFlag)))
	if !order.Valid() {
		return "", "", false, fmt.Errorf("%w: unknown sort order %q (expected asc or desc)", shared.ErrInvalidFlag, orderFlag)
	}

	return key, order, cmd.IsSet(byFlag) || cmd.IsSet("order"), nil
}

// parseAmount parses a non-negative decimal amount such as "1200.50".
func parseAmount(raw, name string) (float64, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, fmt.Errorf("%w: --%s", shared.ErrMissingArgument, name)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: --%s %q is not a number", shared.ErrInvalidFlag, name, raw)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: --%s must not be negative", shared.ErrInvalidFlag, name)
	}
	return d.InexactFloat64(), nil
}

// parseDateFlag parses a YYYY-MM-DD flag value, falling back to today when empty.
func parseDateFlag(raw, name string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return models.Today(), nil
	}
	d, err := models.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: --%s %q is not a YYYY-MM-DD date", shared.ErrInvalidFlag, name, raw)
	}
	return d, nil
}

func (r *Runner) money(f float64) string {
	return r.config.Display.Currency + models.FormatMoney(f)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// exitCode maps command errors to process exit codes: 2 for usage errors, 1 otherwise.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, shared.ErrMissingArgument),
		errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrIndexOutOfRange),
		errors.Is(err, shared.ErrInvalidFlag):
		return 2
	default:
		return 1
	}
}
