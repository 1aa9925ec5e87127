package tasks

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/desertthunder/lendx/internal/formatter"
	"github.com/desertthunder/lendx/internal/models"
	"github.com/desertthunder/lendx/internal/shared"
	"golang.org/x/time/rate"
)

// ManifestName is the file listing the outcome of a bulk export.
const ManifestName = "export_manifest.json"

const (
	defaultWorkers = 4
	maxWorkers     = 10
)

// BulkExportOpts contains configuration for bulk statement exports.
type BulkExportOpts struct {
	Format     string  // Export format: csv, md, txt, json
	OutputDir  string  // Output directory (default: statements_{today})
	NumWorkers int     // Concurrent workers (default: 4, max: 10)
	RateLimit  float64 // Statements written per second (0: unlimited)
}

// StatementResult is the outcome of exporting one person.
type StatementResult struct {
	Position int    `json:"position"`
	Person   string `json:"person"`
	File     string `json:"file,omitempty"`
	Loans    int    `json:"loans"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export. Results are in person order.
type BulkExportResult struct {
	Format          string            `json:"format"`
	OutputDirectory string            `json:"output_directory"`
	TotalPersons    int               `json:"total_persons"`
	Successful      int               `json:"successful"`
	Failed          int               `json:"failed"`
	Results         []StatementResult `json:"results"`
	ManifestPath    string            `json:"-"`
}

type statementJob struct {
	position int
	person   *models.Person
}

// BulkExport writes a statement per person concurrently and finishes with a manifest.
//
// Statements include only the visible loans of each person, so callers filter beforehand.
// A cancelled ctx stops pending jobs, including workers waiting on the rate limiter;
// the partial result is returned with the interrupting error and no manifest is written.
func (e *StatementEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	persons []*models.Person,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	format, err := formatter.NormalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	if opts.OutputDir == "" {
		opts.OutputDir = "statements_" + models.Today().Format(models.DateLayout)
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	opts.NumWorkers = min(opts.NumWorkers, maxWorkers)

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		Format:          format,
		OutputDirectory: opts.OutputDir,
		TotalPersons:    len(persons),
		Results:         make([]StatementResult, 0, len(persons)),
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	limiter := rate.NewLimiter(limit, 1)

	jobs := make(chan statementJob, len(persons))
	results := make(chan StatementResult, len(persons))
	// Each worker reports at most one limiter error before it stops.
	waitErrs := make(chan error, opts.NumWorkers)

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, limiter, jobs, results, waitErrs, format, opts.OutputDir)
	}

	e.sendProgress(prog, prepareUpdate(len(persons), opts.OutputDir))

	go func() {
		defer close(jobs)
		for i, p := range persons {
			select {
			case <-ctx.Done():
				return
			case jobs <- statementJob{position: i + 1, person: p}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.Successful++
			e.sendProgress(prog, statementCompletedUpdate(completed, len(persons), res.Person, res.File))
		} else {
			result.Failed++
			e.logger.Warn("statement export failed", "person", res.Person, "error", res.Error)
			e.sendProgress(prog, statementFailedUpdate(completed, len(persons), res.Person, res.Error))
		}
	}

	slices.SortFunc(result.Results, func(a, b StatementResult) int { return cmp.Compare(a.Position, b.Position) })

	close(waitErrs)
	err = ctx.Err()
	if err == nil {
		err = <-waitErrs
	}
	if err != nil {
		return result, fmt.Errorf("bulk export interrupted: %w", err)
	}

	manifestPath := filepath.Join(opts.OutputDir, ManifestName)
	e.sendProgress(prog, manifestUpdate(manifestPath))
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	e.logger.Info("bulk export complete", "dir", opts.OutputDir, "ok", result.Successful, "failed", result.Failed)
	return result, nil
}

// exportWorker is a worker goroutine that exports statements from the jobs channel.
//
// Every statement write first takes a token from limiter.
func (e *StatementEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan statementJob,
	results chan<- StatementResult,
	waitErrs chan<- error,
	format, dir string,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := limiter.Wait(ctx); err != nil {
			waitErrs <- err
			return
		}

		results <- e.exportStatement(job, format, dir)
	}
}

func (e *StatementEngine) exportStatement(j statementJob, format, dir string) StatementResult {
	result := StatementResult{Position: j.position}
	if j.person == nil {
		result.Error = fmt.Sprintf("%v: nil person", shared.ErrInvalidInput)
		return result
	}
	result.Person = j.person.Name
	result.Loans = j.person.Loans().VisibleLen()

	data, err := formatter.Export(format, []*models.Person{j.person}, e.currency)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	name := StatementFileName(j.position, j.person.Name, format)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		result.Error = fmt.Sprintf("failed to write statement: %v", err)
		return result
	}

	result.File = name
	result.Success = true
	return result
}

// StatementFileName builds "{position}_{slug}.{format}" with position zero-padded to two digits.
func StatementFileName(position int, name, format string) string {
	return fmt.Sprintf("%02d_%s.%s", position, slug(name), format)
}

func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "person"
	}
	return s
}

func writeManifest(result *BulkExportResult, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
