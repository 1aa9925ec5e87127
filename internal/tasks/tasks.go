package tasks

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	Prepare Phase = iota
	ExportStatement
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case Prepare:
		return "prepare"
	case ExportStatement:
		return "export_statement"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

// StatementEngine renders per-person statements.
type StatementEngine struct {
	currency string
	logger   *log.Logger
}

// NewStatementEngine creates a [StatementEngine] printing money with currency.
func NewStatementEngine(currency string, logger *log.Logger) *StatementEngine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &StatementEngine{currency: currency, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *StatementEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func prepareUpdate(total int, dir string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Prepare,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Exporting %d statements to %s...", total, dir),
	}
}

func statementCompletedUpdate(step, total int, name, file string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportStatement,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s → %s", step, total, name, file),
	}
}

func statementFailedUpdate(step, total int, name, reason string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportStatement,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, name, reason),
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing manifest %s", path),
	}
}
