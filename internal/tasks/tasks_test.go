package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/lendx/internal/models"
	"github.com/desertthunder/lendx/internal/shared"
	tu "github.com/desertthunder/lendx/internal/testing"
)

func statementFixture(t *testing.T) []*models.Person {
	t.Helper()
	tu.PinToday(t, 2026, time.October, 15)

	alice := models.NewPerson("Alice Smith", "91234567", "", "", []string{"family"},
		tu.MustLoan(t, models.Simple, 1200, 0.01, "2025-01-01", "2026-01-01"),
		tu.MustLoan(t, models.Compound, 1000, 0.02, "2026-09-01", "2027-03-01"),
	)
	bob := models.NewPerson("Bob", "", "bob@example.com", "", nil)
	mei := models.NewPerson("Mei O'Neil", "", "", "", nil,
		tu.MustLoan(t, models.Simple, 300, 0, "2026-01-01", "2026-07-01"),
	)
	return []*models.Person{alice, bob, mei}
}

func TestBulkExport(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		wantFiles []string
		contains  string
	}{
		{
			name:      "markdown statements",
			format:    "md",
			wantFiles: []string{"01_alice-smith.md", "02_bob.md", "03_mei-o-neil.md"},
			contains:  "## Alice Smith",
		},
		{
			name:      "csv statements",
			format:    "csv",
			wantFiles: []string{"01_alice-smith.csv", "02_bob.csv", "03_mei-o-neil.csv"},
			contains:  "Person,Index,Type",
		},
		{
			name:      "text alias",
			format:    "text",
			wantFiles: []string{"01_alice-smith.txt", "02_bob.txt", "03_mei-o-neil.txt"},
			contains:  "Alice Smith (owes",
		},
		{
			name:      "json statements",
			format:    "json",
			wantFiles: []string{"01_alice-smith.json", "02_bob.json", "03_mei-o-neil.json"},
			contains:  `"name": "Alice Smith"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			persons := statementFixture(t)
			dir := filepath.Join(t.TempDir(), "out")
			engine := NewStatementEngine("$", nil)

			result, err := engine.BulkExport(context.Background(), nil, persons, BulkExportOpts{
				Format:     tt.format,
				OutputDir:  dir,
				NumWorkers: 2,
			})
			if err != nil {
				t.Fatalf("BulkExport failed: %v", err)
			}

			if result.Successful != 3 || result.Failed != 0 || result.TotalPersons != 3 {
				t.Errorf("unexpected counts: %+v", result)
			}
			for i, res := range result.Results {
				if res.Position != i+1 {
					t.Errorf("results out of order: %+v", result.Results)
				}
				if res.File != tt.wantFiles[i] {
					t.Errorf("expected file %s, got %s", tt.wantFiles[i], res.File)
				}
				tu.AssertFileExists(t, filepath.Join(dir, res.File))
			}

			content := tu.MustReadFile(t, filepath.Join(dir, tt.wantFiles[0]))
			if !strings.Contains(content, tt.contains) {
				t.Errorf("statement missing %q:\n%s", tt.contains, content)
			}
			if strings.Contains(content, "Bob") {
				t.Error("statement of one person should not mention another")
			}
		})
	}
}

func TestBulkExportManifest(t *testing.T) {
	persons := statementFixture(t)
	dir := t.TempDir()

	result, err := NewStatementEngine("€", nil).BulkExport(context.Background(), nil, persons, BulkExportOpts{
		Format:    "md",
		OutputDir: dir,
	})
	if err != nil {
		t.Fatalf("BulkExport failed: %v", err)
	}

	if result.ManifestPath != filepath.Join(dir, ManifestName) {
		t.Errorf("unexpected manifest path %s", result.ManifestPath)
	}

	var manifest BulkExportResult
	if err := json.Unmarshal([]byte(tu.MustReadFile(t, result.ManifestPath)), &manifest); err != nil {
		t.Fatalf("invalid manifest: %v", err)
	}
	if manifest.Format != "md" || manifest.Successful != 3 || len(manifest.Results) != 3 {
		t.Errorf("unexpected manifest: %+v", manifest)
	}
	if manifest.Results[0].Loans != 2 || manifest.Results[1].Loans != 0 {
		t.Errorf("unexpected loan counts: %+v", manifest.Results)
	}
}

func TestBulkExportVisibleLoansOnly(t *testing.T) {
	persons := statementFixture(t)
	for _, p := range persons {
		p.Loans().Filter(models.Overdue)
	}
	dir := t.TempDir()

	result, err := NewStatementEngine("$", nil).BulkExport(context.Background(), nil, persons, BulkExportOpts{
		Format:    "csv",
		OutputDir: dir,
	})
	if err != nil {
		t.Fatalf("BulkExport failed: %v", err)
	}

	if result.Results[0].Loans != 1 {
		t.Errorf("expected only the overdue loan of Alice, got %d", result.Results[0].Loans)
	}
	content := tu.MustReadFile(t, filepath.Join(dir, result.Results[0].File))
	if strings.Contains(content, "compound") {
		t.Errorf("filtered loan leaked into statement:\n%s", content)
	}
}

func TestBulkExportErrors(t *testing.T) {
	t.Run("unknown format", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "never")
		_, err := NewStatementEngine("$", nil).BulkExport(context.Background(), nil, nil, BulkExportOpts{
			Format:    "xlsx",
			OutputDir: dir,
		})
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
		if _, statErr := os.Stat(dir); !os.IsNotExist(statErr) {
			t.Error("output directory should not be created for an invalid format")
		}
	})

	t.Run("output directory is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "taken")
		if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		_, err := NewStatementEngine("$", nil).BulkExport(context.Background(), nil, statementFixture(t), BulkExportOpts{
			Format:    "md",
			OutputDir: file,
		})
		if err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("nil person is recorded as a failure", func(t *testing.T) {
		persons := append(statementFixture(t), nil)

		result, err := NewStatementEngine("$", nil).BulkExport(context.Background(), nil, persons, BulkExportOpts{
			Format:    "txt",
			OutputDir: t.TempDir(),
		})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}
		if result.Successful != 3 || result.Failed != 1 {
			t.Errorf("expected 3 ok and 1 failed, got %+v", result)
		}
		if last := result.Results[3]; last.Success || !strings.Contains(last.Error, "invalid input") {
			t.Errorf("unexpected failure record: %+v", last)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		dir := t.TempDir()
		result, err := NewStatementEngine("$", nil).BulkExport(ctx, nil, statementFixture(t), BulkExportOpts{
			Format:    "md",
			OutputDir: dir,
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if result == nil {
			t.Fatal("expected a partial result")
		}
		if _, statErr := os.Stat(filepath.Join(dir, ManifestName)); !os.IsNotExist(statErr) {
			t.Error("manifest should not be written after cancellation")
		}
	})
}

func TestBulkExportRateLimit(t *testing.T) {
	t.Run("cancellation while waiting stops the export", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		time.AfterFunc(50*time.Millisecond, cancel)

		dir := t.TempDir()
		start := time.Now()
		result, err := NewStatementEngine("$", nil).BulkExport(ctx, nil, statementFixture(t), BulkExportOpts{
			Format:     "md",
			OutputDir:  dir,
			NumWorkers: 1,
			RateLimit:  0.5,
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Errorf("export kept waiting after cancel: %v", elapsed)
		}
		if result.Successful != 1 {
			t.Errorf("expected only the first statement before the wait, got %d", result.Successful)
		}
		if _, statErr := os.Stat(filepath.Join(dir, ManifestName)); !os.IsNotExist(statErr) {
			t.Error("manifest should not be written after cancellation")
		}
	})

	t.Run("deadline shorter than the next token", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		dir := t.TempDir()
		result, err := NewStatementEngine("$", nil).BulkExport(ctx, nil, statementFixture(t), BulkExportOpts{
			Format:     "txt",
			OutputDir:  dir,
			NumWorkers: 2,
			RateLimit:  0.5,
		})
		if err == nil {
			t.Fatal("expected the export to be interrupted")
		}
		if result.Successful >= 3 {
			t.Errorf("expected a partial export, got %d statements", result.Successful)
		}
		if _, statErr := os.Stat(filepath.Join(dir, ManifestName)); !os.IsNotExist(statErr) {
			t.Error("manifest should not be written after an interrupted export")
		}
	})

	t.Run("generous rate exports everyone", func(t *testing.T) {
		dir := t.TempDir()
		result, err := NewStatementEngine("$", nil).BulkExport(context.Background(), nil, statementFixture(t), BulkExportOpts{
			Format:    "csv",
			OutputDir: dir,
			RateLimit: 1000,
		})
		if err != nil {
			t.Fatalf("BulkExport() error = %v", err)
		}
		if result.Successful != 3 {
			t.Errorf("Successful = %d, want 3", result.Successful)
		}
		tu.AssertFileExists(t, filepath.Join(dir, ManifestName))
	})
}

func TestBulkExportProgress(t *testing.T) {
	persons := statementFixture(t)
	prog := make(chan ProgressUpdate, 16)

	_, err := NewStatementEngine("$", nil).BulkExport(context.Background(), prog, persons, BulkExportOpts{
		Format:    "md",
		OutputDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("BulkExport failed: %v", err)
	}
	close(prog)

	var phases []Phase
	statements := 0
	for u := range prog {
		phases = append(phases, u.Phase)
		if u.Phase == ExportStatement {
			statements++
			if u.Total != 3 || !strings.Contains(u.Message, "✓") {
				t.Errorf("unexpected update: %+v", u)
			}
		}
	}

	if len(phases) != 5 || phases[0] != Prepare || phases[len(phases)-1] != WriteManifest {
		t.Errorf("unexpected phases: %v", phases)
	}
	if statements != 3 {
		t.Errorf("expected 3 statement updates, got %d", statements)
	}
}

func TestSendProgress(t *testing.T) {
	engine := NewStatementEngine("$", nil)

	t.Run("nil channel", func(t *testing.T) {
		engine.sendProgress(nil, prepareUpdate(1, "dir"))
	})

	t.Run("full channel does not block", func(t *testing.T) {
		prog := make(chan ProgressUpdate, 1)
		engine.sendProgress(prog, prepareUpdate(1, "dir"))
		engine.sendProgress(prog, manifestUpdate("dir/manifest"))

		if got := <-prog; got.Phase != Prepare {
			t.Errorf("expected the first update to be kept, got %v", got.Phase)
		}
	})
}

func TestStatementFileName(t *testing.T) {
	tt := []struct {
		position int
		name     string
		want     string
	}{
		{position: 1, name: "Alice", want: "01_alice.md"},
		{position: 12, name: "  Jean-Luc  Picard ", want: "12_jean-luc-picard.md"},
		{position: 3, name: "Zoë", want: "03_zoë.md"},
		{position: 4, name: "!!!", want: "04_person.md"},
	}
	for _, tc := range tt {
		if got := StatementFileName(tc.position, tc.name, "md"); got != tc.want {
			t.Errorf("StatementFileName(%d, %q) = %q, want %q", tc.position, tc.name, got, tc.want)
		}
	}
}

func TestPhaseString(t *testing.T) {
	for phase, want := range map[Phase]string{
		Prepare:         "prepare",
		ExportStatement: "export_statement",
		WriteManifest:   "write_manifest",
		Phase(99):       "",
	} {
		if got := phase.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", phase, got, want)
		}
	}
}
