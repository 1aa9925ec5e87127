package shared

import (
	"path/filepath"
	"testing"
)

func TestConfigureDatabase(t *testing.T) {
	t.Run("in-memory database keeps one connection", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		ConfigureDatabase(db, ":memory:", 5, 5)

		if got := db.Stats().MaxOpenConnections; got != 1 {
			t.Errorf("MaxOpenConnections = %d, want 1", got)
		}

		if err := RunMigrations(db); err != nil {
			t.Fatalf("RunMigrations() error = %v", err)
		}
		if _, err := db.Exec("INSERT INTO persons (id, position, name) VALUES ('p1', 0, 'Ann')"); err != nil {
			t.Errorf("migrated schema not visible: %v", err)
		}
	})

	t.Run("file database takes configured limit", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ledger.db")
		db, err := NewDatabase(path)
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		ConfigureDatabase(db, path, 5, 2)

		if got := db.Stats().MaxOpenConnections; got != 5 {
			t.Errorf("MaxOpenConnections = %d, want 5", got)
		}
	})

	t.Run("non-positive values are ignored", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ledger.db")
		db, err := NewDatabase(path)
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		ConfigureDatabase(db, path, 0, -1)

		if got := db.Stats().MaxOpenConnections; got != 0 {
			t.Errorf("MaxOpenConnections = %d, want 0 (unlimited)", got)
		}
	})
}
