// Package testing provides testing utilities and helpers for the perfagent project.
package testing

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/aristath/perfagent/internal/database"
)

// NewTestDB creates a temporary-file SQLite database with the schema registered
// under name already applied. Unknown names produce an empty database.
// The returned cleanup function closes the connection and removes the file.
func NewTestDB(t *testing.T, name string) (*database.DB, func()) {
	t.Helper()

	// Temporary files keep tests isolated from each other
	tmpPath := filepath.Join(t.TempDir(), fmt.Sprintf("test_%s.db", name))

	db, err := database.New(database.Config{
		Path:    tmpPath,
		Profile: database.ProfileCache,
		Name:    name,
	})
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}

	return db, func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
		_ = os.Remove(tmpPath)
	}
}

// NewPerformanceDB creates a migrated performance database seeded with the
// standard fixtures from SeedPerformanceFixtures.
func NewPerformanceDB(t *testing.T) (*database.DB, func()) {
	t.Helper()

	db, cleanup := NewTestDB(t, "performance")
	if err := SeedPerformanceFixtures(db); err != nil {
		cleanup()
		t.Fatalf("Failed to seed performance fixtures: %v", err)
	}
	return db, cleanup
}
