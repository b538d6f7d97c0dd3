// Package testing provides database helpers and fixtures shared by package tests.
package testing

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/contestboard/arena/internal/database"
)

// NewTestDB creates a file-backed SQLite database in a temporary directory and
// applies the schema registered for name ("cache", "contest"). Unknown names
// give an empty database. The database is closed when the test ends.
func NewTestDB(t *testing.T, name string) *database.DB {
	t.Helper()

	profile := database.ProfileStandard
	if name == "cache" {
		profile = database.ProfileCache
	}

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: profile,
		Name:    name,
	})
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
	})

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}
	return db
}

// NewMemoryStore opens an in-memory contest store on the cgo sqlite3 driver.
// The pool is pinned to one connection so every query sees the same database.
func NewMemoryStore(t *testing.T) *sqlx.DB {
	t.Helper()

	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory store: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = conn.Close() })

	schema, err := database.Schema("contest")
	if err != nil {
		t.Fatalf("Failed to load contest schema: %v", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		t.Fatalf("Failed to apply contest schema: %v", err)
	}

	return sqlx.NewDb(conn, "sqlite3")
}
