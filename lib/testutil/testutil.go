package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

// OpenDB opens an in-memory sqlite database, applying `schema` if given.
// The database is closed when the test finishes.
func OpenDB(t testing.TB, schema string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// every connection to :memory: is its own database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		db.Close()
	})

	if schema == "" {
		return db
	}
	_, err = db.Exec(schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		t.Fatal(err)
	}
	return db
}

// WriteFile writes `contents` to `name` inside a fresh temp directory and
// returns the full path.
func WriteFile(t testing.TB, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	err := os.WriteFile(path, []byte(contents), 0644)
	if err != nil {
		t.Fatal(err)
	}
	return path
}
