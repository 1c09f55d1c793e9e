package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

func init() {
	register("sqlite", dialect{
		driver:  "sqlite",
		prepare: prepareSQLite,
		memory:  isMemorySQLite,
		setup: []string{
			"PRAGMA journal_mode=WAL",
		},
		schema: []string{
			`CREATE TABLE IF NOT EXISTS items (
				list TEXT NOT NULL,
				id INTEGER NOT NULL,
				created TEXT NOT NULL,
				fields TEXT NOT NULL,
				PRIMARY KEY (list, id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_items_created ON items(list, created DESC)`,
			`CREATE TABLE IF NOT EXISTS attachments (
				list TEXT NOT NULL,
				item_id INTEGER NOT NULL,
				file_name TEXT NOT NULL,
				position INTEGER NOT NULL,
				content BLOB NOT NULL,
				PRIMARY KEY (list, item_id, file_name)
			)`,
		},
	})
}

// memoryDSN lets every connection in the pool see the same in-memory database.
const memoryDSN = "file::memory:?cache=shared"

func isMemorySQLite(dsn string) bool {
	return dsn == "" || dsn == ":memory:"
}

// prepareSQLite creates the parent directory of a plain file DSN and shares
// in-memory databases across connections.
func prepareSQLite(dsn string) (string, error) {
	if isMemorySQLite(dsn) {
		return memoryDSN, nil
	}
	if strings.HasPrefix(dsn, "file:") {
		return dsn, nil
	}
	if dir := filepath.Dir(dsn); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return dsn, nil
}
