package store

import (
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

func init() {
	register("postgres", dialect{
		driver:   "pgx",
		numbered: true,
		schema: []string{
			`CREATE TABLE IF NOT EXISTS items (
				list TEXT NOT NULL,
				id BIGINT NOT NULL,
				created TEXT NOT NULL,
				fields TEXT NOT NULL,
				PRIMARY KEY (list, id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_items_created ON items(list, created DESC)`,
			`CREATE TABLE IF NOT EXISTS attachments (
				list TEXT NOT NULL,
				item_id BIGINT NOT NULL,
				file_name TEXT NOT NULL,
				position INTEGER NOT NULL,
				content BYTEA NOT NULL,
				PRIMARY KEY (list, item_id, file_name)
			)`,
		},
	})
}
