// Package store keeps a catalog of saved design revisions in SQLite.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/ductcalc/internal/project"
	_ "modernc.org/sqlite"
)

// DefaultCatalogPath returns ~/.ductcalc/catalog.db.
func DefaultCatalogPath() string {
	return filepath.Join(project.DefaultConfigDir(), "catalog.db")
}

// OpenDB opens a SQLite database at the given path.
// If path is ":memory:", uses an in-memory database.
// Sets WAL mode, enables foreign keys and runs migrations.
func OpenDB(path string) (*sql.DB, error) {
	memory := path == ":memory:"
	if !memory {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if memory {
		// Every pooled connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

// Migrate runs all schema migrations. Every statement is idempotent.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS designs (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE COLLATE NOCASE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS revisions (
		id            TEXT PRIMARY KEY,
		design_id     TEXT NOT NULL REFERENCES designs(id) ON DELETE CASCADE,
		seq           INTEGER NOT NULL,
		note          TEXT NOT NULL DEFAULT '',
		project_json  TEXT NOT NULL,
		outlets       INTEGER NOT NULL DEFAULT 0,
		inlet_flow    REAL NOT NULL DEFAULT 0,
		segments      INTEGER NOT NULL DEFAULT 0,
		unsized       INTEGER NOT NULL DEFAULT 0,
		total_length  REAL NOT NULL DEFAULT 0,
		total_surface REAL NOT NULL DEFAULT 0,
		largest_duct  TEXT NOT NULL DEFAULT '',
		max_velocity  REAL NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL,
		UNIQUE (design_id, seq)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_revisions_design ON revisions(design_id, seq)`,
}
