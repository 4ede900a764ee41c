package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	dataDir  = ".boardspace"
	fileName = "boardspace.db"
)

// Path returns the database file location inside the workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, dataDir, fileName)
}

// Open creates the workspace data directory if missing and opens the
// SQLite database with foreign keys enforced and a busy timeout, so
// concurrent CLI and server use does not trip over file locks.
func Open(workspace string) (*sql.DB, error) {
	p := Path(workspace)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", p)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p, err)
	}
	return conn, nil
}
