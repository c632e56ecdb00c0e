package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"io/fs"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - record_lines and collections tables
const currentSchemaVersion = 1

// SQLiteBackend stores the lines of every store path in one SQLite
// database. It keeps the same contract as FileBackend: paths are validated
// the same way and a save replaces all lines of a path.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite creates or opens a SQLite database at the given path.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// ReadLines returns the lines stored for rel in line order.
func (b *SQLiteBackend) ReadLines(rel string) ([][]byte, error) {
	cleaned, err := ResolvePath(rel)
	if err != nil {
		return nil, err
	}

	var count int
	err = b.db.QueryRow(`SELECT line_count FROM collections WHERE path = ?`, cleaned).Scan(&count)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("read %s: %w", rel, fs.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rel, err)
	}

	rows, err := b.db.Query(`
		SELECT line FROM record_lines
		WHERE path = ?
		ORDER BY line_no ASC
	`, cleaned)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rel, err)
	}
	defer rows.Close()

	lines := make([][]byte, 0, count)
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return lines, fmt.Errorf("read %s: %w", rel, err)
		}
		lines = append(lines, []byte(line))
	}
	if err := rows.Err(); err != nil {
		return lines, fmt.Errorf("read %s: %w", rel, err)
	}
	return lines, nil
}

// WriteLines replaces the lines stored for rel in a single transaction.
func (b *SQLiteBackend) WriteLines(rel string, lines [][]byte) error {
	cleaned, err := ResolvePath(rel)
	if err != nil {
		return err
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("write %s: begin tx: %w", rel, err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.Exec(`DELETE FROM record_lines WHERE path = ?`, cleaned); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO record_lines (path, line_no, line) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	defer stmt.Close()

	for i, line := range lines {
		if _, err := stmt.Exec(cleaned, i+1, string(line)); err != nil {
			return fmt.Errorf("write %s: line %d: %w", rel, i+1, err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO collections (path, line_count) VALUES (?, ?)
		ON CONFLICT(path) DO UPDATE SET line_count = excluded.line_count
	`, cleaned, len(lines)); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write %s: commit: %w", rel, err)
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and records the schema
// version. This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (b *SQLiteBackend) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := b.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
