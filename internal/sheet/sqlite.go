package sheet

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteTable stores sheet rows in a SQLite database. Each row is a JSON
// array of cell strings keyed by its position; appends never reuse
// positions, so row numbers stay stable.
type SQLiteTable struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite-backed table in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory table (used by
// tests).
func Open(dataDir string) (*SQLiteTable, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "leadbooth.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	t := &SQLiteTable{db: db}
	if err := t.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return t, nil
}

// Close closes the underlying database connection.
func (t *SQLiteTable) Close() error {
	return t.db.Close()
}

func (t *SQLiteTable) migrate() error {
	if _, err := t.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := t.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := t.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

func (t *SQLiteTable) Append(cells []string) (int, error) {
	encoded, err := encodeCells(cells)
	if err != nil {
		return 0, err
	}
	res, err := t.db.Exec("INSERT INTO sheet_rows (cells) VALUES (?)", encoded)
	if err != nil {
		return 0, fmt.Errorf("appending row: %w", err)
	}
	pos, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading appended row number: %w", err)
	}
	return int(pos), nil
}

func (t *SQLiteTable) ReadAll() ([][]string, error) {
	rows, err := t.db.Query("SELECT cells FROM sheet_rows ORDER BY pos ASC")
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	defer rows.Close()

	var result [][]string
	for rows.Next() {
		var encoded string
		if err := rows.Scan(&encoded); err != nil {
			return nil, err
		}
		cells, err := decodeCells(encoded)
		if err != nil {
			return nil, err
		}
		result = append(result, cells)
	}
	return result, rows.Err()
}

func (t *SQLiteTable) ReadCell(row, col int) (string, error) {
	cells, err := t.readRow(row)
	if err != nil {
		return "", err
	}
	if col < 1 || col > len(cells) {
		return "", nil
	}
	return cells[col-1], nil
}

func (t *SQLiteTable) WriteCell(row, col int, value string) error {
	if col < 1 {
		return fmt.Errorf("invalid column %d", col)
	}
	cells, err := t.readRow(row)
	if err != nil {
		return err
	}
	for len(cells) < col {
		cells = append(cells, "")
	}
	cells[col-1] = value

	encoded, err := encodeCells(cells)
	if err != nil {
		return err
	}
	_, err = t.db.Exec("UPDATE sheet_rows SET cells = ? WHERE pos = ?", encoded, row)
	if err != nil {
		return fmt.Errorf("writing cell (%d,%d): %w", row, col, err)
	}
	return nil
}

func (t *SQLiteTable) LastRow() (int, error) {
	var last int
	if err := t.db.QueryRow("SELECT COALESCE(MAX(pos), 0) FROM sheet_rows").Scan(&last); err != nil {
		return 0, fmt.Errorf("reading last row: %w", err)
	}
	return last, nil
}

func (t *SQLiteTable) readRow(row int) ([]string, error) {
	var encoded string
	err := t.db.QueryRow("SELECT cells FROM sheet_rows WHERE pos = ?", row).Scan(&encoded)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading row %d: %w", row, err)
	}
	return decodeCells(encoded)
}

func encodeCells(cells []string) (string, error) {
	if cells == nil {
		cells = []string{}
	}
	b, err := json.Marshal(cells)
	if err != nil {
		return "", fmt.Errorf("encoding cells: %w", err)
	}
	return string(b), nil
}

func decodeCells(encoded string) ([]string, error) {
	var cells []string
	if err := json.Unmarshal([]byte(encoded), &cells); err != nil {
		return nil, fmt.Errorf("decoding cells: %w", err)
	}
	return cells, nil
}
