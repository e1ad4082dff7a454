package sheet

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS sheet_rows (
    pos SERIAL PRIMARY KEY,
    cells JSONB NOT NULL
)`

// PostgresTable stores sheet rows in Postgres, for deployments where the
// tracking table is shared between several capture stations. Same row model
// as SQLiteTable: one JSON array of cell strings per position.
type PostgresTable struct {
	db *sqlx.DB
}

// OpenPostgres connects to Postgres with the given DSN and ensures the
// sheet_rows table exists.
func OpenPostgres(dsn string) (*PostgresTable, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sheet_rows table: %w", err)
	}
	return &PostgresTable{db: db}, nil
}

// Close closes the underlying connection pool.
func (t *PostgresTable) Close() error {
	return t.db.Close()
}

func (t *PostgresTable) Append(cells []string) (int, error) {
	encoded, err := encodeCells(cells)
	if err != nil {
		return 0, err
	}
	var pos int
	err = t.db.QueryRow("INSERT INTO sheet_rows (cells) VALUES ($1) RETURNING pos", encoded).Scan(&pos)
	if err != nil {
		return 0, fmt.Errorf("appending row: %w", err)
	}
	return pos, nil
}

func (t *PostgresTable) ReadAll() ([][]string, error) {
	var encoded []string
	if err := t.db.Select(&encoded, "SELECT cells FROM sheet_rows ORDER BY pos ASC"); err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}

	result := make([][]string, 0, len(encoded))
	for _, e := range encoded {
		cells, err := decodeCells(e)
		if err != nil {
			return nil, err
		}
		result = append(result, cells)
	}
	return result, nil
}

func (t *PostgresTable) ReadCell(row, col int) (string, error) {
	cells, err := t.readRow(row)
	if err != nil {
		return "", err
	}
	if col < 1 || col > len(cells) {
		return "", nil
	}
	return cells[col-1], nil
}

func (t *PostgresTable) WriteCell(row, col int, value string) error {
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
	_, err = t.db.Exec("UPDATE sheet_rows SET cells = $1 WHERE pos = $2", encoded, row)
	if err != nil {
		return fmt.Errorf("writing cell (%d,%d): %w", row, col, err)
	}
	return nil
}

func (t *PostgresTable) LastRow() (int, error) {
	var last int
	if err := t.db.QueryRow("SELECT COALESCE(MAX(pos), 0) FROM sheet_rows").Scan(&last); err != nil {
		return 0, fmt.Errorf("reading last row: %w", err)
	}
	return last, nil
}

func (t *PostgresTable) readRow(row int) ([]string, error) {
	var encoded string
	err := t.db.QueryRow("SELECT cells FROM sheet_rows WHERE pos = $1", row).Scan(&encoded)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading row %d: %w", row, err)
	}
	return decodeCells(encoded)
}
