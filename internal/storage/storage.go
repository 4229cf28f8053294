package storage

import (
	"database/sql"
	_ "embed"
	"fmt"
	"math"
	"strings"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// migrations bring databases created by older builds up to schema.sql.
// A "duplicate column" failure means the step was already applied.
var migrations = []string{
	`ALTER TABLE feature_tables ADD COLUMN last_n_games INTEGER NOT NULL DEFAULT 5`,
	`ALTER TABLE feature_tables ADD COLUMN minutes_window INTEGER NOT NULL DEFAULT 3`,
}

// DB wraps a sql.DB for the game-log and feature store.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database at the given path and applies the schema.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	for _, m := range migrations {
		if _, err := conn.Exec(m); err != nil && !strings.Contains(err.Error(), "duplicate column") {
			conn.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// QueryRaw runs an arbitrary read query and returns its column names and
// rows rendered as strings. NULL cells render as "NULL".
func (db *DB) QueryRaw(query string, args ...interface{}) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			if v.Valid {
				row[i] = v.String
			} else {
				row[i] = "NULL"
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

// nullable stores NaN metrics as NULL.
func nullable(f float64) interface{} {
	if math.IsNaN(f) {
		return nil
	}
	return f
}

// orNaN reads a nullable metric back, NULL becoming NaN.
func orNaN(f sql.NullFloat64) float64 {
	if !f.Valid {
		return math.NaN()
	}
	return f.Float64
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// placeholders returns a comma-separated string of n "?" for SQL IN clauses,
// e.g. placeholders(3) → "?,?,?".
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
