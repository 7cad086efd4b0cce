package reference

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/ironsheep/tangram-classifier/internal/features"
)

const schema = `
CREATE TABLE IF NOT EXISTS reference_rows (
	row_id INTEGER PRIMARY KEY,
	classe TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS reference_vectors (
	row_id  INTEGER NOT NULL REFERENCES reference_rows(row_id) ON DELETE CASCADE,
	feature TEXT NOT NULL,
	value   REAL NOT NULL,
	PRIMARY KEY (row_id, feature)
);
`

// Store keeps a reference table in a SQLite database, one feature value
// per record.
type Store struct {
	db *sql.DB
}

// OpenSQLite opens or creates a SQLite reference store.
func OpenSQLite(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Pragmas apply per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the stored table with t in a single transaction.
func (s *Store) Save(ctx context.Context, t *Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM reference_vectors"); err != nil {
		return fmt.Errorf("failed to clear vectors: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM reference_rows"); err != nil {
		return fmt.Errorf("failed to clear rows: %w", err)
	}

	rowStmt, err := tx.PrepareContext(ctx, "INSERT INTO reference_rows (row_id, classe) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer rowStmt.Close()

	valueStmt, err := tx.PrepareContext(ctx, "INSERT INTO reference_vectors (row_id, feature, value) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare vector insert: %w", err)
	}
	defer valueStmt.Close()

	for _, row := range t.Rows {
		if _, err := rowStmt.ExecContext(ctx, row.Index, row.Label); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", row.Index, err)
		}
		for _, key := range row.Vector.Keys() {
			if _, err := valueStmt.ExecContext(ctx, row.Index, key, row.Vector[key]); err != nil {
				return fmt.Errorf("failed to insert %s of row %d: %w", key, row.Index, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Load reads the stored table ordered by row id.
func (s *Store) Load(ctx context.Context) (*Table, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT row_id, classe FROM reference_rows ORDER BY row_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer rows.Close()

	table := &Table{}
	position := make(map[int]int)
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.Index, &row.Label); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row.Vector = features.Vector{}
		position[row.Index] = len(table.Rows)
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	rows.Close()

	values, err := s.db.QueryContext(ctx, "SELECT row_id, feature, value FROM reference_vectors")
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}
	defer values.Close()

	for values.Next() {
		var (
			id      int
			feature string
			value   float64
		)
		if err := values.Scan(&id, &feature, &value); err != nil {
			return nil, fmt.Errorf("failed to scan vector: %w", err)
		}
		if i, ok := position[id]; ok {
			table.Rows[i].Vector[feature] = value
		}
	}
	if err := values.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vectors: %w", err)
	}
	return table, nil
}
