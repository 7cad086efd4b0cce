package reference

import (
	"context"
	"path/filepath"
	"strings"
)

// IsSQLitePath reports whether a reference path names a SQLite database
// rather than a CSV file.
func IsSQLitePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// Load reads a reference table from a CSV file or a SQLite database,
// depending on the path's extension.
func Load(ctx context.Context, path string) (*Table, error) {
	if !IsSQLitePath(path) {
		return LoadCSV(path)
	}
	s, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Load(ctx)
}

// Save writes a reference table to a CSV file or a SQLite database,
// depending on the path's extension.
func Save(ctx context.Context, path string, t *Table) error {
	if !IsSQLitePath(path) {
		return SaveCSV(path, t)
	}
	s, err := OpenSQLite(path)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Save(ctx, t)
}
