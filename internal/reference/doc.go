// Package reference stores the labeled feature vectors that queries are
// matched against.
//
// A reference table is small: one row per known silhouette. It is kept
// either as a semicolon separated CSV file with a leading index column,
// the feature columns and a "classe" column, or in a SQLite database with
// one record per feature value. Load and Save pick the format from the
// file extension.
//
// Build recreates a table from the dataset images.
package reference
