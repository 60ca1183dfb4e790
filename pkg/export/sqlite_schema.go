package export

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is stored in the meta table.
const SchemaVersion = 1

// CreateSchema creates all tables, indexes and views in the database.
func CreateSchema(db *sql.DB) error {
	if err := createCoreTables(db); err != nil {
		return fmt.Errorf("create core tables: %w", err)
	}
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	if err := createViews(db); err != nil {
		return fmt.Errorf("create views: %w", err)
	}
	return nil
}

func createCoreTables(db *sql.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"nodes", `
			CREATE TABLE IF NOT EXISTS nodes (
				id TEXT PRIMARY KEY,
				label TEXT NOT NULL,
				module TEXT,
				category TEXT NOT NULL,
				kind TEXT NOT NULL,
				reference_id TEXT,
				status TEXT NOT NULL,
				difficulty TEXT NOT NULL,
				priority REAL NOT NULL,
				importance REAL NOT NULL,
				rank INTEGER NOT NULL,
				radius REAL NOT NULL,
				angle REAL NOT NULL,
				size REAL NOT NULL,
				url TEXT
			)`},
		{"edges", `
			CREATE TABLE IF NOT EXISTS edges (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				from_id TEXT NOT NULL,
				to_id TEXT NOT NULL,
				kind TEXT NOT NULL,
				distance REAL NOT NULL,
				FOREIGN KEY (from_id) REFERENCES nodes(id),
				FOREIGN KEY (to_id) REFERENCES nodes(id)
			)`},
		{"meta", `
			CREATE TABLE IF NOT EXISTS meta (
				key TEXT PRIMARY KEY,
				value TEXT
			)`},
	}
	for _, s := range stmts {
		if _, err := db.Exec(s.sql); err != nil {
			return fmt.Errorf("create %s table: %w", s.name, err)
		}
	}
	return nil
}

func createIndexes(db *sql.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_nodes_rank ON nodes(rank)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_category ON nodes(category)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_kind ON nodes(kind)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(from_id)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_kind ON edges(kind)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// createViews adds the aggregate views static viewers query for their sidebars.
func createViews(db *sql.DB) error {
	views := []string{
		`CREATE VIEW IF NOT EXISTS category_summary AS
			SELECT category,
				COUNT(*) AS node_count,
				AVG(radius) AS mean_radius,
				MIN(rank) AS best_rank
			FROM nodes
			GROUP BY category`,
		`CREATE VIEW IF NOT EXISTS constellations AS
			SELECT e.to_id AS issue_id,
				COUNT(*) AS pr_count,
				AVG(e.distance) AS mean_distance
			FROM edges e
			WHERE e.kind = 'reference'
			GROUP BY e.to_id`,
	}
	for _, v := range views {
		if _, err := db.Exec(v); err != nil {
			return err
		}
	}
	return nil
}

// InsertMetaValue inserts or replaces a metadata key.
func InsertMetaValue(db *sql.DB, key, value string) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

// OptimizeDatabase compacts the file for static hosting.
func OptimizeDatabase(db *sql.DB, pageSize int) error {
	if pageSize <= 0 {
		pageSize = 1024
	}

	pragmas := []string{
		`PRAGMA journal_mode=DELETE`,
		fmt.Sprintf(`PRAGMA page_size=%d`, pageSize),
		`ANALYZE`,
		`PRAGMA optimize`,
	}
	for _, p := range pragmas {
		// Some pragmas fail depending on database state; none are required.
		_, _ = db.Exec(p)
	}

	if _, err := db.Exec(`VACUUM`); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}
