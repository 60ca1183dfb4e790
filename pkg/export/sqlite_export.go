package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vanderheijden86/starmap/pkg/metrics"

	_ "modernc.org/sqlite"
)

// SQLiteOptions configures SaveSQLite.
type SQLiteOptions struct {
	// PageSize is the SQLite page size. 1024 suits HTTP range-request viewers.
	PageSize int
	Title    string
}

// DefaultSQLiteOptions returns the defaults used by the CLI.
func DefaultSQLiteOptions() SQLiteOptions {
	return SQLiteOptions{PageSize: 1024}
}

// SaveSQLite writes doc to a fresh SQLite database at path, replacing any existing
// file. The database is export-only.
func SaveSQLite(path string, doc *Document, opts SQLiteOptions) error {
	defer metrics.Timer(metrics.SQLiteExport)()

	if path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	dbClosed := false
	defer func() {
		if !dbClosed {
			db.Close()
		}
	}()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := insertNodes(db, doc); err != nil {
		return fmt.Errorf("insert nodes: %w", err)
	}
	if err := insertEdges(db, doc); err != nil {
		return fmt.Errorf("insert edges: %w", err)
	}
	if err := insertMeta(db, doc, opts); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}
	if err := OptimizeDatabase(db, opts.PageSize); err != nil {
		return fmt.Errorf("optimize database: %w", err)
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	dbClosed = true
	return nil
}

func insertNodes(db *sql.DB, doc *Document) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO nodes (id, label, module, category, kind, reference_id, status, difficulty,
			priority, importance, rank, radius, angle, size, url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, n := range doc.Nodes {
		_, err := stmt.Exec(
			n.ID, n.Label, nullString(n.Module), string(n.Category), string(n.Kind),
			nullString(n.ReferenceID), string(n.Status), string(n.Difficulty),
			n.Priority, n.Importance, n.Rank, n.Radius, n.Angle, n.Size, nullString(n.URL),
		)
		if err != nil {
			return fmt.Errorf("insert node %s: %w", n.ID, err)
		}
	}
	return tx.Commit()
}

func insertEdges(db *sql.DB, doc *Document) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO edges (from_id, to_id, kind, distance) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range doc.Edges {
		if _, err := stmt.Exec(e.From, e.To, string(e.Kind), e.Distance); err != nil {
			return fmt.Errorf("insert edge %s->%s: %w", e.From, e.To, err)
		}
	}
	return tx.Commit()
}

func insertMeta(db *sql.DB, doc *Document, opts SQLiteOptions) error {
	meta := map[string]string{
		"version":        doc.Version,
		"generated_at":   doc.GeneratedAt.Format(time.RFC3339),
		"data_hash":      doc.DataHash,
		"node_count":     strconv.Itoa(len(doc.Nodes)),
		"edge_count":     strconv.Itoa(len(doc.Edges)),
		"schema_version": strconv.Itoa(SchemaVersion),
	}
	for k, v := range doc.Metadata {
		if _, taken := meta[k]; !taken {
			meta[k] = v
		}
	}
	if opts.Title != "" {
		meta["title"] = opts.Title
	}

	for _, key := range sortedKeys(meta) {
		if err := InsertMetaValue(db, key, meta[key]); err != nil {
			return fmt.Errorf("insert meta %s: %w", key, err)
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
