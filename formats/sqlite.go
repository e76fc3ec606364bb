package formats

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"panbundle/graph"
	"panbundle/sequence"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created TEXT NOT NULL,
	sequences INTEGER NOT NULL,
	bundles INTEGER NOT NULL,
	dropped INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS bundles (
	run_id TEXT NOT NULL,
	id INTEGER NOT NULL,
	length INTEGER NOT NULL,
	content BLOB NOT NULL,
	PRIMARY KEY (run_id, id)
);
CREATE TABLE IF NOT EXISTS spans (
	run_id TEXT NOT NULL,
	bundle_id INTEGER NOT NULL,
	seq_name TEXT NOT NULL,
	start_pos INTEGER NOT NULL,
	end_pos INTEGER NOT NULL,
	identity REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS path_segments (
	run_id TEXT NOT NULL,
	seq_name TEXT NOT NULL,
	ordinal INTEGER NOT NULL,
	bundle_id INTEGER,
	start_pos INTEGER NOT NULL,
	end_pos INTEGER NOT NULL
);
`

// ExportSQLite writes the graph into a SQLite database, stamped with a fresh
// run id so several runs can share one file. Bundle ids and path segment
// ordering are preserved exactly, so a re-import round-trips the graph
// structure. Returns the run id.
func ExportSQLite(filename string, store *sequence.Store, g *graph.Graph) (string, error) {
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return "", err
	}
	defer db.Close()
	if _, err := db.Exec(sqliteSchema); err != nil {
		return "", err
	}
	tx, err := db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	runID := uuid.NewString()
	if _, err := tx.Exec(`INSERT INTO runs (id, created, sequences, bundles, dropped) VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339), store.Len(), len(g.Nodes()), g.Dropped()); err != nil {
		return "", err
	}
	for _, b := range g.Nodes() {
		if _, err := tx.Exec(`INSERT INTO bundles (run_id, id, length, content) VALUES (?, ?, ?, ?)`,
			runID, b.ID, b.Len(), b.Content); err != nil {
			return "", err
		}
		for _, s := range b.Spans {
			seq, err := store.Get(s.Seq)
			if err != nil {
				return "", err
			}
			if _, err := tx.Exec(`INSERT INTO spans (run_id, bundle_id, seq_name, start_pos, end_pos, identity) VALUES (?, ?, ?, ?, ?, ?)`,
				runID, b.ID, seq.Name(), s.Start, s.End, s.Identity); err != nil {
				return "", err
			}
		}
	}
	for _, p := range g.Paths() {
		seq, err := store.Get(p.Seq)
		if err != nil {
			return "", err
		}
		for i, seg := range p.Segments {
			var bundleID interface{}
			if !seg.Private() {
				bundleID = seg.Bundle
			}
			if _, err := tx.Exec(`INSERT INTO path_segments (run_id, seq_name, ordinal, bundle_id, start_pos, end_pos) VALUES (?, ?, ?, ?, ?, ?)`,
				runID, seq.Name(), i, bundleID, seg.Start, seg.End); err != nil {
				return "", err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing export: %w", err)
	}
	return runID, nil
}
