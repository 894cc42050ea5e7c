// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store accumulates pipeline runs in a SQLite database so that
// successive crawls can be compared and reloaded without re-fetching.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/coauthor-graph/internal/fetch"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// ErrRunNotFound is returned when a run ID is unknown.
var ErrRunNotFound = errors.New("run not found")

const timeLayout = time.RFC3339Nano

// Run summarizes one pipeline execution.
type Run struct {
	ID         string          `json:"id" yaml:"id"`
	StartedAt  time.Time       `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time       `json:"finished_at" yaml:"finished_at"`
	Mode       types.GraphMode `json:"mode" yaml:"mode"`
	Seeds      int             `json:"seeds" yaml:"seeds"`
	Queries    int             `json:"queries" yaml:"queries"`
	Failed     int             `json:"failed" yaml:"failed"`
	Fetched    int             `json:"fetched" yaml:"fetched"`
	Cleaned    int             `json:"cleaned" yaml:"cleaned"`
	Edges      int             `json:"edges" yaml:"edges"`
}

// RunData is everything persisted for a run.
type RunData struct {
	Run          Run
	Publications []types.Publication
	Edges        []types.Edge
	PaperEdges   []types.PaperEdge
	Failures     []fetch.QueryFailure
}

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and its schema. Parent
// directories are created as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			mode TEXT,
			seeds INTEGER,
			queries INTEGER,
			failed INTEGER,
			fetched INTEGER,
			cleaned INTEGER,
			edges INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS publications (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			idx INTEGER NOT NULL,
			published TEXT,
			title TEXT,
			authors TEXT,
			summary TEXT,
			doi TEXT,
			primary_category TEXT,
			link TEXT,
			pdf_url TEXT,
			no_authors INTEGER,
			PRIMARY KEY (run_id, idx)
		)`,
		`CREATE TABLE IF NOT EXISTS edges (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			title TEXT,
			pdf_url TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_run_id ON edges(run_id)`,
		`CREATE TABLE IF NOT EXISTS query_failures (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			query TEXT NOT NULL,
			reason TEXT,
			PRIMARY KEY (run_id, seq)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SaveRun writes a run and its tables in one transaction. Saving a run ID
// that already exists replaces it.
func (s *Store) SaveRun(ctx context.Context, data RunData) error {
	if data.Run.ID == "" {
		return errors.New("run ID is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	r := data.Run
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, r.ID); err != nil {
		return fmt.Errorf("replacing run: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, mode, seeds, queries, failed, fetched, cleaned, edges)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, formatTime(r.StartedAt), formatTime(r.FinishedAt), string(r.Mode),
		r.Seeds, r.Queries, r.Failed, r.Fetched, r.Cleaned, r.Edges,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	if err := insertPublications(ctx, tx, r.ID, data.Publications); err != nil {
		return err
	}
	if err := insertEdges(ctx, tx, r.ID, data); err != nil {
		return err
	}
	for i, f := range data.Failures {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO query_failures (run_id, seq, query, reason) VALUES (?, ?, ?, ?)`,
			r.ID, i, f.Query, f.Reason); err != nil {
			return fmt.Errorf("inserting failure %q: %w", f.Query, err)
		}
	}

	return tx.Commit()
}

func insertPublications(ctx context.Context, tx *sql.Tx, runID string, pubs []types.Publication) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO publications (run_id, idx, published, title, authors, summary, doi, primary_category, link, pdf_url, no_authors)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing publication insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range pubs {
		authorsJSON, _ := json.Marshal(p.Authors)
		_, err := stmt.ExecContext(ctx,
			runID, p.Index, formatTime(p.Published), p.Title, string(authorsJSON),
			p.Summary, p.DOI, p.PrimaryCategory, p.Link, p.PDFURL, p.AuthorCount,
		)
		if err != nil {
			return fmt.Errorf("inserting publication %d: %w", p.Index, err)
		}
	}
	return nil
}

func insertEdges(ctx context.Context, tx *sql.Tx, runID string, data RunData) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO edges (run_id, source, target, title, pdf_url) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing edge insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range data.Edges {
		if _, err := stmt.ExecContext(ctx, runID, e.Source, e.Target, e.Title, e.PDFURL); err != nil {
			return fmt.Errorf("inserting edge: %w", err)
		}
	}
	for _, e := range data.PaperEdges {
		if _, err := stmt.ExecContext(ctx, runID, e.Source, e.Target, nil, nil); err != nil {
			return fmt.Errorf("inserting paper edge: %w", err)
		}
	}
	return nil
}

const runColumns = `id, started_at, COALESCE(finished_at, ''), COALESCE(mode, ''),
	seeds, queries, failed, fetched, cleaned, edges`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r                 Run
		started, finished string
		mode              string
	)
	if err := sc.Scan(&r.ID, &started, &finished, &mode,
		&r.Seeds, &r.Queries, &r.Failed, &r.Fetched, &r.Cleaned, &r.Edges); err != nil {
		return Run{}, err
	}
	r.StartedAt = parseTime(started)
	r.FinishedAt = parseTime(finished)
	r.Mode = types.GraphMode(mode)
	return r, nil
}

// Runs lists every stored run, most recent first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Run returns the summary of one run.
func (s *Store) Run(ctx context.Context, runID string) (Run, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("looking up run: %w", err)
	}
	return r, nil
}

// Publications returns the cleaned publications of a run in index order.
func (s *Store) Publications(ctx context.Context, runID string) ([]types.Publication, error) {
	if err := s.requireRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, published, title, authors, summary, doi, primary_category, link, pdf_url, no_authors
		 FROM publications WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying publications: %w", err)
	}
	defer rows.Close()

	var pubs []types.Publication
	for rows.Next() {
		var (
			p                  types.Publication
			published, authors string
		)
		if err := rows.Scan(&p.Index, &published, &p.Title, &authors, &p.Summary,
			&p.DOI, &p.PrimaryCategory, &p.Link, &p.PDFURL, &p.AuthorCount); err != nil {
			return nil, fmt.Errorf("scanning publication: %w", err)
		}
		p.Published = parseTime(published)
		if err := json.Unmarshal([]byte(authors), &p.Authors); err != nil {
			return nil, fmt.Errorf("decoding authors of publication %d: %w", p.Index, err)
		}
		pubs = append(pubs, p)
	}
	return pubs, rows.Err()
}

// EdgePairs returns the (source, target) pairs stored for a run.
func (s *Store) EdgePairs(ctx context.Context, runID string) ([][2]string, error) {
	if err := s.requireRun(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, target FROM edges WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying edges: %w", err)
	}
	defer rows.Close()

	var pairs [][2]string
	for rows.Next() {
		var p [2]string
		if err := rows.Scan(&p[0], &p[1]); err != nil {
			return nil, fmt.Errorf("scanning edge: %w", err)
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

// Failures returns the failed queries of a run in the order they failed.
// A query that failed more than once appears once per failure.
func (s *Store) Failures(ctx context.Context, runID string) ([]fetch.QueryFailure, error) {
	if err := s.requireRun(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT query, COALESCE(reason, '') FROM query_failures WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying failures: %w", err)
	}
	defer rows.Close()

	var out []fetch.QueryFailure
	for rows.Next() {
		var f fetch.QueryFailure
		if err := rows.Scan(&f.Query, &f.Reason); err != nil {
			return nil, fmt.Errorf("scanning failure: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Store) requireRun(ctx context.Context, runID string) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM runs WHERE id = ?`, runID).Scan(&n); err != nil {
		return fmt.Errorf("looking up run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", runID, ErrRunNotFound)
	}
	return nil
}
