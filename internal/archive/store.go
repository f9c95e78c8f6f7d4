// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive persists completed research runs in a local SQLite
// database and retrieves them with full-text search.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	dbFile            = "research.db"
	defaultMaxResults = 20
)

// Store manages the research run archive.
type Store struct {
	db         *sql.DB
	archiveDir string
	maxResults int
}

// NewStore opens or creates the archive database at
// archiveDir/research.db, creating the schema if needed.
func NewStore(cfg types.ArchiveConfig) (*Store, error) {
	archiveDir := cfg.ArchiveDir
	if archiveDir == "" {
		archiveDir = "archive"
	}
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	dbPath := filepath.Join(archiveDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{
		db:         db,
		archiveDir: archiveDir,
		maxResults: maxResults,
	}

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
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			topic TEXT NOT NULL,
			model TEXT,
			created_at TEXT NOT NULL,
			report TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS findings (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			position INTEGER NOT NULL,
			question TEXT NOT NULL,
			text TEXT NOT NULL,
			placeholder INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_findings_run_id ON findings(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table over topic and report, with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='runs_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE runs_fts USING fts5(topic, report, content=runs, content_rowid=id)`,
			`CREATE TRIGGER runs_ai AFTER INSERT ON runs BEGIN
				INSERT INTO runs_fts(rowid, topic, report) VALUES (new.id, new.topic, new.report);
			END`,
			`CREATE TRIGGER runs_ad AFTER DELETE ON runs BEGIN
				INSERT INTO runs_fts(runs_fts, rowid, topic, report) VALUES('delete', old.id, old.topic, old.report);
			END`,
			`CREATE TRIGGER runs_au AFTER UPDATE ON runs BEGIN
				INSERT INTO runs_fts(runs_fts, rowid, topic, report) VALUES('delete', old.id, old.topic, old.report);
				INSERT INTO runs_fts(rowid, topic, report) VALUES (new.id, new.topic, new.report);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// SaveRun persists one completed run and its findings in plan order. The
// record's ID is set to the new archive row identifier.
func (s *Store) SaveRun(ctx context.Context, run *types.RunRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (topic, model, created_at, report) VALUES (?, ?, ?, ?)`,
		run.Topic, run.Model, run.CreatedAt.UTC().Format(time.RFC3339), run.Report,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading run id: %w", err)
	}

	for i, f := range run.Findings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO findings (run_id, position, question, text, placeholder) VALUES (?, ?, ?, ?, ?)`,
			id, i, f.Question, f.Text, boolToInt(f.Placeholder),
		); err != nil {
			return fmt.Errorf("inserting finding %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}

	run.ID = id
	return nil
}

// GetRun loads one archived run with its findings in plan order.
func (s *Store) GetRun(ctx context.Context, id int64) (*types.RunRecord, error) {
	var run types.RunRecord
	var createdAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, topic, model, created_at, report FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.Topic, &run.Model, &createdAt, &run.Report)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %d not found", id)
		}
		return nil, fmt.Errorf("looking up run: %w", err)
	}

	run.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing run timestamp: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT question, text, placeholder FROM findings WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("loading findings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f types.Finding
		var placeholder int
		if err := rows.Scan(&f.Question, &f.Text, &placeholder); err != nil {
			return nil, fmt.Errorf("scanning finding: %w", err)
		}
		f.Placeholder = placeholder != 0
		run.Findings = append(run.Findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &run, nil
}

// RunSummary is one archived run without its report body.
type RunSummary struct {
	ID        int64     `json:"id" yaml:"id"`
	Topic     string    `json:"topic" yaml:"topic"`
	Model     string    `json:"model" yaml:"model"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Questions int       `json:"questions" yaml:"questions"`
}

// ListRuns returns archived runs, newest first. A limit of zero uses the
// store default.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.topic, r.model, r.created_at,
			(SELECT count(*) FROM findings f WHERE f.run_id = r.id)
		FROM runs r
		ORDER BY r.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

// SearchResult is one full-text match with a report snippet.
type SearchResult struct {
	RunSummary `yaml:",inline"`
	Snippet    string `json:"snippet" yaml:"snippet"`
}

// Search queries archived runs with FTS5 full-text search over topic and
// report, ranked by relevance.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("search query is empty")
	}
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.topic, r.model, r.created_at,
			(SELECT count(*) FROM findings f WHERE f.run_id = r.id),
			snippet(runs_fts, 1, '[', ']', '...', 16)
		FROM runs_fts
		JOIN runs r ON r.id = runs_fts.rowid
		WHERE runs_fts MATCH ?
		ORDER BY runs_fts.rank
		LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching archive: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var sr SearchResult
		var createdAt string
		if err := rows.Scan(&sr.ID, &sr.Topic, &sr.Model, &createdAt, &sr.Questions, &sr.Snippet); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		if sr.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing run timestamp: %w", err)
		}
		results = append(results, sr)
	}
	return results, rows.Err()
}

func scanSummaries(rows *sql.Rows) ([]RunSummary, error) {
	var summaries []RunSummary
	for rows.Next() {
		var rs RunSummary
		var createdAt string
		if err := rows.Scan(&rs.ID, &rs.Topic, &rs.Model, &createdAt, &rs.Questions); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		var err error
		if rs.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing run timestamp: %w", err)
		}
		summaries = append(summaries, rs)
	}
	return summaries, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
