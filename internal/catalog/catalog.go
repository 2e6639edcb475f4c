// Package catalog persists diagnostics reports from past recovery runs in a
// SQLite database so they can be listed and compared later. Persistence is a
// caller-side concern; the pipeline itself stays stateless.
package catalog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/iSundram/ion/internal/report"
)

// Store is a run-history catalog. Safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	dbPath string
}

// Entry is one recorded run.
type Entry struct {
	RunID      string
	Basename   string
	Kind       report.RecoveryKind
	Strategy   string
	OutputSize int
	RecordedAt time.Time
	Report     *report.Diagnostics
}

// Open creates or opens the catalog at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	s := &Store{db: db, dbPath: dbPath}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize catalog schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		basename TEXT NOT NULL,
		kind TEXT NOT NULL,
		strategy TEXT,
		output_size INTEGER NOT NULL,
		recorded_at DATETIME NOT NULL,
		report_json TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_basename ON runs(basename);
	CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores a diagnostics report.
func (s *Store) Record(d *report.Diagnostics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reportJSON, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	strategy := d.StrategyName
	if d.RecoveryKind == report.KindSynthesized {
		strategy = "template:" + d.TemplateCategory
	}

	_, err = s.db.Exec(
		`INSERT INTO runs (run_id, basename, kind, strategy, output_size, recorded_at, report_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.RunID, d.Basename, string(d.RecoveryKind), strategy, d.OutputLength,
		time.Now().UTC(), string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", d.RunID, err)
	}
	return nil
}

// List returns the most recent runs, newest first, up to limit.
func (s *Store) List(limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		`SELECT run_id, basename, kind, strategy, output_size, recorded_at, report_json
		 FROM runs ORDER BY recorded_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var kind, reportJSON string
		if err := rows.Scan(&e.RunID, &e.Basename, &kind, &e.Strategy, &e.OutputSize, &e.RecordedAt, &reportJSON); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		e.Kind = report.RecoveryKind(kind)
		e.Report = &report.Diagnostics{}
		if err := json.Unmarshal([]byte(reportJSON), e.Report); err != nil {
			return nil, fmt.Errorf("decode report for %s: %w", e.RunID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns one recorded run by ID.
func (s *Store) Get(runID string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(
		`SELECT run_id, basename, kind, strategy, output_size, recorded_at, report_json
		 FROM runs WHERE run_id = ?`, runID)

	var e Entry
	var kind, reportJSON string
	if err := row.Scan(&e.RunID, &e.Basename, &kind, &e.Strategy, &e.OutputSize, &e.RecordedAt, &reportJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %s not found", runID)
		}
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	e.Kind = report.RecoveryKind(kind)
	e.Report = &report.Diagnostics{}
	if err := json.Unmarshal([]byte(reportJSON), e.Report); err != nil {
		return nil, fmt.Errorf("decode report for %s: %w", e.RunID, err)
	}
	return &e, nil
}
