package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/phuslu/log"
	_ "modernc.org/sqlite"

	"MarketFusion/internal/fault"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite run journal opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			symbol      TEXT NOT NULL,
			layout      TEXT,
			output      TEXT,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			status      TEXT NOT NULL,
			row_count   INTEGER,
			filled      INTEGER,
			error_kind  TEXT,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS run_warnings (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id  TEXT NOT NULL REFERENCES runs(id),
			kind    TEXT NOT NULL,
			stage   TEXT,
			field   TEXT,
			count   INTEGER,
			detail  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_warnings_run ON run_warnings(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores a run and its warnings in one transaction.
func (r *SQLiteRecorder) RecordRun(run *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO runs
		(id, symbol, layout, output, started_at, finished_at, status, row_count, filled, error_kind, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.Symbol, run.Layout, run.Output,
		run.StartedAt.Unix(), run.FinishedAt.Unix(),
		run.Status, run.Rows, run.Filled, run.ErrorKind, run.Error,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for _, w := range run.Warnings {
		if _, err := tx.Exec(`INSERT INTO run_warnings
			(run_id, kind, stage, field, count, detail)
			VALUES (?,?,?,?,?,?)`,
			run.ID, w.Kind.String(), w.Stage, w.Field, w.Count, w.Detail,
		); err != nil {
			return fmt.Errorf("insert warning: %w", err)
		}
	}
	return tx.Commit()
}

// RecentRuns returns up to limit runs, newest first, with their warnings.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, symbol, layout, output, started_at, finished_at,
		status, row_count, filled, error_kind, error
		FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var run RunRecord
		var started, finished int64
		if err := rows.Scan(&run.ID, &run.Symbol, &run.Layout, &run.Output, &started, &finished,
			&run.Status, &run.Rows, &run.Filled, &run.ErrorKind, &run.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = time.Unix(started, 0)
		run.FinishedAt = time.Unix(finished, 0)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		w, err := r.warnings(runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Warnings = w
	}
	return runs, nil
}

func (r *SQLiteRecorder) warnings(runID string) ([]fault.Entry, error) {
	rows, err := r.db.Query(`SELECT kind, stage, field, count, detail
		FROM run_warnings WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query warnings: %w", err)
	}
	defer rows.Close()

	var out []fault.Entry
	for rows.Next() {
		var e fault.Entry
		var kind string
		if err := rows.Scan(&kind, &e.Stage, &e.Field, &e.Count, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan warning: %w", err)
		}
		e.Kind = fault.ParseKind(kind)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite run journal")
	return r.db.Close()
}
