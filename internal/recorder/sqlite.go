package recorder

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"QuoteTables/internal/model"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder archives runs and their retained observations in SQLite.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
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

	log.WithField("path", dbPath).Info("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			started_at  INTEGER NOT NULL,
			duration_ms INTEGER,
			start_date  TEXT NOT NULL,
			end_date    TEXT NOT NULL,
			universes   TEXT,
			requested   INTEGER,
			fetched     INTEGER,
			skipped     TEXT,
			dropped     TEXT,
			retained    TEXT,
			length      INTEGER,
			output      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS observations (
			run_id    TEXT NOT NULL REFERENCES runs(id),
			symbol    TEXT NOT NULL,
			date      TEXT NOT NULL,
			open      REAL,
			high      REAL,
			low       REAL,
			close     REAL,
			adj_close REAL,
			volume    REAL,
			PRIMARY KEY (run_id, symbol, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_obs_symbol ON observations(symbol, date)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func joinSymbols(syms []model.Symbol) string {
	parts := make([]string, len(syms))
	for i, s := range syms {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}

func splitSymbols(s string) []model.Symbol {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]model.Symbol, len(parts))
	for i, p := range parts {
		out[i] = model.Symbol(p)
	}
	return out
}

func (r *SQLiteRecorder) RecordRun(run *model.RunSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT OR REPLACE INTO runs
		(id, started_at, duration_ms, start_date, end_date, universes,
		 requested, fetched, skipped, dropped, retained, length, output)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.StartedAt.Unix(), run.Duration.Milliseconds(),
		run.Start.Format(model.DateLayout), run.End.Format(model.DateLayout),
		strings.Join(run.Universes, ","),
		run.Requested, run.Fetched,
		joinSymbols(run.Skipped), joinSymbols(run.Dropped), joinSymbols(run.Retained),
		run.Length, run.Output,
	)
	return err
}

func (r *SQLiteRecorder) RecordObservations(runID string, lt model.LongTable) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO observations
		(run_id, symbol, date, open, high, low, close, adj_close, volume)
		VALUES (?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, row := range lt.Rows {
		if _, err := stmt.Exec(runID, string(row.Symbol), row.Date.Format(model.DateLayout),
			row.Open, row.High, row.Low, row.Close, row.AdjClose, row.Volume); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert %s %s: %w", row.Symbol, row.Date.Format(model.DateLayout), err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) ListRuns(limit int) ([]model.RunSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(`SELECT id, started_at, duration_ms, start_date, end_date, universes,
		requested, fetched, skipped, dropped, retained, length, output
		FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []model.RunSummary
	for rows.Next() {
		var (
			run                        model.RunSummary
			startedAt, durationMS      int64
			start, end, universes      string
			skipped, dropped, retained string
		)
		if err := rows.Scan(&run.ID, &startedAt, &durationMS, &start, &end, &universes,
			&run.Requested, &run.Fetched, &skipped, &dropped, &retained, &run.Length, &run.Output); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = time.Unix(startedAt, 0).UTC()
		run.Duration = time.Duration(durationMS) * time.Millisecond
		if run.Start, err = model.ParseDate(start); err != nil {
			return nil, err
		}
		if run.End, err = model.ParseDate(end); err != nil {
			return nil, err
		}
		if universes != "" {
			run.Universes = strings.Split(universes, ",")
		}
		run.Skipped = splitSymbols(skipped)
		run.Dropped = splitSymbols(dropped)
		run.Retained = splitSymbols(retained)
		out = append(out, run)
	}
	return out, rows.Err()
}

// CountObservations returns the number of archived rows of a run.
func (r *SQLiteRecorder) CountObservations(runID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM observations WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	log.Info("closing sqlite recorder")
	return r.db.Close()
}
