package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps run history in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// runs table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// SQLite allows one writer; a single connection serializes callers
	// instead of failing them with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id         TEXT PRIMARY KEY,
			kind       TEXT NOT NULL,
			file_name  TEXT NOT NULL DEFAULT '',
			outcome    TEXT NOT NULL,
			report_id  TEXT NOT NULL DEFAULT '',
			error      TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS runs_created_at_idx ON runs (created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating runs table: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// SaveRun records run. Saving the same ID twice replaces the earlier row.
func (s *SQLiteStore) SaveRun(ctx context.Context, run Run) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, kind, file_name, outcome, report_id, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), string(run.Kind), run.FileName, string(run.Outcome), run.ReportID, run.Error,
		run.CreatedAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("saving run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun returns the run with id or ErrRunNotFound.
func (s *SQLiteStore) GetRun(ctx context.Context, id uuid.UUID) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, file_name, outcome, report_id, error, created_at FROM runs WHERE id = ?`, id.String())
	run, err := scanSQLiteRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("getting run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns the newest runs matching filter.
func (s *SQLiteStore) ListRuns(ctx context.Context, filter ListFilter) ([]Run, error) {
	query := `SELECT id, kind, file_name, outcome, report_id, error, created_at FROM runs`
	var args []any
	if kinds := filter.kinds(); len(kinds) > 0 {
		query += ` WHERE kind IN (?` + strings.Repeat(`, ?`, len(kinds)-1) + `)`
		for _, k := range kinds {
			args = append(args, k)
		}
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, filter.limit())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanSQLiteRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRun(row rowScanner) (Run, error) {
	var (
		run       Run
		id        string
		kind      string
		outcome   string
		createdAt int64
	)
	if err := row.Scan(&id, &kind, &run.FileName, &outcome, &run.ReportID, &run.Error, &createdAt); err != nil {
		return Run{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Run{}, fmt.Errorf("parsing run id %q: %w", id, err)
	}
	run.ID = parsed
	run.Kind = Kind(kind)
	run.Outcome = Outcome(outcome)
	run.CreatedAt = time.UnixMilli(createdAt).UTC()
	return run, nil
}
