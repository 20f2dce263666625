package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	// Several replicas may start at once; the lock serializes their DDL.
	// Session-level advisory locks belong to one connection, so lock, DDL
	// and unlock all run on conn.
	const lockID = 786001

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get migration connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, lockID); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockID)
	}()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id UUID PRIMARY KEY,
			kind TEXT NOT NULL,
			file_name TEXT NOT NULL DEFAULT '',
			outcome TEXT NOT NULL,
			report_id TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS runs_created_at_idx ON runs (created_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate runs table: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, run Run) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs(id, kind, file_name, outcome, report_id, error, created_at)
		VALUES($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET
			kind = EXCLUDED.kind,
			file_name = EXCLUDED.file_name,
			outcome = EXCLUDED.outcome,
			report_id = EXCLUDED.report_id,
			error = EXCLUDED.error`,
		run.ID, string(run.Kind), run.FileName, string(run.Outcome), run.ReportID, run.Error, run.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (Run, error) {
	var run Run
	var kind, outcome string
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, file_name, outcome, report_id, error, created_at FROM runs WHERE id=$1`, id)
	if err := row.Scan(&run.ID, &kind, &run.FileName, &outcome, &run.ReportID, &run.Error, &run.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, ErrRunNotFound
		}
		return Run{}, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	run.Kind = Kind(kind)
	run.Outcome = Outcome(outcome)
	return run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter ListFilter) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, file_name, outcome, report_id, error, created_at
		FROM runs
		WHERE cardinality($1::text[]) = 0 OR kind = ANY($1)
		ORDER BY created_at DESC
		LIMIT $2
	`, pq.Array(filter.kinds()), filter.limit())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		var kind, outcome string
		if err := rows.Scan(&run.ID, &kind, &run.FileName, &outcome, &run.ReportID, &run.Error, &run.CreatedAt); err != nil {
			return nil, err
		}
		run.Kind = Kind(kind)
		run.Outcome = Outcome(outcome)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
