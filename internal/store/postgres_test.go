package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// testPostgresDSN returns TEST_DB_URL or skips when no database is configured.
func testPostgresDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DB_URL")
	if dsn == "" {
		t.Skip("TEST_DB_URL not set, skipping")
	}
	return dsn
}

func TestPostgresConcurrentStartup(t *testing.T) {
	dsn := testPostgresDSN(t)
	ctx := context.Background()

	const replicas = 4
	stores := make([]*PostgresStore, replicas)
	var g errgroup.Group
	for i := range stores {
		g.Go(func() error {
			s, err := NewPostgres(dsn)
			stores[i] = s
			return err
		})
	}
	require.NoError(t, g.Wait())
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})

	// Every replica sees the table once its constructor returns.
	for _, s := range stores {
		run := Run{ID: uuid.New(), Kind: KindAnalysis, FileName: "cv.pdf", Outcome: OutcomeSucceeded}
		require.NoError(t, s.SaveRun(ctx, run))
		t.Cleanup(func() {
			_, _ = s.db.ExecContext(context.Background(), `DELETE FROM runs WHERE id = $1`, run.ID)
		})

		got, err := s.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, run.ID, got.ID)
	}

	// The migration lock was released on its own session.
	var held bool
	require.NoError(t, stores[0].db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_locks WHERE locktype = 'advisory' AND objid = 786001)`).Scan(&held))
	assert.False(t, held)
}
