package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool    *pgxpool.Pool
	initErr error
	once    sync.Once
)

// InitDB initializes the shared connection pool from a Postgres DSN.
// Only the first call connects; later calls return its error.
func InitDB(ctx context.Context, dsn string) error {
	once.Do(func() {
		initErr = connect(ctx, dsn)
	})
	return initErr
}

func connect(ctx context.Context, dsn string) error {
	if dsn == "" {
		return fmt.Errorf("database URL not set")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("failed to parse database config: %w", err)
	}

	p, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}
	if err := EnsureSchema(ctx, p); err != nil {
		p.Close()
		return err
	}
	pool = p
	return nil
}

// GetPool returns the database connection pool
func GetPool() *pgxpool.Pool {
	return pool
}

// Close closes the database connection pool
func Close() {
	if pool != nil {
		pool.Close()
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS statement_snapshots (
	ticker     TEXT PRIMARY KEY,
	id         UUID NOT NULL,
	data       JSONB NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// EnsureSchema creates the snapshot table if it does not exist.
func EnsureSchema(ctx context.Context, p *pgxpool.Pool) error {
	if _, err := p.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create statement_snapshots: %w", err)
	}
	return nil
}
