package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fcf_valuation/pkg/core/marketdata"
)

// SnapshotCache persists fetched statements.
// Supports DB (primary) and file system (fallback when no pool is configured).
type SnapshotCache struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewSnapshotCache creates a cache. If pool is nil, files under dir are used;
// an empty dir then defaults to .cache/statements.
func NewSnapshotCache(pool *pgxpool.Pool, dir string) (*SnapshotCache, error) {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "statements")
	}
	if pool == nil {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create snapshot cache dir: %w", err)
		}
	}
	return &SnapshotCache{pool: pool, fileDir: dir}, nil
}

// Entry is one persisted snapshot.
type Entry struct {
	ID       string              `json:"id"`
	Ticker   string              `json:"ticker"`
	Snapshot marketdata.Snapshot `json:"snapshot"`
	SavedAt  time.Time           `json:"saved_at"`
}

// Load returns the snapshot for ticker, or (nil, nil) on a miss.
func (c *SnapshotCache) Load(ctx context.Context, ticker string) (*marketdata.Snapshot, error) {
	ticker = normalize(ticker)

	if c.pool != nil {
		var dataJSON []byte
		err := c.pool.QueryRow(ctx,
			`SELECT data FROM statement_snapshots WHERE ticker = $1`, ticker).Scan(&dataJSON)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query snapshot: %w", err)
		}
		var snap marketdata.Snapshot
		if err := json.Unmarshal(dataJSON, &snap); err != nil {
			return nil, fmt.Errorf("failed to unmarshal db cached data: %w", err)
		}
		return &snap, nil
	}

	entry, err := c.loadEntry(c.path(ticker))
	if err != nil || entry == nil {
		return nil, err
	}
	return &entry.Snapshot, nil
}

// Save upserts the snapshot under its ticker.
func (c *SnapshotCache) Save(ctx context.Context, snap marketdata.Snapshot) error {
	ticker := normalize(snap.Ticker)
	if ticker == "" {
		return fmt.Errorf("snapshot has no ticker")
	}
	snap.Ticker = ticker

	if c.pool != nil {
		dataJSON, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot: %w", err)
		}
		_, err = c.pool.Exec(ctx, `
			INSERT INTO statement_snapshots (ticker, id, data, fetched_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (ticker)
			DO UPDATE SET
				id = EXCLUDED.id,
				data = EXCLUDED.data,
				fetched_at = EXCLUDED.fetched_at,
				updated_at = NOW()
		`, ticker, uuid.New(), dataJSON, snap.FetchedAt)
		if err != nil {
			return fmt.Errorf("failed to save to db cache: %w", err)
		}
		return nil
	}

	entry := Entry{
		ID:       uuid.NewString(),
		Ticker:   ticker,
		Snapshot: snap,
		SavedAt:  time.Now().UTC(),
	}
	fileBytes, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(c.path(ticker), fileBytes, 0o644); err != nil {
		return fmt.Errorf("failed to save to file cache: %w", err)
	}
	return nil
}

// Delete removes the snapshot for ticker. Deleting a missing entry is not an error.
func (c *SnapshotCache) Delete(ctx context.Context, ticker string) error {
	ticker = normalize(ticker)

	if c.pool != nil {
		if _, err := c.pool.Exec(ctx, `DELETE FROM statement_snapshots WHERE ticker = $1`, ticker); err != nil {
			return fmt.Errorf("failed to delete snapshot: %w", err)
		}
		return nil
	}

	if err := os.Remove(c.path(ticker)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}
	return nil
}

// Internal File Helpers

func (c *SnapshotCache) path(ticker string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(ticker)
	return filepath.Join(c.fileDir, safe+".json")
}

func (c *SnapshotCache) loadEntry(path string) (*Entry, error) {
	bytes, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal(bytes, &entry); err != nil {
		return nil, fmt.Errorf("failed to parse cache file %s: %w", path, err)
	}
	return &entry, nil
}

func normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
