// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/pdiddy/partswap/pkg/types"
)

const (
	cacheFile       = "catalog.db"
	defaultCacheTTL = 24 * time.Hour

	// fetchedLayout is fixed width so fetched_at compares correctly as text.
	fetchedLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// CachedClient wraps a Backend with a SQLite cache of Lookup results.
// Only non-empty records are stored. Search always goes to the backend.
type CachedClient struct {
	backend Backend
	db      *sql.DB
	ttl     time.Duration
	log     *zap.Logger
	now     func() time.Time
}

// NewCachedClient opens or creates dir/catalog.db and returns a caching
// wrapper around backend.
func NewCachedClient(backend Backend, dir string, ttl time.Duration, log *zap.Logger) (*CachedClient, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, cacheFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if log == nil {
		log = zap.NewNop()
	}

	c := &CachedClient{backend: backend, db: db, ttl: ttl, log: log, now: time.Now}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return c, nil
}

// Close releases the database connection.
func (c *CachedClient) Close() error {
	return c.db.Close()
}

func (c *CachedClient) createSchema() error {
	_, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS lookups (
		part_number TEXT PRIMARY KEY,
		record TEXT NOT NULL,
		fetched_at TEXT NOT NULL
	)`)
	return err
}

// Search passes through to the backend.
func (c *CachedClient) Search(ctx context.Context, q Query) ([]types.Candidate, error) {
	return c.backend.Search(ctx, q)
}

// Lookup serves a fresh cached record when one exists, otherwise asks the
// backend and stores a non-empty answer.
func (c *CachedClient) Lookup(ctx context.Context, partNumber string) (types.PartRecord, error) {
	key := strings.ToUpper(strings.TrimSpace(partNumber))

	if rec, ok := c.get(ctx, key); ok {
		return rec, nil
	}

	rec, err := c.backend.Lookup(ctx, partNumber)
	if err != nil {
		return rec, err
	}
	if !rec.IsEmpty() {
		if err := c.put(ctx, key, rec); err != nil {
			c.log.Warn("catalog cache write failed", zap.String("part", key), zap.Error(err))
		}
	}
	return rec, nil
}

func (c *CachedClient) get(ctx context.Context, key string) (types.PartRecord, bool) {
	var raw, fetched string
	err := c.db.QueryRowContext(ctx,
		`SELECT record, fetched_at FROM lookups WHERE part_number = ?`, key,
	).Scan(&raw, &fetched)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.log.Warn("catalog cache read failed", zap.String("part", key), zap.Error(err))
		}
		return types.PartRecord{}, false
	}

	at, err := time.Parse(fetchedLayout, fetched)
	if err != nil || c.now().Sub(at) > c.ttl {
		return types.PartRecord{}, false
	}

	var rec types.PartRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return types.PartRecord{}, false
	}
	c.log.Debug("catalog cache hit", zap.String("part", key))
	return rec, true
}

func (c *CachedClient) put(ctx context.Context, key string, rec types.PartRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO lookups (part_number, record, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(part_number) DO UPDATE SET record = excluded.record, fetched_at = excluded.fetched_at`,
		key, string(raw), c.now().UTC().Format(fetchedLayout),
	)
	return err
}

// Purge removes entries older than the TTL and returns how many were dropped.
func (c *CachedClient) Purge(ctx context.Context) (int64, error) {
	cutoff := c.now().Add(-c.ttl).UTC().Format(fetchedLayout)
	res, err := c.db.ExecContext(ctx, `DELETE FROM lookups WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging cache: %w", err)
	}
	return res.RowsAffected()
}
