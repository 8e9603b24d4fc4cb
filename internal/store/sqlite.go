package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SideStore is the local SQLite database holding the geocode cache and
// the run log. Neither is part of the persisted record set; the cache
// lets re-runs skip the 1 req/s external service for names already
// looked up, and the run log records per-run tallies.
type SideStore struct {
	db *sql.DB
}

// CachedLookup is one stored geocode result. Matched=false rows record
// negative lookups so they are not retried on every run.
type CachedLookup struct {
	Lat     float64
	Lon     float64
	Matched bool
}

// RunRecord summarizes one scrape or verify run.
type RunRecord struct {
	ID         string
	Command    string
	Stations   int
	Updated    int
	Failed     int
	StartedAt  time.Time
	FinishedAt time.Time
}

// OpenSideStore opens (creating if needed) the SQLite database at path
// and configures WAL mode.
func OpenSideStore(path string) (*SideStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "store: create cache dir %s", dir)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "store: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}
	return &SideStore{db: db}, nil
}

const sideStoreMigration = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	query_hash TEXT PRIMARY KEY,
	latitude   REAL NOT NULL,
	longitude  REAL NOT NULL,
	matched    INTEGER NOT NULL,
	cached_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	command     TEXT NOT NULL,
	stations    INTEGER NOT NULL DEFAULT 0,
	updated     INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_runs_command ON runs(command);
`

func (s *SideStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sideStoreMigration)
	return eris.Wrap(err, "store: migrate side store")
}

func (s *SideStore) Close() error {
	return s.db.Close()
}

// cacheKey returns SHA-256 hex of the normalized station name.
func cacheKey(name string) string {
	h := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(name))))
	return fmt.Sprintf("%x", h)
}

// GetCachedLookup returns the cached geocode result for name, or nil on
// a cache miss.
func (s *SideStore) GetCachedLookup(ctx context.Context, name string) (*CachedLookup, error) {
	var c CachedLookup
	err := s.db.QueryRowContext(ctx,
		`SELECT latitude, longitude, matched FROM geocode_cache WHERE query_hash = ?`,
		cacheKey(name),
	).Scan(&c.Lat, &c.Lon, &c.Matched)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "store: cache lookup %s", name)
	}
	zap.L().Debug("store: geocode cache hit", zap.String("name", name), zap.Bool("matched", c.Matched))
	return &c, nil
}

// PutCachedLookup stores a geocode result (match or non-match) for name.
func (s *SideStore) PutCachedLookup(ctx context.Context, name string, c CachedLookup) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO geocode_cache (query_hash, latitude, longitude, matched, cached_at)
		VALUES (?, ?, ?, ?, datetime('now'))
		ON CONFLICT (query_hash) DO UPDATE SET
			latitude  = excluded.latitude,
			longitude = excluded.longitude,
			matched   = excluded.matched,
			cached_at = excluded.cached_at`,
		cacheKey(name), c.Lat, c.Lon, c.Matched,
	)
	return eris.Wrapf(err, "store: cache store %s", name)
}

// StartRun inserts a run log entry and returns its ID.
func (s *SideStore) StartRun(ctx context.Context, command string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, command, started_at) VALUES (?, ?, ?)`,
		id, command, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "store: start run")
	}
	return id, nil
}

// FinishRun records the final tallies for a run.
func (s *SideStore) FinishRun(ctx context.Context, id string, stations, updated, failed int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET stations = ?, updated = ?, failed = ?, finished_at = ? WHERE id = ?`,
		stations, updated, failed, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "store: finish run %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "store: rows affected")
	}
	if n == 0 {
		return eris.Errorf("store: run %s not found", id)
	}
	return nil
}

// LastRun returns the most recent finished run for a command, or nil.
func (s *SideStore) LastRun(ctx context.Context, command string) (*RunRecord, error) {
	var r RunRecord
	var finished sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, command, stations, updated, failed, started_at, finished_at
		FROM runs WHERE command = ? AND finished_at IS NOT NULL
		ORDER BY started_at DESC LIMIT 1`,
		command,
	).Scan(&r.ID, &r.Command, &r.Stations, &r.Updated, &r.Failed, &r.StartedAt, &finished)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: last run")
	}
	if finished.Valid {
		r.FinishedAt = finished.Time
	}
	return &r, nil
}
