// Package storage persists the durable pieces of the pipelines on
// Postgres: raw trend rows, the daily keyword cache and the research run
// log. Everything in-memory (the research session itself) stays out of it.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/mindbloom-labs/research_agent/internal/config"
	"github.com/mindbloom-labs/research_agent/internal/trends"
)

const schema = `
CREATE TABLE IF NOT EXISTS trend_entries (
	id        SERIAL PRIMARY KEY,
	source    TEXT NOT NULL,
	keyword   TEXT NOT NULL,
	interest  INTEGER NOT NULL DEFAULT 0,
	posted_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trend_entries_source ON trend_entries(source);
CREATE INDEX IF NOT EXISTS idx_trend_entries_posted ON trend_entries(posted_at DESC);

CREATE TABLE IF NOT EXISTS keyword_cache (
	cache_date DATE PRIMARY KEY,
	keywords   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS run_log (
	id         UUID PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL,
	topic      TEXT NOT NULL,
	audience   TEXT NOT NULL,
	summary    TEXT NOT NULL,
	sources    TEXT NOT NULL
);
`

// Storage is the Postgres-backed store.
type Storage struct {
	db *sql.DB
}

// NewStorage opens the connection and ensures the schema exists.
func NewStorage(cfg config.DBConfig) (*Storage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the trends collaborator interfaces
var (
	_ trends.SourceReader = (*Storage)(nil)
	_ trends.CacheStore   = (*Storage)(nil)
)

// ReadEntries returns every raw trend row of one source. Window and
// interest filtering happen in the pipeline so malformed rows degrade per
// source, not per query.
func (s *Storage) ReadEntries(ctx context.Context, source string) ([]trends.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT keyword, interest, posted_at FROM trend_entries WHERE source = $1 ORDER BY posted_at DESC`,
		source)
	if err != nil {
		return nil, fmt.Errorf("querying trend entries: %w", err)
	}
	defer rows.Close()

	var entries []trends.Entry
	for rows.Next() {
		var e trends.Entry
		if err := rows.Scan(&e.Keyword, &e.Interest, &e.PostedAt); err != nil {
			return nil, fmt.Errorf("scanning trend entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ReadEntry returns the cached comma-joined keywords for day, or "" when
// no entry exists. Entries for other days are ignored, never deleted.
func (s *Storage) ReadEntry(ctx context.Context, day string) (string, error) {
	var keywords string
	err := s.db.QueryRowContext(ctx,
		`SELECT keywords FROM keyword_cache WHERE cache_date = $1`, day).Scan(&keywords)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading keyword cache: %w", err)
	}
	return keywords, nil
}

// WriteEntry upserts the cache entry for day. Last writer wins.
func (s *Storage) WriteEntry(ctx context.Context, day string, keywords string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO keyword_cache (cache_date, keywords) VALUES ($1, $2)
		ON CONFLICT (cache_date) DO UPDATE SET keywords = EXCLUDED.keywords
	`, day, keywords)
	if err != nil {
		return fmt.Errorf("writing keyword cache: %w", err)
	}
	return nil
}

// AppendRunLog records one finished research run. Best-effort on the
// caller's side: a failure here never invalidates the run itself.
func (s *Storage) AppendRunLog(ctx context.Context, topic, audience, summary string, sources []string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO run_log (id, created_at, topic, audience, summary, sources)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, time.Now().UTC(), topic, audience, summary, strings.Join(sources, "\n"))
	if err != nil {
		return "", fmt.Errorf("appending run log: %w", err)
	}
	return id, nil
}
