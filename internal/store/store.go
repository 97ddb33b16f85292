// Package store persists completed knowledge artifacts in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"reelforge/internal/config"
	"reelforge/internal/pipeline"
)

// ErrNotFound is returned when no artifact exists for the requested job.
var ErrNotFound = errors.New("store: result not found")

// Store manages artifact persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS results (
    job_id            TEXT PRIMARY KEY,
    source_url        TEXT NOT NULL,
    canonical_url     TEXT NOT NULL DEFAULT '',
    title             TEXT NOT NULL DEFAULT '',
    description       TEXT NOT NULL DEFAULT '',
    transcript        TEXT NOT NULL DEFAULT '',
    summary_json      TEXT NOT NULL DEFAULT '{}',
    visual_text       TEXT NOT NULL DEFAULT '',
    merged_text       TEXT NOT NULL DEFAULT '',
    thumbnail_url     TEXT NOT NULL DEFAULT '',
    thumbnail_key     TEXT NOT NULL DEFAULT '',
    media_duration_ms INTEGER NOT NULL DEFAULT 0,
    media_bytes       INTEGER NOT NULL DEFAULT 0,
    timings_json      TEXT NOT NULL DEFAULT '{}',
    completed_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_completed_at ON results(completed_at DESC);
`

// Open initializes or connects to the artifact database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.DataDir, "results.db"))
}

// OpenPath opens the database at an explicit path (used by tests).
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// SaveResult upserts one completed artifact. Re-ingesting the same job ID
// replaces the previous row.
func (s *Store) SaveResult(ctx context.Context, result *pipeline.Result) error {
	if result == nil {
		return errors.New("store: result required")
	}
	summaryJSON, err := json.Marshal(result.Summary)
	if err != nil {
		return fmt.Errorf("store: encode summary: %w", err)
	}
	timings := make(map[string]int64, len(result.Timings))
	for step, d := range result.Timings {
		timings[string(step)] = d.Milliseconds()
	}
	timingsJSON, err := json.Marshal(timings)
	if err != nil {
		return fmt.Errorf("store: encode timings: %w", err)
	}

	query, args, err := sq.Replace("results").
		Columns("job_id", "source_url", "canonical_url", "title", "description",
			"transcript", "summary_json", "visual_text", "merged_text",
			"thumbnail_url", "thumbnail_key", "media_duration_ms", "media_bytes",
			"timings_json", "completed_at").
		Values(result.JobID, result.SourceURL, result.CanonicalURL, result.Title, result.Description,
			result.Transcript, string(summaryJSON), result.VisualText, result.MergedText,
			result.ThumbnailURL, result.ThumbnailKey, result.MediaDuration.Milliseconds(), result.MediaBytes,
			string(timingsJSON), result.CompletedAt.UTC().Format(time.RFC3339Nano)).
		ToSql()
	if err != nil {
		return fmt.Errorf("store: build insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("store: save result: %w", err)
	}
	return nil
}

var resultColumns = []string{
	"job_id", "source_url", "canonical_url", "title", "description",
	"transcript", "summary_json", "visual_text", "merged_text",
	"thumbnail_url", "thumbnail_key", "media_duration_ms", "media_bytes",
	"timings_json", "completed_at",
}

// GetByJobID fetches one artifact.
func (s *Store) GetByJobID(ctx context.Context, jobID string) (*pipeline.Result, error) {
	query, args, err := sq.Select(resultColumns...).
		From("results").
		Where(sq.Eq{"job_id": jobID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("store: build query: %w", err)
	}
	result, err := scanResult(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return result, err
}

// List returns artifacts newest-first.
func (s *Store) List(ctx context.Context, limit, offset int) ([]*pipeline.Result, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query, args, err := sq.Select(resultColumns...).
		From("results").
		OrderBy("completed_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("store: build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list results: %w", err)
	}
	defer rows.Close()

	var results []*pipeline.Result
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// Count returns how many artifacts are stored.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM results").Scan(&count); err != nil {
		return 0, fmt.Errorf("store: count results: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (*pipeline.Result, error) {
	var (
		result      pipeline.Result
		summaryJSON string
		timingsJSON string
		durationMS  int64
		completedAt string
	)
	err := row.Scan(
		&result.JobID, &result.SourceURL, &result.CanonicalURL, &result.Title, &result.Description,
		&result.Transcript, &summaryJSON, &result.VisualText, &result.MergedText,
		&result.ThumbnailURL, &result.ThumbnailKey, &durationMS, &result.MediaBytes,
		&timingsJSON, &completedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(summaryJSON), &result.Summary); err != nil {
		return nil, fmt.Errorf("store: decode summary: %w", err)
	}
	var timings map[string]int64
	if err := json.Unmarshal([]byte(timingsJSON), &timings); err != nil {
		return nil, fmt.Errorf("store: decode timings: %w", err)
	}
	if len(timings) > 0 {
		result.Timings = make(map[pipeline.Step]time.Duration, len(timings))
		for step, ms := range timings {
			result.Timings[pipeline.Step(step)] = time.Duration(ms) * time.Millisecond
		}
	}
	result.MediaDuration = time.Duration(durationMS) * time.Millisecond
	if parsed, err := time.Parse(time.RFC3339Nano, completedAt); err == nil {
		result.CompletedAt = parsed
	}
	return &result, nil
}
