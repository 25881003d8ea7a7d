// Package sqlite implements the run ledger on an embedded SQLite database.
// The ledger records each harvest run and the item keys it appended; prior
// runs' keys seed the deduplication set when a harvest resumes.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/eipforge/eipharvest/internal/adapters/driven/ledger/sqlite/migrations"
	"github.com/eipforge/eipharvest/internal/core/domain"
	"github.com/eipforge/eipharvest/internal/core/ports/driven"
)

// Ensure Ledger implements the run ledger port.
var _ driven.RunLedger = (*Ledger)(nil)

// Ledger is a SQLite-backed run ledger.
type Ledger struct {
	db   *sql.DB
	path string
}

// NewLedger creates a run ledger at the specified data directory.
// If dataDir is empty, defaults to ~/.eipharvest/data/ledger.db.
func NewLedger(dataDir string) (*Ledger, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".eipharvest", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "ledger.db")

	// WAL mode: the harvest loop writes item rows while status queries read.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	l := &Ledger{db: db, path: dbPath}

	if err := l.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return l, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Path returns the database file path.
func (l *Ledger) Path() string {
	return l.path
}

// BeginRun records the start of a run.
func (l *Ledger) BeginRun(ctx context.Context, status domain.RunStatus) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO runs (id, repository, state, started_at)
		VALUES (?, ?, ?, ?)
	`, status.RunID, status.Repository, string(status.State), status.StartedAt.UTC())

	if err != nil {
		return fmt.Errorf("recording run start: %w", err)
	}
	return nil
}

// FinishRun records a run's terminal state and final counters.
func (l *Ledger) FinishRun(ctx context.Context, result domain.RunResult) error {
	_, err := l.db.ExecContext(ctx, `
		UPDATE runs SET
			state = ?,
			pages_seen = ?,
			items_processed = ?,
			items_skipped = ?,
			items_excluded = ?,
			items_deduplicated = ?,
			output_path = ?,
			finished_at = ?
		WHERE id = ?
	`, string(result.State),
		result.Counters.PagesSeen, result.Counters.ItemsProcessed,
		result.Counters.ItemsSkipped, result.Counters.ItemsExcluded,
		result.Counters.ItemsDeduplicated,
		result.OutputPath, result.FinishedAt.UTC(), result.RunID)

	if err != nil {
		return fmt.Errorf("recording run finish: %w", err)
	}
	return nil
}

// RecordItem records that a run appended the given key. Recording the same
// key twice within a run is a no-op: the in-run seen set already guarantees
// one append per key.
func (l *Ledger) RecordItem(ctx context.Context, runID string, key domain.ItemKey) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO harvested_items (run_id, kind, number)
		VALUES (?, ?, ?)
		ON CONFLICT(run_id, kind, number) DO NOTHING
	`, runID, string(key.Kind), key.Number)

	if err != nil {
		return fmt.Errorf("recording item: %w", err)
	}
	return nil
}

// HarvestedKeys returns the keys appended by prior runs for a repository.
// Aborted runs count too: their records reached the sink before the abort.
func (l *Ledger) HarvestedKeys(ctx context.Context, repository string) ([]domain.ItemKey, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT DISTINCT hi.kind, hi.number
		FROM harvested_items hi
		JOIN runs r ON r.id = hi.run_id
		WHERE r.repository = ?
		ORDER BY hi.kind, hi.number
	`, repository)
	if err != nil {
		return nil, fmt.Errorf("querying harvested keys: %w", err)
	}
	defer rows.Close()

	var keys []domain.ItemKey //nolint:prealloc // size unknown from query
	for rows.Next() {
		var kind string
		var number int
		if err := rows.Scan(&kind, &number); err != nil {
			return nil, fmt.Errorf("scanning harvested key: %w", err)
		}
		keys = append(keys, domain.ItemKey{Kind: domain.ResourceKind(kind), Number: number})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating harvested keys: %w", err)
	}

	return keys, nil
}

// Runs returns the recorded runs for a repository, most recent first.
// An empty repository returns all runs.
func (l *Ledger) Runs(ctx context.Context, repository string) ([]domain.RunResult, error) {
	query := `
		SELECT id, repository, state, pages_seen, items_processed, items_skipped,
			items_excluded, items_deduplicated, output_path, started_at, finished_at
		FROM runs
	`
	args := []any{}
	if repository != "" {
		query += " WHERE repository = ?"
		args = append(args, repository)
	}
	query += " ORDER BY started_at DESC"

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var results []domain.RunResult //nolint:prealloc // size unknown from query
	for rows.Next() {
		var result domain.RunResult
		var state string
		var outputPath sql.NullString
		var finishedAt sql.NullTime
		if err := rows.Scan(&result.RunID, &result.Repository, &state,
			&result.Counters.PagesSeen, &result.Counters.ItemsProcessed,
			&result.Counters.ItemsSkipped, &result.Counters.ItemsExcluded,
			&result.Counters.ItemsDeduplicated,
			&outputPath, &result.StartedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}

		result.State = domain.RunState(state)
		result.OutputPath = outputPath.String
		if finishedAt.Valid {
			result.FinishedAt = finishedAt.Time
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	return results, nil
}

// migrate runs all pending migrations.
func (l *Ledger) migrate(fsys embed.FS) error {
	_, err := l.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := l.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := l.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := l.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
