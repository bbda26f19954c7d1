package internal

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Archive records runs and their per-item outcomes in sqlite
type Archive struct {
	db *sql.DB
}

// RunSummary is one row of the run history
type RunSummary struct {
	ID            string
	PlaylistTitle string
	PlaylistURL   string
	OutputDir     string
	StartedAt     time.Time
	Downloaded    int
	Skipped       int
	Errors        int
	Bytes         int64
}

// OpenArchive opens (creating if needed) the archive database at path
func OpenArchive(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to archive: %w", err)
	}

	a := &Archive{db: db}
	if err := a.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating archive: %w", err)
	}
	return a, nil
}

func (a *Archive) migrate() error {
	d, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return err
	}

	driver, err := sqlite.WithInstance(a.db, &sqlite.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// Close closes the database
func (a *Archive) Close() error {
	return a.db.Close()
}

// BeginRun records the start of a run
func (a *Archive) BeginRun(ctx context.Context, runID string, playlist *Playlist, outputDir string, started time.Time) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO runs (id, playlist_id, playlist_title, playlist_url, output_dir, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, playlist.ID, playlist.Title, playlist.URL, outputDir, started.Unix())
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// RecordOutcome stores one item outcome of a run
func (a *Archive) RecordOutcome(ctx context.Context, runID string, o Outcome) error {
	var errText sql.NullString
	if o.Err != nil {
		errText = sql.NullString{String: o.Err.Error(), Valid: true}
	}
	_, err := a.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO downloads (run_id, item_id, item_index, title, author, path, status, bytes, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, o.Item.ID, o.Item.Index, o.Item.Title, o.Item.Author, o.Path, o.Status.String(), o.Bytes, errText)
	if err != nil {
		return fmt.Errorf("recording outcome: %w", err)
	}
	return nil
}

// FinishRun stores the final error count of a run
func (a *Archive) FinishRun(ctx context.Context, runID string, errCount int, finished time.Time) error {
	_, err := a.db.ExecContext(ctx, `UPDATE runs SET finished_at = ?, errors = ? WHERE id = ?`, finished.Unix(), errCount, runID)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	return nil
}

// Runs returns the most recent runs, newest first
func (a *Archive) Runs(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT r.id, r.playlist_title, r.playlist_url, r.output_dir, r.started_at, r.errors,
		       COALESCE(SUM(CASE WHEN d.status = 'downloaded' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN d.status = 'skipped' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(d.bytes), 0)
		FROM runs r
		LEFT JOIN downloads d ON d.run_id = r.id
		GROUP BY r.id
		ORDER BY r.started_at DESC, r.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var started int64
		if err := rows.Scan(&r.ID, &r.PlaylistTitle, &r.PlaylistURL, &r.OutputDir, &started, &r.Errors, &r.Downloaded, &r.Skipped, &r.Bytes); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt = time.Unix(started, 0)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// HasItem reports whether item was ever downloaded successfully
func (a *Archive) HasItem(ctx context.Context, itemID string) (bool, error) {
	var n int
	err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM downloads WHERE item_id = ? AND status = 'downloaded'`, itemID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("querying archive: %w", err)
	}
	return n > 0, nil
}
