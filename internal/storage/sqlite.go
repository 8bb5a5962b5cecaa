package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS harvest_runs (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP,
		status TEXT NOT NULL,
		item_count INTEGER NOT NULL DEFAULT 0,
		new_items INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON harvest_runs(started_at);

	CREATE TABLE IF NOT EXISTS catalog_items (
		url TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		test_type INTEGER NOT NULL DEFAULT 0,
		position INTEGER NOT NULL,
		first_run_id TEXT,
		last_run_id TEXT,
		first_seen_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		last_seen_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_items_position ON catalog_items(position);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateRun inserts a run in the running state.
func (s *SQLiteStorage) CreateRun(ctx context.Context, run *models.HarvestRun) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.Status == "" {
		run.Status = models.HarvestRunning
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO harvest_runs (id, started_at, status) VALUES (?, ?, ?)`,
		run.ID, run.StartedAt, run.Status,
	)
	if err != nil {
		return fmt.Errorf("create run %s: %w", run.ID, err)
	}
	return nil
}

// FinishRun stores the final state and counters of a run.
func (s *SQLiteStorage) FinishRun(ctx context.Context, run *models.HarvestRun) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE harvest_runs SET finished_at = ?, status = ?, item_count = ?, new_items = ?, error = ?
		 WHERE id = ?`,
		run.FinishedAt, run.Status, run.ItemCount, run.NewItems, run.Error, run.ID,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", run.ID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", run.ID, ErrNotFound)
	}
	return nil
}

// GetRun returns a run by ID.
func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (*models.HarvestRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, status, item_count, new_items, error
		 FROM harvest_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return run, err
}

// ListRuns returns the most recent runs first.
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]*models.HarvestRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, status, item_count, new_items, error
		 FROM harvest_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.HarvestRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.HarvestRun, error) {
	var run models.HarvestRun
	var finished sql.NullTime
	if err := row.Scan(&run.ID, &run.StartedAt, &finished, &run.Status, &run.ItemCount, &run.NewItems, &run.Error); err != nil {
		return nil, err
	}
	if finished.Valid {
		run.FinishedAt = finished.Time
	}
	return &run, nil
}

// UpsertItems inserts unseen URLs at the end of the catalog order and marks
// known URLs as seen by runID. Stored names are never overwritten.
// Returns the number of newly inserted items.
func (s *SQLiteStorage) UpsertItems(ctx context.Context, runID string, items []models.CatalogItem) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), -1) + 1 FROM catalog_items`).Scan(&next); err != nil {
		return 0, fmt.Errorf("read next position: %w", err)
	}

	insert, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO catalog_items
		 (url, name, description, test_type, position, first_run_id, last_run_id, first_seen_at, last_seen_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer insert.Close()

	touch, err := tx.PrepareContext(ctx,
		`UPDATE catalog_items SET last_run_id = ?, last_seen_at = ? WHERE url = ?`)
	if err != nil {
		return 0, err
	}
	defer touch.Close()

	now := time.Now()
	added := 0
	for _, item := range items {
		result, err := insert.ExecContext(ctx,
			item.URL, item.Name, item.Description, item.TestType, next, runID, runID, now, now)
		if err != nil {
			return 0, fmt.Errorf("insert %s: %w", item.URL, err)
		}
		if n, _ := result.RowsAffected(); n > 0 {
			added++
			next++
			continue
		}
		if _, err := touch.ExecContext(ctx, runID, now, item.URL); err != nil {
			return 0, fmt.Errorf("touch %s: %w", item.URL, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// ListItems returns all items in first-seen order with Index set to their position in the result.
func (s *SQLiteStorage) ListItems(ctx context.Context) ([]models.CatalogItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT url, name, description, test_type FROM catalog_items ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.CatalogItem
	for rows.Next() {
		item := models.CatalogItem{Index: len(items)}
		if err := rows.Scan(&item.URL, &item.Name, &item.Description, &item.TestType); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CountItems returns the number of stored items.
func (s *SQLiteStorage) CountItems(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM catalog_items`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
