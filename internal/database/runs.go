package database

import (
	"context"
	"fmt"
	"time"
)

// RunRecord is one row of run history.
type RunRecord struct {
	ID            string    `json:"id"`
	RunName       string    `json:"run_name"`
	ArchiveName   string    `json:"archive_name"`
	RowsTotal     int       `json:"rows_total"`
	RowsProcessed int       `json:"rows_processed"`
	RowsSkipped   int       `json:"rows_skipped"`
	Status        string    `json:"status"`
	StartedAt     time.Time `json:"started_at"`
	CompletedAt   time.Time `json:"completed_at"`
}

// RunRepository persists completed runs when a database is configured.
type RunRepository struct {
	db *DB
}

func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// EnsureSchema creates the runs table if it does not exist yet.
func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS research_runs (
			id             TEXT PRIMARY KEY,
			run_name       TEXT NOT NULL,
			archive_name   TEXT NOT NULL,
			rows_total     INT NOT NULL,
			rows_processed INT NOT NULL,
			rows_skipped   INT NOT NULL,
			status         TEXT NOT NULL,
			started_at     TIMESTAMPTZ NOT NULL,
			completed_at   TIMESTAMPTZ NOT NULL
		)
	`

	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure runs schema: %w", err)
	}

	return nil
}

// Save records one finished run.
func (r *RunRepository) Save(ctx context.Context, record RunRecord) error {
	query := `
		INSERT INTO research_runs
		(id, run_name, archive_name, rows_total, rows_processed, rows_skipped, status, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		record.ID, record.RunName, record.ArchiveName,
		record.RowsTotal, record.RowsProcessed, record.RowsSkipped,
		record.Status, record.StartedAt, record.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// List returns the most recent runs, newest first.
func (r *RunRepository) List(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, run_name, archive_name, rows_total, rows_processed, rows_skipped, status, started_at, completed_at
		FROM research_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(
			&rec.ID, &rec.RunName, &rec.ArchiveName,
			&rec.RowsTotal, &rec.RowsProcessed, &rec.RowsSkipped,
			&rec.Status, &rec.StartedAt, &rec.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
