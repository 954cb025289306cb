package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Run is one crawl invocation and its final counters.
type Run struct {
	RunID         string
	SeedURL       string
	View360Policy string
	StartedAt     time.Time
	FinishedAt    *time.Time
	ListingOK     int
	ListingFailed int
	DetailOK      int
	DetailFailed  int
	Duplicates    int
}

// RunCounts are the counters written when a run finishes.
type RunCounts struct {
	ListingOK     int
	ListingFailed int
	DetailOK      int
	DetailFailed  int
	Duplicates    int
}

// StartRun inserts a new run row.
func (db *DB) StartRun(runID, seedURL, view360Policy string) error {
	_, err := db.Exec(`
		INSERT INTO crawl_runs (run_id, seed_url, view360_policy, started_at)
		VALUES (?, ?, ?, ?)
	`, runID, seedURL, view360Policy, time.Now())
	if err != nil {
		return fmt.Errorf("failed to start run: %w", err)
	}
	return nil
}

// FinishRun stamps the finish time and stores the counters.
func (db *DB) FinishRun(runID string, counts RunCounts) error {
	result, err := db.Exec(`
		UPDATE crawl_runs
		SET finished_at = ?, listing_ok = ?, listing_failed = ?,
		    detail_ok = ?, detail_failed = ?, duplicates = ?
		WHERE run_id = ?
	`, time.Now(), counts.ListingOK, counts.ListingFailed,
		counts.DetailOK, counts.DetailFailed, counts.Duplicates, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}

const runColumns = `run_id, seed_url, view360_policy, started_at, finished_at,
	listing_ok, listing_failed, detail_ok, detail_failed, duplicates`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	run := &Run{}
	var finished sql.NullTime
	err := row.Scan(&run.RunID, &run.SeedURL, &run.View360Policy, &run.StartedAt, &finished,
		&run.ListingOK, &run.ListingFailed, &run.DetailOK, &run.DetailFailed, &run.Duplicates)
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		run.FinishedAt = &finished.Time
	}
	return run, nil
}

// GetRun retrieves a run by ID.
func (db *DB) GetRun(runID string) (*Run, error) {
	run, err := scanRun(db.QueryRow(`SELECT `+runColumns+` FROM crawl_runs WHERE run_id = ?`, runID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns runs, newest first. limit <= 0 returns all of them.
func (db *DB) ListRuns(limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM crawl_runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
