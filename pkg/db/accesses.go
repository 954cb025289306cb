package db

import (
	"database/sql"
	"fmt"
)

// Access is one processed request.
type Access struct {
	RunID        string
	URL          string
	Kind         string
	Success      bool
	StatusCode   int
	FromCache    bool
	ErrorType    string
	ErrorMessage string
}

// RecordAccess logs a processed request. StatusCode 0 and empty error
// fields are stored as NULL.
func (db *DB) RecordAccess(a Access) error {
	_, err := db.Exec(`
		INSERT INTO url_accesses (run_id, url, kind, success, status_code, from_cache, error_type, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.RunID, a.URL, a.Kind, a.Success,
		nullInt(a.StatusCode), a.FromCache, nullString(a.ErrorType), nullString(a.ErrorMessage))
	if err != nil {
		return fmt.Errorf("failed to record access: %w", err)
	}
	return nil
}

// ListAccesses returns a run's accesses in the order they were recorded.
func (db *DB) ListAccesses(runID string) ([]Access, error) {
	rows, err := db.Query(`
		SELECT run_id, url, kind, success, status_code, from_cache, error_type, error_message
		FROM url_accesses
		WHERE run_id = ?
		ORDER BY access_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accesses: %w", err)
	}
	defer rows.Close()

	var accesses []Access
	for rows.Next() {
		var a Access
		var status sql.NullInt64
		var errType, errMsg sql.NullString
		if err := rows.Scan(&a.RunID, &a.URL, &a.Kind, &a.Success, &status, &a.FromCache, &errType, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan access: %w", err)
		}
		a.StatusCode = int(status.Int64)
		a.ErrorType = errType.String
		a.ErrorMessage = errMsg.String
		accesses = append(accesses, a)
	}
	return accesses, rows.Err()
}

// ErrorCounts groups a run's failed accesses by error type.
func (db *DB) ErrorCounts(runID string) (map[string]int, error) {
	rows, err := db.Query(`
		SELECT error_type, COUNT(*)
		FROM url_accesses
		WHERE run_id = ? AND success = 0
		GROUP BY error_type
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to count errors: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var errType sql.NullString
		var n int
		if err := rows.Scan(&errType, &n); err != nil {
			return nil, fmt.Errorf("failed to scan error count: %w", err)
		}
		counts[errType.String] += n
	}
	return counts, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}
