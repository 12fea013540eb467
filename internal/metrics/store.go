package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Outcomes of an operation.
const (
	OutcomeOK      = "ok"
	OutcomeWarning = "warning"
	OutcomeError   = "error"
)

// OperationMetric records metadata for a single planner or calculator call.
type OperationMetric struct {
	Operation string
	UserID    string
	Outcome   string
	LatencyMS int64
	Timestamp time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m OperationMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	if m.Outcome == "" {
		m.Outcome = OutcomeOK
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO operation_metrics (operation, user_id, outcome, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		m.Operation, m.UserID, m.Outcome, m.LatencyMS, ts.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record metric for %s: %w", m.Operation, err)
	}
	return nil
}

// Track records the time elapsed since start for an operation.
func (s *Store) Track(ctx context.Context, operation, userID, outcome string, start time.Time) error {
	return s.Record(ctx, OperationMetric{
		Operation: operation,
		UserID:    userID,
		Outcome:   outcome,
		LatencyMS: time.Since(start).Milliseconds(),
	})
}

// OperationUsage represents totals for a single operation.
type OperationUsage struct {
	Operation    string  `json:"operation"`
	Count        int     `json:"count"`
	Warnings     int     `json:"warnings"`
	Errors       int     `json:"errors"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
}

// GetUsage retrieves per-operation totals for the last N days.
func (s *Store) GetUsage(ctx context.Context, days int) ([]OperationUsage, error) {
	since := time.Now().AddDate(0, 0, -days).UnixNano()
	rows, err := s.db.QueryContext(ctx, `
		SELECT operation,
		       COUNT(*),
		       SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END),
		       SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END),
		       AVG(latency_ms)
		FROM operation_metrics
		WHERE created_at >= ?
		GROUP BY operation
		ORDER BY operation`, OutcomeWarning, OutcomeError, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage: %w", err)
	}
	defer rows.Close()

	var results []OperationUsage
	for rows.Next() {
		var u OperationUsage
		if err := rows.Scan(&u.Operation, &u.Count, &u.Warnings, &u.Errors, &u.AvgLatencyMS); err != nil {
			return nil, fmt.Errorf("failed to scan usage: %w", err)
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().AddDate(0, 0, -olderThanDays).UnixNano()
	res, err := s.db.ExecContext(ctx, `DELETE FROM operation_metrics WHERE created_at < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up metrics: %w", err)
	}
	return res.RowsAffected()
}
